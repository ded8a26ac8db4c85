/*
Package log provides structured logging for the table store using zerolog.

The log package wraps zerolog to give every metastore operation
JSON-structured (or console) output with component- and request-scoped
child loggers, so account/table/batch context rides along without
threading extra parameters through call chains.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	opLog := log.WithComponent("metastore").
		With().Str("account", account).Str("table", table).Logger()
	opLog.Debug().Msg("insertTableEntity")

Context loggers:

  - WithComponent: tag the subsystem (metastore, query, storage, batch)
  - WithAccount / WithTable / WithBatch: tag the request's identifying keys

Never log entity property values — only keys, counts, and error kinds;
property payloads may be tenant data.
*/
package log
