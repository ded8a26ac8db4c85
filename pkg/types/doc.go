/*
Package types defines the three record kinds the table store persists:

  - Table: the (Account, Name) registry entry that owns an entity collection.
  - Entity: a (PartitionKey, RowKey) row with a properties map plus
    "<name>@odata.type" EDM type-tag companions. The map does not keep
    the order in which properties were written.
  - ServiceProperties: per-account CORS/metrics/logging configuration.

These are plain data holders; the store in pkg/metastore owns their
lifecycle and pkg/storage owns their persistence.
*/
package types
