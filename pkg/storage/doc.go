/*
Package storage implements the durable-collection abstraction the
metadata store is built on top of BoltDB: named, indexed collections of
JSON records with a chainable query builder, periodic snapshotting, and
a flush-on-close guarantee.

# Architecture

	┌──────────────────── DURABLE COLLECTIONS ─────────────────┐
	│                                                            │
	│   Store (one BoltDB file)                                 │
	│     ├── bucket "$TABLES_COLLECTION$"     Collection[Table] │
	│     ├── bucket "$SERVICES_COLLECTION$"   Collection[Props] │
	│     └── bucket "<account>$<table>"       Collection[Entity]│
	│                                                            │
	│   Composite keys are encoded so BoltDB's native byte-order │
	│   bucket iteration already produces the order the query    │
	│   engine needs: PartitionKey + 0x00 + RowKey for entities, │
	│   account + 0x00 + table for the shared tables bucket.     │
	└────────────────────────────────────────────────────────────┘

Collection[T] exposes Insert/Update/Remove/FindOne/By plus a Query
builder (SeekFrom, SeekPrefix, Where, Limit, Run) — a generics-based
analogue of a dynamic findOne/insert/update/remove/by/find/where/sort/
limit collection API, implemented without reflection since every caller
in this repo knows its record type at compile time.

Store.SaveDatabase snapshots the live database to "<path>.snapshot" every
AutosaveInterval and once more on Close, mirroring the durable-collection
library's periodic autosave and flush-on-close behavior. A missing
backing file on Open is not an error; I/O failures from Open/Close/
SaveDatabase propagate to the caller.
*/
package storage
