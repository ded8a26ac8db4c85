/*
Package metastore implements the table storage data model on top of
pkg/storage and pkg/query: table and entity CRUD with ETag optimistic
concurrency, a paginated ordered query engine, an undo-log batch
transaction manager, and per-account service properties.

# Layout

  - store.go: Store, collection bootstrap, key encoding.
  - tables.go / entities.go: C5 table and entity CRUD operations.
  - query.go: C6 paginated listing (QueryTables, QueryTableEntities).
  - batch.go: C7 begin/end batch transaction and undo-log rollback.
  - serviceprops.go: C8 per-account service properties.
  - acl.go: the table-level access-policy endpoints, unimplemented.
  - etag.go / properties.go: ETag and Timestamp/merge helpers shared
    across the CRUD operations.
  - errors.go: the ErrorKind taxonomy every operation reports through.

Every exported method locks the whole Store for its duration; see the
comment on Store in store.go for why a single mutex is the right model
here rather than finer-grained locking.
*/
package metastore
