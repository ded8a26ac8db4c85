package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Collection is a generic, JSON-encoded view over one BoltDB bucket.
// Records are keyed by caller-supplied byte keys; since BoltDB iterates
// bucket keys in byte-sorted order, encoding a composite key so that its
// byte order matches the desired record order (e.g. PartitionKey + 0x00 +
// RowKey) gives the query engine its ordering guarantees for free, with
// no separate sort step needed.
type Collection[T any] struct {
	store  *Store
	bucket []byte
}

// NewCollection returns a handle onto the named bucket. Callers must
// EnsureCollection (or AddCollection, its convenience wrapper) the bucket
// first; NewCollection itself does not touch disk.
func NewCollection[T any](store *Store, name string) *Collection[T] {
	return &Collection[T]{store: store, bucket: []byte(name)}
}

// AddCollection ensures the named bucket exists and returns a handle,
// matching the durable-collection abstraction's addCollection(name, options).
// Index/uniqueness options are enforced by the caller (pkg/metastore),
// since BoltDB buckets have no native secondary-index concept.
func AddCollection[T any](store *Store, name string) (*Collection[T], error) {
	if err := store.EnsureCollection(name); err != nil {
		return nil, fmt.Errorf("storage: add collection %s: %w", name, err)
	}
	return NewCollection[T](store, name), nil
}

func (c *Collection[T]) withBucket(fn func(b *bolt.Bucket) error) error {
	if c.store.Closed() {
		return fmt.Errorf("storage: store is closed")
	}
	return c.store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return fmt.Errorf("storage: collection %q does not exist", c.bucket)
		}
		return fn(b)
	})
}

func (c *Collection[T]) viewBucket(fn func(b *bolt.Bucket) error) error {
	if c.store.Closed() {
		return fmt.Errorf("storage: store is closed")
	}
	return c.store.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return fmt.Errorf("storage: collection %q does not exist", c.bucket)
		}
		return fn(b)
	})
}

// Insert stores rec under key, overwriting any previous value. Duplicate
// detection (entity-already-exists, table-already-exists) is a business
// rule enforced by the caller via FindOne before Insert.
func (c *Collection[T]) Insert(key []byte, rec *T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("storage: marshal record: %w", err)
	}
	return c.withBucket(func(b *bolt.Bucket) error {
		return b.Put(key, data)
	})
}

// Update is an alias for Insert; BoltDB's Put is already an upsert.
func (c *Collection[T]) Update(key []byte, rec *T) error {
	return c.Insert(key, rec)
}

// Remove deletes the record at key, if any.
func (c *Collection[T]) Remove(key []byte) error {
	return c.withBucket(func(b *bolt.Bucket) error {
		return b.Delete(key)
	})
}

// FindOne returns the record at key, or (nil, false, nil) if absent.
func (c *Collection[T]) FindOne(key []byte) (*T, bool, error) {
	var rec *T
	found := false
	err := c.viewBucket(func(b *bolt.Bucket) error {
		data := b.Get(key)
		if data == nil {
			return nil
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("storage: unmarshal record: %w", err)
		}
		rec = &v
		found = true
		return nil
	})
	return rec, found, err
}

// By is a scanning unique-field lookup: it applies match to every record
// in the bucket and returns the first hit. Useful when a caller needs to
// look a record up by a field other than the bucket's own key.
func (c *Collection[T]) By(match func(*T) bool) (*T, bool, error) {
	var rec *T
	found := false
	err := c.viewBucket(func(b *bolt.Bucket) error {
		return b.ForEach(func(_, data []byte) error {
			if found {
				return nil
			}
			var v T
			if err := json.Unmarshal(data, &v); err != nil {
				return fmt.Errorf("storage: unmarshal record: %w", err)
			}
			if match(&v) {
				rec = &v
				found = true
			}
			return nil
		})
	})
	return rec, found, err
}

// Query returns a chainable query builder over the collection.
func (c *Collection[T]) Query() *Query[T] {
	return &Query[T]{collection: c}
}

// Query is a chainable builder: optional key-range (seekFrom/seekPrefix),
// a predicate, and a result cap. Materializing (Run) walks the bucket in
// its natural byte-sorted key order.
type Query[T any] struct {
	collection  *Collection[T]
	seekFrom    []byte
	seekPrefix  []byte
	breakPrefix []byte
	predicates  []func(*T) bool
	limit       int
}

// SeekFrom restricts the scan to keys >= from (inclusive), used for
// continuation-token resumption.
func (q *Query[T]) SeekFrom(from []byte) *Query[T] {
	q.seekFrom = from
	return q
}

// SeekPrefix restricts the scan to keys sharing prefix, used for
// per-account scans over the shared tables collection.
func (q *Query[T]) SeekPrefix(prefix []byte) *Query[T] {
	q.seekPrefix = prefix
	return q
}

// Where adds a predicate; only records satisfying every Where clause are
// returned. Predicates compose with logical AND.
func (q *Query[T]) Where(pred func(*T) bool) *Query[T] {
	q.predicates = append(q.predicates, pred)
	return q
}

// BreakOnPrefixMismatch stops the scan as soon as a key no longer
// shares prefix, independent of SeekFrom/SeekPrefix. It lets a caller
// resume from an arbitrary key (SeekFrom) while still bounding the scan
// to one logical partition of the bucket (e.g. one account's rows in a
// bucket shared by many accounts), instead of scanning to the bucket's
// end once the partition is exhausted.
func (q *Query[T]) BreakOnPrefixMismatch(prefix []byte) *Query[T] {
	q.breakPrefix = prefix
	return q
}

// Limit caps the number of matching records materialized by Run.
// A limit of 0 means unbounded.
func (q *Query[T]) Limit(n int) *Query[T] {
	q.limit = n
	return q
}

// Run executes the query and returns matching records in key order.
func (q *Query[T]) Run() ([]*T, error) {
	var results []*T
	err := q.collection.viewBucket(func(b *bolt.Bucket) error {
		cur := b.Cursor()
		var k, v []byte
		switch {
		case q.seekFrom != nil:
			k, v = cur.Seek(q.seekFrom)
		case q.seekPrefix != nil:
			k, v = cur.Seek(q.seekPrefix)
		default:
			k, v = cur.First()
		}
		for ; k != nil; k, v = cur.Next() {
			if q.seekPrefix != nil && !bytes.HasPrefix(k, q.seekPrefix) {
				break
			}
			if q.breakPrefix != nil && !bytes.HasPrefix(k, q.breakPrefix) {
				break
			}
			var rec T
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("storage: unmarshal record: %w", err)
			}
			ok := true
			for _, pred := range q.predicates {
				if !pred(&rec) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			results = append(results, &rec)
			if q.limit > 0 && len(results) >= q.limit {
				break
			}
		}
		return nil
	})
	return results, err
}
