package metastore

import (
	"sync"
	"time"

	"github.com/cuemby/tablestore/pkg/events"
	"github.com/cuemby/tablestore/pkg/log"
	"github.com/cuemby/tablestore/pkg/storage"
	"github.com/cuemby/tablestore/pkg/types"
)

const (
	tablesCollectionName   = "$TABLES_COLLECTION$"
	servicesCollectionName = "$SERVICES_COLLECTION$"
)

// Store is the metadata store: the table/service-properties registries,
// one entity collection per live table, and the single in-flight
// batch's undo logs.
//
// All public operations take mu for their entire duration: sequential
// submission implies sequential apply, with no interleaving between a
// batch's operations and anything else, the same single-apply-at-a-time
// discipline a consensus FSM loop would enforce, minus the consensus
// machinery this store doesn't need as a single-writer, single-process
// component.
type Store struct {
	mu sync.Mutex

	storage  *storage.Store
	tables   *storage.Collection[types.Table]
	services *storage.Collection[types.ServiceProperties]

	eventBroker *events.Broker

	defaultQueryResultMax    int
	defaultServiceProperties *types.ServiceProperties

	activeBatchID       string
	activeBatchStarted  time.Time
	rollbackPreImages   []batchEntry
	insertedDuringBatch []batchEntry
}

type batchEntry struct {
	account string
	table   string
	entity  *types.Entity
}

// Options configures a Store at Open time, sourced from pkg/config.
// The zero value of every field means "use the built-in default".
type Options struct {
	// AutosaveInterval overrides storage.AutosaveInterval.
	AutosaveInterval time.Duration

	// QueryPageSize overrides DefaultQueryResultMax as the page size
	// used when a caller passes top <= 0 to QueryTables or
	// QueryTableEntities.
	QueryPageSize int

	// DefaultServiceProperties, if set, seeds GetServiceProperties'
	// result for an account that has never called SetServiceProperties,
	// instead of an all-nil record.
	DefaultServiceProperties *types.ServiceProperties
}

// Open initializes the store at dataDir: ensures the table and
// service-properties registries exist and snapshots once, mirroring the
// bootstrap sequence (load-or-create, ensure collections, snapshot,
// mark initialized). opts is optional; Open() with no Options behaves
// exactly as it did before Options existed.
func Open(dataDir string, opts ...Options) (*Store, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	st, err := storage.Open(dataDir, opt.AutosaveInterval)
	if err != nil {
		return nil, err
	}
	st.SetSnapshotHook(instrumentSnapshot)
	tables, err := storage.AddCollection[types.Table](st, tablesCollectionName)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	services, err := storage.AddCollection[types.ServiceProperties](st, servicesCollectionName)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if err := st.SaveDatabase(); err != nil {
		_ = st.Close()
		return nil, err
	}

	broker := events.NewBroker()
	broker.Start()

	log.WithComponent("metastore").Info().Str("data_dir", dataDir).Msg("store initialized")
	return &Store{
		storage:                  st,
		tables:                   tables,
		services:                 services,
		eventBroker:              broker,
		defaultQueryResultMax:    opt.QueryPageSize,
		defaultServiceProperties: opt.DefaultServiceProperties,
	}, nil
}

// Close flushes the backing store, stops the event broker, and marks
// the store closed; subsequent operations fail observably because the
// underlying storage.Store rejects them once closed.
func (s *Store) Close() error {
	s.eventBroker.Stop()
	return s.storage.Close()
}

// GetEventBroker returns the store's change-notification broker, for
// callers (the API layer, CLI watch commands) that want to subscribe to
// table/entity/batch/service-properties events.
func (s *Store) GetEventBroker() *events.Broker {
	return s.eventBroker
}

// publishEvent is a nil-safe publish, so a Store built without Open
// (e.g. in a test that constructs Store{} directly) never panics on a
// nil broker.
func (s *Store) publishEvent(event *events.Event) {
	if s.eventBroker != nil {
		s.eventBroker.Publish(event)
	}
}

func entityCollectionName(account, table string) string {
	return account + "$" + table
}

func (s *Store) entityCollection(account, table string) *storage.Collection[types.Entity] {
	return storage.NewCollection[types.Entity](s.storage, entityCollectionName(account, table))
}

// tableKey encodes (account, table) so the $TABLES_COLLECTION$ bucket's
// natural byte-sorted iteration order is (account, table) ascending.
func tableKey(account, table string) []byte {
	return []byte(account + "\x00" + table)
}

// accountPrefix is the key prefix that selects every table row owned by
// one account, used for the indexed account scan in queryTable.
func accountPrefix(account string) []byte {
	return []byte(account + "\x00")
}

// entityKey encodes (partitionKey, rowKey) so an entity collection's
// natural byte-sorted iteration order is (PartitionKey, RowKey)
// ascending — the ordering C6 requires, with no separate sort pass.
func entityKey(partitionKey, rowKey string) []byte {
	return []byte(partitionKey + "\x00" + rowKey)
}

// CollectStats reports the current table count and, per table, its
// entity count ("account/table" -> count), using the backing bucket's
// own key count (cheap: no record unmarshaling) rather than scanning
// every entity. Satisfies pkg/metrics's Store interface so a Collector
// can poll it without this package importing pkg/metrics.
func (s *Store) CollectStats() (tables int, entities map[string]int, err error) {
	const op = "CollectStats"
	s.mu.Lock()
	defer s.mu.Unlock()

	tableCount, err := s.storage.CollectionSize(tablesCollectionName)
	if err != nil {
		return 0, nil, wrapError(op, ErrInternal, err)
	}

	rows, err := s.tables.Query().Run()
	if err != nil {
		return 0, nil, wrapError(op, ErrInternal, err)
	}
	counts := make(map[string]int, len(rows))
	for _, t := range rows {
		n, err := s.storage.CollectionSize(entityCollectionName(t.Account, t.Name))
		if err != nil {
			return 0, nil, wrapError(op, ErrInternal, err)
		}
		counts[t.Account+"/"+t.Name] = n
	}
	return tableCount, counts, nil
}

// queryPageSize returns the configured default page size, falling back
// to DefaultQueryResultMax when the store wasn't given one.
func (s *Store) queryPageSize() int {
	if s.defaultQueryResultMax > 0 {
		return s.defaultQueryResultMax
	}
	return DefaultQueryResultMax
}

func (s *Store) requireTableLocked(op, account, table string) error {
	_, found, err := s.tables.FindOne(tableKey(account, table))
	if err != nil {
		return wrapError(op, ErrInternal, err)
	}
	if !found {
		return newError(op, ErrTableNotExist)
	}
	return nil
}
