package metrics

import (
	"time"

	"github.com/cuemby/tablestore/pkg/log"
)

// Store is the subset of metastore.Store's surface Collector needs.
// Expressed as a local interface, rather than importing pkg/metastore
// directly, so pkg/metastore can push operation metrics (defined in
// metrics.go) without creating an import cycle between the two
// packages.
type Store interface {
	CollectStats() (tables int, entities map[string]int, err error)
}

// Collector periodically polls a Store for resource counts and
// republishes them as gauges. Operation-level metrics (durations,
// counters) are updated directly at their call sites in pkg/metastore
// instead of by polling.
type Collector struct {
	store  Store
	stopCh chan struct{}
}

// NewCollector creates a collector for store.
func NewCollector(store Store) *Collector {
	return &Collector{
		store:  store,
		stopCh: make(chan struct{}),
	}
}

// Start polls once immediately, then every 15s until Stop.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts polling.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	tables, entities, err := c.store.CollectStats()
	if err != nil {
		log.WithComponent("metrics").Warn().Err(err).Msg("stats collection failed")
		return
	}

	TablesTotal.Set(float64(tables))
	for key, count := range entities {
		account, table := splitAccountTable(key)
		EntitiesTotal.WithLabelValues(account, table).Set(float64(count))
	}
}

func splitAccountTable(key string) (account, table string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
