// Package types defines the data model shared by the table store: tables,
// entities, and per-account service properties.
package types

import "time"

// Table is a registry record keyed by (Account, Name); Name is
// case-sensitive and unique within an account.
type Table struct {
	Account  string
	Name     string
	TableAcl *TableACL // opaque; stored but never interpreted here
}

// Clone returns a copy so returned table records can't alias store-owned
// state.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := *t
	if t.TableAcl != nil {
		acl := *t.TableAcl
		out.TableAcl = &acl
	}
	return &out
}

// TableACL is the opaque access-policy payload attached by setTableACL.
// Its contents are not inspected by this package (see ACLPolicy in
// pkg/metastore/acl.go for the explicitly unimplemented policy surface).
type TableACL struct {
	Raw []byte
}

// Entity is one row in a table's entity collection, identified by
// (PartitionKey, RowKey) within that collection.
type Entity struct {
	PartitionKey     string
	RowKey           string
	Properties       map[string]any // user properties, plus "<name>@odata.type" companions
	LastModifiedTime time.Time
	ETag             string
}

// Clone returns a deep-enough copy of the entity so that callers holding
// a returned record cannot mutate store-owned state.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	props := make(map[string]any, len(e.Properties))
	for k, v := range e.Properties {
		props[k] = v
	}
	return &Entity{
		PartitionKey:     e.PartitionKey,
		RowKey:           e.RowKey,
		Properties:       props,
		LastModifiedTime: e.LastModifiedTime,
		ETag:             e.ETag,
	}
}

// ServiceProperties is the per-account service configuration record,
// keyed uniquely by AccountName.
type ServiceProperties struct {
	AccountName   string
	Cors          []*CorsRule
	HourMetrics   *MetricsConfig
	MinuteMetrics *MetricsConfig
	Logging       *LoggingConfig
}

// CorsRule is one CORS rule entry, matching the Azure Table service's
// CORS element shape closely enough to round-trip through the wire layer
// this package doesn't implement.
type CorsRule struct {
	AllowedOrigins  []string
	AllowedMethods  []string
	AllowedHeaders  []string
	ExposedHeaders  []string
	MaxAgeInSeconds int
}

// MetricsConfig configures hour or minute metrics collection.
type MetricsConfig struct {
	Version         string
	Enabled         bool
	IncludeAPIs     bool
	RetentionPolicy *RetentionPolicy
}

// LoggingConfig configures the request-logging surface.
type LoggingConfig struct {
	Version         string
	Delete          bool
	Read            bool
	Write           bool
	RetentionPolicy *RetentionPolicy
}

// RetentionPolicy bounds how long logging/metrics data is retained.
type RetentionPolicy struct {
	Enabled bool
	Days    int
}

// Clone returns a deep copy so returned service-properties records can't
// alias store-owned sub-structures.
func (p *ServiceProperties) Clone() *ServiceProperties {
	if p == nil {
		return nil
	}
	out := &ServiceProperties{AccountName: p.AccountName}
	if p.Cors != nil {
		out.Cors = make([]*CorsRule, len(p.Cors))
		for i, c := range p.Cors {
			cc := *c
			out.Cors[i] = &cc
		}
	}
	if p.HourMetrics != nil {
		hm := *p.HourMetrics
		out.HourMetrics = &hm
	}
	if p.MinuteMetrics != nil {
		mm := *p.MinuteMetrics
		out.MinuteMetrics = &mm
	}
	if p.Logging != nil {
		lg := *p.Logging
		out.Logging = &lg
	}
	return out
}
