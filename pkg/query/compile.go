package query

import (
	"fmt"
	"time"

	"github.com/cuemby/tablestore/pkg/types"
)

// parseDatetimeToEpochMillis parses an OData datetime literal body
// (RFC3339, the wire format entities' own Timestamp/@odata.type
// datetime properties use) into milliseconds since the Unix epoch.
func parseDatetimeToEpochMillis(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return 0, fmt.Errorf("query: parse datetime %q: %w", s, err)
		}
	}
	return t.UnixMilli(), nil
}

// CompileTableFilter compiles a $filter expression that targets the
// table-name listing query (systemProperties = {TableName -> table
// name}; no user properties are addressable). An empty filter compiles
// to an accept-all predicate.
func CompileTableFilter(filter string) (func(tableName string) bool, error) {
	expr, err := compile(filter, tableMode)
	if err != nil {
		return nil, err
	}
	return func(tableName string) bool {
		return expr.eval(tableNameResolver{name: tableName})
	}, nil
}

// CompileEntityFilter compiles a $filter expression that targets entity
// queries: PartitionKey and RowKey are addressable system fields, and
// any other identifier is looked up in the entity's user properties.
func CompileEntityFilter(filter string) (func(e *types.Entity) bool, error) {
	expr, err := compile(filter, entityMode)
	if err != nil {
		return nil, err
	}
	return func(e *types.Entity) bool {
		return expr.eval(entityResolver{e: e})
	}, nil
}

type tableNameResolver struct{ name string }

func (r tableNameResolver) systemField(name string) (val, bool) {
	if name == "table" {
		return strVal(r.name), true
	}
	return val{}, false
}

func (r tableNameResolver) property(string) (val, bool) { return val{}, false }

type entityResolver struct{ e *types.Entity }

func (r entityResolver) systemField(name string) (val, bool) {
	switch name {
	case "PartitionKey":
		return strVal(r.e.PartitionKey), true
	case "RowKey":
		return strVal(r.e.RowKey), true
	}
	return val{}, false
}

func (r entityResolver) property(name string) (val, bool) {
	v, ok := r.e.Properties[name]
	if !ok {
		return val{}, false
	}
	return fromAny(v), true
}
