package metastore

import (
	"github.com/cuemby/tablestore/pkg/events"
	"github.com/cuemby/tablestore/pkg/log"
	"github.com/cuemby/tablestore/pkg/types"
)

// CreateTable registers a new table and its entity collection. A stale
// entity collection left behind by a prior table of the same name is
// dropped before the fresh one is created.
func (s *Store) CreateTable(account, table string) (result *types.Table, err error) {
	defer instrumentTableOp("create", &err)
	const op = "CreateTable"
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tableKey(account, table)
	if _, found, err := s.tables.FindOne(key); err != nil {
		return nil, wrapError(op, ErrInternal, err)
	} else if found {
		return nil, newError(op, ErrTableAlreadyExists)
	}

	collName := entityCollectionName(account, table)
	has, err := s.storage.HasCollection(collName)
	if err != nil {
		return nil, wrapError(op, ErrInternal, err)
	}
	if has {
		if err := s.storage.RemoveCollection(collName); err != nil {
			return nil, wrapError(op, ErrInternal, err)
		}
	}
	if err := s.storage.EnsureCollection(collName); err != nil {
		return nil, wrapError(op, ErrInternal, err)
	}

	rec := &types.Table{Account: account, Name: table}
	if err := s.tables.Insert(key, rec); err != nil {
		return nil, wrapError(op, ErrInternal, err)
	}

	log.WithAccount(account).Info().Str("table", table).Msg("table created")
	s.publishEvent(&events.Event{
		Type:     events.EventTableCreated,
		Message:  "table '" + table + "' created",
		Metadata: map[string]string{"account": account, "table": table},
	})
	return rec.Clone(), nil
}

// DeleteTable removes the registry record and drops the entity
// collection, if any.
func (s *Store) DeleteTable(account, table string) (err error) {
	defer instrumentTableOp("delete", &err)
	const op = "DeleteTable"
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tableKey(account, table)
	_, found, err := s.tables.FindOne(key)
	if err != nil {
		return wrapError(op, ErrInternal, err)
	}
	if !found {
		return newError(op, ErrResourceNotFound)
	}
	if err := s.tables.Remove(key); err != nil {
		return wrapError(op, ErrInternal, err)
	}
	if err := s.storage.RemoveCollection(entityCollectionName(account, table)); err != nil {
		return wrapError(op, ErrInternal, err)
	}

	log.WithAccount(account).Info().Str("table", table).Msg("table deleted")
	s.publishEvent(&events.Event{
		Type:     events.EventTableDeleted,
		Message:  "table '" + table + "' deleted",
		Metadata: map[string]string{"account": account, "table": table},
	})
	return nil
}

// GetTable looks up a table's registry record.
func (s *Store) GetTable(account, table string) (*types.Table, error) {
	const op = "GetTable"
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, found, err := s.tables.FindOne(tableKey(account, table))
	if err != nil {
		return nil, wrapError(op, ErrInternal, err)
	}
	if !found {
		return nil, newError(op, ErrTableNotFound)
	}
	return rec.Clone(), nil
}

// SetTableACL stores the opaque ACL payload on a table record without
// interpreting it; see pkg/metastore/acl.go for the access-policy
// endpoints that remain explicitly unimplemented.
func (s *Store) SetTableACL(account, table string, acl *types.TableACL) error {
	const op = "SetTableACL"
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tableKey(account, table)
	rec, found, err := s.tables.FindOne(key)
	if err != nil {
		return wrapError(op, ErrInternal, err)
	}
	if !found {
		return newError(op, ErrTableNotFound)
	}
	rec.TableAcl = acl
	if err := s.tables.Update(key, rec); err != nil {
		return wrapError(op, ErrInternal, err)
	}
	return nil
}

// ListTables is a filterless convenience over QueryTables that follows
// every continuation page, for callers (CLI, admin tooling) that just
// want every table an account owns with no $filter or pagination
// concerns.
func (s *Store) ListTables(account string) ([]*types.Table, error) {
	var out []*types.Table
	next := ""
	for {
		page, cont, err := s.QueryTables(account, "", DefaultQueryResultMax, next)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if cont == "" {
			return out, nil
		}
		next = cont
	}
}
