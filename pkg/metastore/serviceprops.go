package metastore

import (
	"github.com/cuemby/tablestore/pkg/events"
	"github.com/cuemby/tablestore/pkg/types"
)

// GetServiceProperties looks up the per-account service-properties
// record by its unique AccountName. A supplemented convenience over the
// bare lookup: if no record has been written yet, a seeded record is
// returned instead of a not-found error, since a fresh account's
// service configuration is "everything off" (or whatever template the
// store was configured with), not "unknown" — matching what a caller
// doing getServiceProperties before the first setServiceProperties
// expects.
func (s *Store) GetServiceProperties(account string) (*types.ServiceProperties, error) {
	const op = "GetServiceProperties"
	instrumentServicePropertiesOp("get")
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, found, err := s.services.FindOne([]byte(account))
	if err != nil {
		return nil, wrapError(op, ErrInternal, err)
	}
	if !found {
		if s.defaultServiceProperties != nil {
			seeded := s.defaultServiceProperties.Clone()
			seeded.AccountName = account
			return seeded, nil
		}
		return &types.ServiceProperties{AccountName: account}, nil
	}
	return rec.Clone(), nil
}

// SetServiceProperties upserts by AccountName. For an existing record,
// each of Cors/HourMetrics/MinuteMetrics/Logging is replaced only when
// the incoming value is non-nil; a nil field in incoming leaves the
// stored value untouched.
func (s *Store) SetServiceProperties(incoming *types.ServiceProperties) error {
	const op = "SetServiceProperties"
	instrumentServicePropertiesOp("set")
	s.mu.Lock()
	defer s.mu.Unlock()

	key := []byte(incoming.AccountName)
	existing, found, err := s.services.FindOne(key)
	if err != nil {
		return wrapError(op, ErrInternal, err)
	}
	if !found {
		rec := incoming.Clone()
		if err := s.services.Insert(key, rec); err != nil {
			return wrapError(op, ErrInternal, err)
		}
		s.publishEvent(&events.Event{
			Type:     events.EventServicePropertiesUpdated,
			Message:  "service properties set for account '" + incoming.AccountName + "'",
			Metadata: map[string]string{"account": incoming.AccountName},
		})
		return nil
	}

	merged := existing.Clone()
	if incoming.Cors != nil {
		merged.Cors = incoming.Clone().Cors
	}
	if incoming.HourMetrics != nil {
		merged.HourMetrics = incoming.Clone().HourMetrics
	}
	if incoming.MinuteMetrics != nil {
		merged.MinuteMetrics = incoming.Clone().MinuteMetrics
	}
	if incoming.Logging != nil {
		merged.Logging = incoming.Clone().Logging
	}
	if err := s.services.Update(key, merged); err != nil {
		return wrapError(op, ErrInternal, err)
	}
	s.publishEvent(&events.Event{
		Type:     events.EventServicePropertiesUpdated,
		Message:  "service properties set for account '" + incoming.AccountName + "'",
		Metadata: map[string]string{"account": incoming.AccountName},
	})
	return nil
}
