/*
Package events provides an in-memory event broker for the table store's
pub/sub notifications.

It is a lightweight, topic-agnostic event bus: every published event is
broadcast to every current subscriber over a buffered channel. Broadcast
never blocks, so a slow or absent subscriber never stalls a
metadata-store write; Publish only waits when the broker's 100-event
queue is full and the broker has not been stopped.

# Event catalog

Table events: EventTableCreated, EventTableDeleted.

Entity events: EventEntityInserted, EventEntityUpdated, EventEntityMerged,
EventEntityDeleted.

Batch events: EventBatchCommitted, EventBatchRolledBack.

Service-properties events: EventServicePropertiesUpdated.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			fmt.Printf("[%s] %s: %s\n", event.Timestamp.Format(time.RFC3339), event.Type, event.Message)
		}
	}()

	broker.Publish(&events.Event{
		Type:    events.EventEntityInserted,
		Message: "entity inserted into table 'Widgets'",
		Metadata: map[string]string{
			"account":       "devstoreaccount1",
			"table":         "Widgets",
			"partition_key": "p1",
			"row_key":       "r1",
		},
	})

A full subscriber buffer drops the event for that subscriber rather than
blocking the publisher; a subscriber that needs every event should drain
its channel promptly.
*/
package events
