package events

import (
	"testing"
	"time"
)

func TestBroker_PublishSubscribe(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	b.Publish(&Event{
		Type:    EventTableCreated,
		Message: "table 'Widgets' created",
	})

	select {
	case evt := <-sub:
		if evt.Type != EventTableCreated {
			t.Errorf("Type = %q, want %q", evt.Type, EventTableCreated)
		}
		if evt.Timestamp.IsZero() {
			t.Error("Publish did not set Timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBroker_MultipleSubscribers(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub1 := b.Subscribe()
	defer b.Unsubscribe(sub1)
	sub2 := b.Subscribe()
	defer b.Unsubscribe(sub2)

	if got := b.SubscriberCount(); got != 2 {
		t.Fatalf("SubscriberCount() = %d, want 2", got)
	}

	b.Publish(&Event{Type: EventEntityInserted})

	for _, sub := range []Subscriber{sub1, sub2} {
		select {
		case evt := <-sub:
			if evt.Type != EventEntityInserted {
				t.Errorf("Type = %q, want %q", evt.Type, EventEntityInserted)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	b.Unsubscribe(sub)

	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", got)
	}

	if _, ok := <-sub; ok {
		t.Error("channel should be closed after Unsubscribe")
	}
}

func TestBroker_PublishWithoutStart(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		b.Publish(&Event{Type: EventBatchCommitted})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no running broadcast loop")
	}

	select {
	case <-sub:
		t.Error("subscriber received event despite broker never being started")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_FullSubscriberBufferSkipped(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	for i := 0; i < 60; i++ {
		b.Publish(&Event{Type: EventEntityUpdated})
	}

	time.Sleep(50 * time.Millisecond)

	drained := 0
	for {
		select {
		case <-sub:
			drained++
		default:
			if drained == 0 {
				t.Error("expected at least some events to be delivered")
			}
			return
		}
	}
}
