package events

import "testing"

func TestPublishReachesTypedSubscriber(t *testing.T) {
	bus := NewBus()
	var got []Event
	bus.Subscribe(EventModelTrained, func(e Event) { got = append(got, e) })

	bus.Publish(EventModelTrained, map[string]interface{}{"strategies": []string{"s1"}})
	bus.Publish(EventWeightsUpdated, nil)

	if len(got) != 1 {
		t.Fatalf("received %d events, want 1", len(got))
	}
	if got[0].Type != EventModelTrained {
		t.Errorf("event type = %s, want MODEL_TRAINED", got[0].Type)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("event timestamp not stamped")
	}
}

func TestSubscribeAllSeesEveryType(t *testing.T) {
	bus := NewBus()
	count := 0
	bus.SubscribeAll(func(Event) { count++ })

	bus.Publish(EventDecisionEmitted, nil)
	bus.Publish(EventWeightsUpdated, nil)
	bus.Publish(EventPersistenceError, nil)

	if count != 3 {
		t.Fatalf("catch-all received %d events, want 3", count)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	// Must not panic or block.
	bus.Publish(EventParametersAdjusted, map[string]interface{}{"version": 2})
}
