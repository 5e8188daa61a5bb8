package progress

import (
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	ch1, cancel1 := h.Subscribe("run-1")
	ch2, cancel2 := h.Subscribe("run-1")
	defer cancel1()
	defer cancel2()

	h.Publish(Event{RunID: "run-1", Step: "scraping", Pct: 35})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Step != "scraping" || ev.Pct != 35 {
				t.Errorf("subscriber %d got (%q, %d); want (scraping, 35)", i, ev.Step, ev.Pct)
			}
			if ev.At.IsZero() {
				t.Errorf("subscriber %d event has zero timestamp", i)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
}

func TestPublishDoesNotCrossRuns(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("run-a")
	defer cancel()

	h.Publish(Event{RunID: "run-b", Step: "scoring", Pct: 75})

	select {
	case ev := <-ch:
		t.Errorf("run-a subscriber got event for %q", ev.RunID)
	default:
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe("run-1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*3; i++ {
			h.Publish(Event{RunID: "run-1", Step: "scraping", Pct: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber channel")
	}
}

func TestCloseRunClosesChannels(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("run-1")

	h.CloseRun("run-1")

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel after CloseRun")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after CloseRun")
	}

	// cancel after CloseRun must be a no-op, not a double close
	cancel()
	cancel()
}

func TestCancelRemovesSubscriber(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("run-1")
	cancel()

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}

	// publishing afterwards must not panic on the closed channel
	h.Publish(Event{RunID: "run-1", Step: "scoring", Pct: 75})
}
