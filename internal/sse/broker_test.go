package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishLectureEvent_Delivery(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishLectureEvent(KindSlide, "s1", map[string]any{"slide_id": "slide_01"})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: slide.generated") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"slide_id":"slide_01"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishLectureEvent_ListThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event should trigger lectures.updated.
	b.PublishLectureEvent(KindStarted, "s1", nil)
	// Second event immediately should NOT trigger another lectures.updated.
	b.PublishLectureEvent(KindSlide, "s1", map[string]any{"slide_id": "slide_02"})

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	listCount := 0
	var lectureEvents []string
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "lectures.updated") {
				listCount++
			} else {
				lectureEvents = append(lectureEvents, s)
			}
		default:
			break loop
		}
	}

	if len(lectureEvents) != 2 {
		t.Fatalf("lecture events = %d, want 2", len(lectureEvents))
	}
	if !strings.Contains(lectureEvents[0], "event: lecture.started") {
		t.Errorf("first event = %q", lectureEvents[0])
	}
	if !strings.Contains(lectureEvents[1], `"session_id":"s1"`) || !strings.Contains(lectureEvents[1], `"slide_id":"slide_02"`) {
		t.Errorf("second event = %q", lectureEvents[1])
	}
	if listCount != 1 {
		t.Errorf("list events = %d, want 1 (throttled)", listCount)
	}
}

func TestPublishLectureEvent_UnknownKindDropped(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishLectureEvent("renamed", "s1", nil)
	b.PublishLectureEvent(KindDeleted, "s1", nil)

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "event: lecture.deleted") {
			t.Errorf("unexpected first event %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishLectureEvent(KindReferences, "s1", map[string]any{"valid_links": 4})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: references.validated") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.PublishLectureEvent(KindSlide, "s1", map[string]any{"i": "x"})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.PublishLectureEvent(KindSlide, "x", nil)
}
