package events

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vrlink/extension/internal/gateway"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) { l.log("DEBUG", msg, keysAndValues) }
func (l *testLogger) Info(msg string, keysAndValues ...any)  { l.log("INFO", msg, keysAndValues) }
func (l *testLogger) Error(msg string, keysAndValues ...any) { l.log("ERROR", msg, keysAndValues) }

func (l *testLogger) log(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("%s: %s %v", level, msg, kv))
}

// fakePoller implements Poller over a fixed event backlog
type fakePoller struct {
	backlog []gateway.Event
	err     error
}

func (f *fakePoller) PollEvents(max int) ([]gateway.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := max
	if n > len(f.backlog) {
		n = len(f.backlog)
	}
	out := f.backlog[:n]
	f.backlog = f.backlog[n:]
	return out, nil
}

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	b, err := NewBus(&testLogger{})
	if err != nil {
		t.Fatalf("failed to create bus: %v", err)
	}
	return b
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		code uint32
		want Kind
	}{
		{gateway.CodeTrackedDeviceActivated, KindDeviceConnected},
		{gateway.CodeTrackedDeviceDeactivated, KindDeviceDisconnected},
		{gateway.CodeInputFocusCaptured, KindInputFocusCaptured},
		{gateway.CodeInputFocusReleased, KindInputFocusReleased},
		{gateway.CodeHideRenderModels, KindRenderModelsHidden},
		{gateway.CodeShowRenderModels, KindRenderModelsShown},
		{9999, KindRuntime},
		{0, KindRuntime},
	}
	for _, tt := range tests {
		if got := kindOf(tt.code); got != tt.want {
			t.Errorf("kindOf(%d): expected %s, got %s", tt.code, tt.want, got)
		}
	}
}

func TestPublishRoutesByKind(t *testing.T) {
	b := newTestBus(t)

	var connected, focus int
	b.Subscribe(KindDeviceConnected, func(e Event) { connected++ })
	b.Subscribe(KindInputFocusCaptured, func(e Event) { focus++ })

	b.Publish(Event{Kind: KindDeviceConnected, Code: gateway.CodeTrackedDeviceActivated})
	b.Publish(Event{Kind: KindDeviceConnected, Code: gateway.CodeTrackedDeviceActivated})
	b.Publish(Event{Kind: KindInputFocusCaptured, Code: gateway.CodeInputFocusCaptured})

	if connected != 2 {
		t.Errorf("expected 2 connected events, got %d", connected)
	}
	if focus != 1 {
		t.Errorf("expected 1 focus event, got %d", focus)
	}
}

func TestDrainBound(t *testing.T) {
	b := newTestBus(t)

	p := &fakePoller{}
	for i := 0; i < 100; i++ {
		p.backlog = append(p.backlog, gateway.Event{Code: gateway.CodeTrackedDeviceActivated, DeviceIndex: i})
	}

	var received []Event
	b.Subscribe(KindDeviceConnected, func(e Event) { received = append(received, e) })

	now := time.Now()
	if got := b.Drain(p, now); got != MaxDrainPerFrame {
		t.Errorf("expected %d drained, got %d", MaxDrainPerFrame, got)
	}
	if len(received) != MaxDrainPerFrame {
		t.Errorf("expected %d published, got %d", MaxDrainPerFrame, len(received))
	}
	if received[0].Timestamp != now {
		t.Error("expected drain timestamp stamped on events")
	}

	// overflow events survive to the next frame
	if got := b.Drain(p, now.Add(11*time.Millisecond)); got != 36 {
		t.Errorf("expected 36 drained on second frame, got %d", got)
	}
	if len(received) != 100 {
		t.Errorf("expected all 100 events delivered across frames, got %d", len(received))
	}
}

func TestDrainMapsCodes(t *testing.T) {
	b := newTestBus(t)
	p := &fakePoller{backlog: []gateway.Event{
		{Code: gateway.CodeHideRenderModels},
		{Code: 12345, DeviceIndex: 3},
	}}

	var hidden, runtime []Event
	b.Subscribe(KindRenderModelsHidden, func(e Event) { hidden = append(hidden, e) })
	b.Subscribe(KindRuntime, func(e Event) { runtime = append(runtime, e) })

	b.Drain(p, time.Now())

	if len(hidden) != 1 {
		t.Fatalf("expected 1 hidden event, got %d", len(hidden))
	}
	if len(runtime) != 1 || runtime[0].Code != 12345 || runtime[0].DeviceIndex != 3 {
		t.Fatalf("expected raw runtime event with code 12345, got %v", runtime)
	}
}

func TestDrainPollError(t *testing.T) {
	b := newTestBus(t)
	p := &fakePoller{err: gateway.ErrNotInitialized}

	called := false
	b.Subscribe(KindRuntime, func(e Event) { called = true })

	if got := b.Drain(p, time.Now()); got != 0 {
		t.Errorf("expected 0 drained on poll error, got %d", got)
	}
	if called {
		t.Error("no events should be published on poll error")
	}
}

func TestBufferedSubscription(t *testing.T) {
	b := newTestBus(t)

	var mu sync.Mutex
	var got []int
	done := make(chan struct{}, 8)
	b.Subscribe(KindDeviceConnected, func(e Event) {
		mu.Lock()
		got = append(got, e.DeviceIndex)
		mu.Unlock()
		done <- struct{}{}
	}, Buffered(8), Blocking())

	for i := 0; i < 5; i++ {
		b.Publish(Event{Kind: KindDeviceConnected, DeviceIndex: i})
	}
	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for buffered handler")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 5 {
		t.Fatalf("expected 5 events, got %d", len(got))
	}
	for i, idx := range got {
		if idx != i {
			t.Errorf("event %d: expected device %d, got %d", i, i, idx)
		}
	}
}
