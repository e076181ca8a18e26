package recorder

import (
	"sync"
	"time"
)

// MemoryBackend keeps session telemetry in memory. Used when the recorder
// is enabled without a database, and by tests.
type MemoryBackend struct {
	mu sync.RWMutex

	session     *Session
	transitions []StateTransition
	sceneEvents []SceneEvent
	events      []RuntimeEvent
	timings     []FrameTiming

	idCounter uint
}

// NewMemoryBackend creates an empty memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Init() error  { return nil }
func (b *MemoryBackend) Close() error { return nil }

func (b *MemoryBackend) StartSession(s *Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.idCounter++
	s.ID = b.idCounter
	b.session = s
	b.transitions = nil
	b.sceneEvents = nil
	b.events = nil
	b.timings = nil
	return nil
}

func (b *MemoryBackend) EndSession(at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session != nil {
		b.session.EndTime = &at
	}
	return nil
}

func (b *MemoryBackend) RecordStateTransition(t *StateTransition) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitions = append(b.transitions, *t)
	return nil
}

func (b *MemoryBackend) RecordSceneEvent(e *SceneEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sceneEvents = append(b.sceneEvents, *e)
	return nil
}

func (b *MemoryBackend) RecordRuntimeEvent(e *RuntimeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, *e)
	return nil
}

func (b *MemoryBackend) RecordFrameTimings(batch []FrameTiming) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timings = append(b.timings, batch...)
	return nil
}

// Transitions returns a copy of the recorded state transitions.
func (b *MemoryBackend) Transitions() []StateTransition {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]StateTransition, len(b.transitions))
	copy(out, b.transitions)
	return out
}

// SceneEvents returns a copy of the recorded scene events.
func (b *MemoryBackend) SceneEvents() []SceneEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]SceneEvent, len(b.sceneEvents))
	copy(out, b.sceneEvents)
	return out
}

// Events returns a copy of the recorded runtime events.
func (b *MemoryBackend) Events() []RuntimeEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]RuntimeEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Timings returns a copy of the recorded frame timings.
func (b *MemoryBackend) Timings() []FrameTiming {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]FrameTiming, len(b.timings))
	copy(out, b.timings)
	return out
}
