// Package recorder persists session telemetry (state transitions, scene
// changes, runtime events and sampled frame timings) for offline debugging
// of tracking problems. Disabled by default; when enabled it must never
// block the frame, so frame timings are queued and flushed in batches.
package recorder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vrlink/extension/internal/queue"
)

// Backend is the interface all recorder storage implementations satisfy.
type Backend interface {
	Init() error
	Close() error

	StartSession(s *Session) error
	EndSession(at time.Time) error

	RecordStateTransition(t *StateTransition) error
	RecordSceneEvent(e *SceneEvent) error
	RecordRuntimeEvent(e *RuntimeEvent) error
	RecordFrameTimings(batch []FrameTiming) error
}

// Frame timings are sampled and batched: one row every sampleEvery frames,
// one backend write every flushEvery recorded rows.
const (
	sampleEvery = 30
	flushEvery  = 64
)

// Service wraps a Backend with the sampling and batching policy and exposes
// the hook methods the pipeline components are wired to.
type Service struct {
	backend Backend
	logger  *slog.Logger

	session  *Session
	timings  *queue.Queue[FrameTiming]
	recorded uint64
}

// NewService creates a recorder service over the given backend.
func NewService(b Backend, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend: b,
		logger:  logger,
		timings: queue.New[FrameTiming](),
	}
}

// Start initializes the backend and opens a new session.
func (s *Service) Start(version string) error {
	if err := s.backend.Init(); err != nil {
		return fmt.Errorf("recorder init: %w", err)
	}
	sess := &Session{StartTime: time.Now(), Version: version}
	if err := s.backend.StartSession(sess); err != nil {
		return fmt.Errorf("recorder start session: %w", err)
	}
	s.session = sess
	return nil
}

// Stop flushes pending timings, closes the session and the backend.
func (s *Service) Stop() error {
	s.flush()
	if s.session != nil {
		if err := s.backend.EndSession(time.Now()); err != nil {
			s.logger.Error("recorder end session failed", "error", err)
		}
		s.session = nil
	}
	return s.backend.Close()
}

// StateTransition records an initialization state change.
func (s *Service) StateTransition(from, to string, at time.Time) {
	if s.session == nil {
		return
	}
	err := s.backend.RecordStateTransition(&StateTransition{
		SessionID: s.session.ID,
		Time:      at,
		FromState: from,
		ToState:   to,
	})
	if err != nil {
		s.logger.Error("recording state transition failed", "error", err)
	}
}

// SceneEvent records a scene entry or exit.
func (s *Service) SceneEvent(scene string, entered bool, at time.Time) {
	if s.session == nil {
		return
	}
	err := s.backend.RecordSceneEvent(&SceneEvent{
		SessionID: s.session.ID,
		Time:      at,
		Scene:     scene,
		Entered:   entered,
	})
	if err != nil {
		s.logger.Error("recording scene event failed", "error", err)
	}
}

// RuntimeEvent records one structured runtime event.
func (s *Service) RuntimeEvent(kind string, code uint32, deviceIndex int, at time.Time) {
	if s.session == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"code":        code,
		"deviceIndex": deviceIndex,
	})
	err := s.backend.RecordRuntimeEvent(&RuntimeEvent{
		SessionID: s.session.ID,
		Time:      at,
		Kind:      kind,
		Code:      code,
		Payload:   payload,
	})
	if err != nil {
		s.logger.Error("recording runtime event failed", "error", err)
	}
}

// FrameCompleted samples frame timings and flushes them in batches.
func (s *Service) FrameCompleted(frame uint64, duration time.Duration) {
	if s.session == nil {
		return
	}
	if frame%sampleEvery != 0 {
		return
	}
	s.timings.Push(FrameTiming{
		SessionID:  s.session.ID,
		Time:       time.Now(),
		Frame:      frame,
		DurationMs: float32(duration.Microseconds()) / 1000,
	})
	s.recorded++
	if s.timings.Len() >= flushEvery {
		s.write(s.timings.PopN(flushEvery))
	}
}

// QueuedTimings reports the number of frame timing rows awaiting a flush.
func (s *Service) QueuedTimings() int {
	return s.timings.Len()
}

func (s *Service) flush() {
	s.write(s.timings.GetAndEmpty())
}

func (s *Service) write(batch []FrameTiming) {
	if len(batch) == 0 {
		return
	}
	if err := s.backend.RecordFrameTimings(batch); err != nil {
		s.logger.Error("flushing frame timings failed", "error", err, "rows", len(batch))
	}
}
