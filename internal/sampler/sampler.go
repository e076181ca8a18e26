// Package sampler fetches the freshest device poses once per rendered frame.
// It runs at the latest safe point before frame submission: sampling earlier
// lets more simulation and render work intervene before the pose is
// displayed, which shows up directly as motion-to-photon latency.
package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/vrlink/extension/internal/channel"
	"github.com/vrlink/extension/internal/gateway"
	"github.com/vrlink/extension/internal/host"
	"github.com/vrlink/extension/internal/lifecycle"
	"github.com/vrlink/extension/internal/pose"
)

// PoseSource is the slice of the gateway the sampler reads from.
type PoseSource interface {
	LatestPoses() (render, game pose.Snapshot, err error)
}

// Dependencies holds the sampler's collaborators.
type Dependencies struct {
	Poses   PoseSource
	Machine *lifecycle.Machine
	Backend host.RenderBackend
	Logger  *slog.Logger
}

// Sampler captures the render and game snapshots each frame, publishes the
// game snapshot to subscribers and retains the render snapshot for the
// current frame's submission.
type Sampler struct {
	deps Dependencies

	render      pose.Snapshot
	haveRender  bool
	subscribers []channel.Sender[pose.Snapshot]

	sampled  metric.Int64Counter
	failures metric.Int64Counter
}

// New creates a sampler reporting through the global OTel meter.
func New(deps Dependencies) (*Sampler, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Sampler{deps: deps}

	m := meter()
	var err error

	s.sampled, err = m.Int64Counter(
		"poses.sampled",
		metric.WithDescription("Total per-frame pose samples"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sampled counter: %w", err)
	}

	s.failures, err = m.Int64Counter(
		"poses.failures",
		metric.WithDescription("Total pose query failures"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}

	return s, nil
}

// Subscribe returns a receiver of the asynchronously published game-logic
// snapshots. Publication never blocks the frame; a full subscriber buffer
// misses that frame's snapshot.
func (s *Sampler) Subscribe(buffer int) channel.Receiver[pose.Snapshot] {
	ch := channel.New[pose.Snapshot](buffer)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Sample captures both snapshots for the current frame. Returns false when
// the session is not running or the query failed. A pose query failure is
// fatal for the session: VR is force-disabled rather than rendering with
// undefined pose data.
func (s *Sampler) Sample(now time.Time) (pose.Snapshot, bool) {
	s.haveRender = false
	if s.deps.Machine.State() != lifecycle.StateRunning {
		return pose.Snapshot{}, false
	}

	render, game, err := s.deps.Poses.LatestPoses()
	if err != nil {
		s.failures.Add(context.Background(), 1)
		s.deps.Logger.Error("pose query failed", "error", err)
		s.deps.Machine.ForceDisable(gateway.ErrPoseQuery.Error())
		return pose.Snapshot{}, false
	}

	s.sampled.Add(context.Background(), 1)
	s.render = render
	s.haveRender = true

	for _, sub := range s.subscribers {
		sub.TrySend(game)
	}

	return render, true
}

// Submit issues the frame-submission callback to the render backend. Must be
// called after Sample succeeded in the same frame; submitting without a
// fresh render snapshot is a programming error and is dropped with a log
// line instead of handing the backend stale poses.
func (s *Sampler) Submit() {
	if !s.haveRender {
		s.deps.Logger.Error("frame submit without a sampled pose, dropping")
		return
	}
	s.deps.Backend.Submit()
	s.haveRender = false
}

// RenderSnapshot returns the snapshot captured by the last successful
// Sample.
func (s *Sampler) RenderSnapshot() pose.Snapshot { return s.render }
