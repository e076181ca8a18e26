// Package pipeline drives one frame of the VR core: event drain, state
// machine tick, pose sample, scene resolve, frame submission. The host's
// render loop calls Tick at its post-render hook; all phases run on that one
// logical thread, so no phase ever observes another phase mid-write.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/vrlink/extension/internal/events"
	"github.com/vrlink/extension/internal/gateway"
	"github.com/vrlink/extension/internal/lifecycle"
	"github.com/vrlink/extension/internal/sampler"
	"github.com/vrlink/extension/internal/scene"
)

// maxFrameDelta caps the dt handed to scene policies, so a debugger pause or
// scene load stall does not turn into a teleport.
const maxFrameDelta = 0.25

// FrameHook observes completed frames, e.g. for session recording.
type FrameHook func(frame uint64, duration time.Duration)

// Dependencies holds the pipeline's collaborators.
type Dependencies struct {
	Gateway *gateway.Gateway
	Machine *lifecycle.Machine
	Bus     *events.Bus
	Sampler *sampler.Sampler
	Scenes  *scene.Manager
	Logger  *slog.Logger
}

// Pipeline sequences the per-frame phases.
type Pipeline struct {
	deps Dependencies

	frame    uint64
	lastTick time.Time
	hook     FrameHook

	frameDuration metric.Float64Histogram
}

// New creates a pipeline reporting frame timing through the global OTel
// meter.
func New(deps Dependencies) (*Pipeline, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	p := &Pipeline{deps: deps}

	var err error
	p.frameDuration, err = meter().Float64Histogram(
		"frame.duration",
		metric.WithDescription("Per-frame pipeline duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame duration histogram: %w", err)
	}

	return p, nil
}

// SetFrameHook registers an observer for completed frames.
func (p *Pipeline) SetFrameHook(h FrameHook) { p.hook = h }

// Frame returns the number of completed ticks.
func (p *Pipeline) Frame() uint64 { return p.frame }

// ContextAttrs provides the current frame number for log enrichment.
func (p *Pipeline) ContextAttrs() []slog.Attr {
	return []slog.Attr{slog.Uint64("frame", p.frame)}
}

// Tick runs one frame. Phase order is fixed: events are drained first, the
// state machine advances, and only then are poses sampled and the frame
// submitted. Submission happens strictly after sampling.
func (p *Pipeline) Tick(now time.Time) {
	start := time.Now()

	dt := float32(0)
	if !p.lastTick.IsZero() {
		dt = float32(now.Sub(p.lastTick).Seconds())
		if dt > maxFrameDelta {
			dt = maxFrameDelta
		}
	}
	p.lastTick = now

	if p.deps.Machine.State() == lifecycle.StateRunning {
		p.deps.Bus.Drain(p.deps.Gateway, now)
	}

	p.deps.Machine.Tick(now)

	if p.deps.Machine.State() == lifecycle.StateRunning {
		if snap, ok := p.deps.Sampler.Sample(now); ok {
			if head, valid := snap.Head(); valid {
				p.deps.Scenes.Resolve(head, dt)
			} else {
				p.deps.Logger.Debug("headset pose invalid this frame")
			}
			p.deps.Sampler.Submit()
		}
	}

	p.frame++
	elapsed := time.Since(start)
	p.frameDuration.Record(context.Background(), float64(elapsed.Microseconds())/1000)
	if p.hook != nil {
		p.hook(p.frame, elapsed)
	}
}

// Close shuts the session down synchronously. Called at host teardown; the
// owning thread must not proceed until it returns.
func (p *Pipeline) Close() {
	p.deps.Machine.Close()
}
