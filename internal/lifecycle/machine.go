// Package lifecycle manages the VR initialization state machine. It is the
// single writer of the state; everything else reads it once per frame and
// treats it as immutable for the rest of the frame.
package lifecycle

import (
	"log/slog"
	"time"

	"github.com/vrlink/extension/internal/gateway"
	"github.com/vrlink/extension/internal/host"
	"github.com/vrlink/extension/internal/pose"
)

// State is the initialization state of the VR session.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateRunning
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultCooldown is the fixed wait between a failed init attempt and the
// next one. There is no backoff growth and no retry cap.
const DefaultCooldown = 10 * time.Second

// TransitionHook observes state changes, e.g. for session recording.
type TransitionHook func(from, to State, at time.Time)

// Dependencies holds everything the machine needs to bring a session up.
type Dependencies struct {
	Gateway *gateway.Gateway
	Backend host.RenderBackend
	Logger  *slog.Logger
}

// Machine advances the session state once per frame. Transitions:
//
//	Uninitialized -> Initializing  when VR has been enabled
//	Initializing  -> Running       on gateway init success
//	Initializing  -> Failed        on any gateway init error
//	Failed        -> Uninitialized after the cool-down elapses
//	Running       -> Uninitialized on disable (triggers gateway shutdown)
type Machine struct {
	deps     Dependencies
	cooldown time.Duration

	state       State
	enabled     bool
	lastAttempt time.Time
	initResult  gateway.InitResult
	hook        TransitionHook
}

// NewMachine creates a machine in StateUninitialized. A non-positive cooldown
// falls back to DefaultCooldown.
func NewMachine(deps Dependencies, cooldown time.Duration) *Machine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Machine{deps: deps, cooldown: cooldown}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Enabled reports whether VR is currently requested on.
func (m *Machine) Enabled() bool { return m.enabled }

// InitResult returns the device constants captured by the last successful
// initialization. Valid only while Running.
func (m *Machine) InitResult() gateway.InitResult { return m.initResult }

// SetTransitionHook registers an observer for state changes.
func (m *Machine) SetTransitionHook(h TransitionHook) { m.hook = h }

// SetEnabled records the host's VR-enable request. The state reacts on the
// next Tick.
func (m *Machine) SetEnabled(v bool) {
	m.enabled = v
}

// ForceDisable turns VR off in response to a session-fatal condition (pose
// query failure). The machine must be re-enabled externally to retry.
func (m *Machine) ForceDisable(reason string) {
	if !m.enabled {
		return
	}
	m.enabled = false
	m.deps.Logger.Error("VR force-disabled", "reason", reason)
}

// Tick advances the machine at most one logical step. It is called exactly
// once per frame, before pose sampling.
func (m *Machine) Tick(now time.Time) {
	switch m.state {
	case StateUninitialized:
		if m.enabled {
			m.transition(StateInitializing, now)
			m.attempt(now)
		}
	case StateInitializing:
		// Normally consumed by attempt() in the same tick; reaching here
		// means a previous attempt was interrupted. Try again.
		m.attempt(now)
	case StateRunning:
		if !m.enabled {
			m.deps.Gateway.Shutdown()
			m.transition(StateUninitialized, now)
		}
	case StateFailed:
		if now.Sub(m.lastAttempt) >= m.cooldown {
			m.transition(StateUninitialized, now)
		}
	}
}

// Close shuts the session down synchronously for process teardown.
func (m *Machine) Close() {
	m.enabled = false
	if m.state == StateRunning {
		m.deps.Gateway.Shutdown()
		m.transition(StateUninitialized, time.Now())
	}
}

func (m *Machine) attempt(now time.Time) {
	m.lastAttempt = now

	res, err := m.deps.Gateway.Initialize()
	if err != nil {
		// Transient hardware/runtime failures stay inside the machine:
		// one log line, VR off until the next successful attempt.
		m.deps.Logger.Warn("VR init failed", "error", err)
		m.enabled = false
		m.transition(StateFailed, now)
		return
	}

	m.deps.Gateway.SetTrackingOrigin(gateway.OriginSeated)
	m.deps.Gateway.ResetSeatedOrigin()

	if err := m.registerTargets(res); err != nil {
		m.deps.Logger.Warn("render target registration failed", "error", err)
		m.deps.Gateway.Shutdown()
		m.enabled = false
		m.transition(StateFailed, now)
		return
	}

	m.initResult = res
	m.transition(StateRunning, now)
}

func (m *Machine) registerTargets(res gateway.InitResult) error {
	var targets [pose.EyeCount]host.RenderTarget
	for eye := pose.Eye(0); eye < pose.EyeCount; eye++ {
		targets[eye] = host.RenderTarget{
			Eye:    eye,
			Width:  res.TargetWidth,
			Height: res.TargetHeight,
			Bounds: host.FlippedFullQuad(),
		}
	}
	return m.deps.Backend.RegisterTargets(targets)
}

func (m *Machine) transition(to State, at time.Time) {
	from := m.state
	if from == to {
		return
	}
	m.state = to
	m.deps.Logger.Info("VR state changed", "from", from.String(), "to", to.String())
	if m.hook != nil {
		m.hook(from, to, at)
	}
}
