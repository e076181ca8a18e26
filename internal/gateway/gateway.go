// Package gateway owns the single connection to the native VR runtime and
// wraps its init/shutdown/poll/pose-query calls behind a guarded, classified
// surface. No call may be issued before Initialize succeeds and none after
// Shutdown; the gateway enforces both.
package gateway

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vrlink/extension/internal/pose"
)

// InitResult reports the device constants captured at a successful
// initialization: the recommended per-eye target size and the fixed per-eye
// offsets from the head pose origin.
type InitResult struct {
	TargetWidth  uint32
	TargetHeight uint32
	EyeOffsets   [pose.EyeCount]mgl32.Vec3
}

// Gateway is the thin synchronous wrapper around the native runtime.
type Gateway struct {
	rt     Runtime
	logger *slog.Logger

	initialized bool
	eyeOffsets  [pose.EyeCount]mgl32.Vec3
}

// New wraps the given native runtime. The gateway starts uninitialized.
func New(rt Runtime, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{rt: rt, logger: logger}
}

// Initialized reports whether Initialize has succeeded without a subsequent
// Shutdown.
func (g *Gateway) Initialized() bool {
	return g.initialized
}

// Initialize brings up the native runtime and captures the device constants.
// Failures are classified into the gateway error taxonomy and are non-fatal
// to the host process.
func (g *Gateway) Initialize() (InitResult, error) {
	if g.initialized {
		return InitResult{}, ErrAlreadyInitialized
	}

	if err := g.rt.Init(); err != nil {
		return InitResult{}, classifyInit(err)
	}

	w, h := g.rt.RecommendedTargetSize()
	for eye := pose.Eye(0); eye < pose.EyeCount; eye++ {
		g.eyeOffsets[eye] = g.rt.EyeToHeadOffset(eye)
	}
	g.initialized = true

	g.logger.Info("VR runtime initialized",
		"targetWidth", w,
		"targetHeight", h)

	return InitResult{
		TargetWidth:  w,
		TargetHeight: h,
		EyeOffsets:   g.eyeOffsets,
	}, nil
}

// Shutdown tears down the native runtime. Safe to call when not initialized.
func (g *Gateway) Shutdown() {
	if !g.initialized {
		return
	}
	g.rt.Shutdown()
	g.initialized = false
	g.logger.Info("VR runtime shut down")
}

// PollEvents drains up to max events from the native queue. The bound keeps
// an event storm from blocking the frame cadence; events beyond the bound
// stay queued in the runtime for subsequent frames.
func (g *Gateway) PollEvents(max int) ([]Event, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	var events []Event
	for len(events) < max {
		ev, ok := g.rt.PollNextEvent()
		if !ok {
			break
		}
		events = append(events, ev)
	}
	return events, nil
}

// LatestPoses fetches the freshest render and game pose sets as two
// timestamped snapshots. Failures wrap ErrPoseQuery.
func (g *Gateway) LatestPoses() (render, game pose.Snapshot, err error) {
	if !g.initialized {
		return pose.Snapshot{}, pose.Snapshot{}, ErrNotInitialized
	}
	r, gm, perr := g.rt.DevicePoses()
	if perr != nil {
		return pose.Snapshot{}, pose.Snapshot{}, fmt.Errorf("%w: %v", ErrPoseQuery, perr)
	}
	now := time.Now()
	return pose.Snapshot{Devices: r, Time: now}, pose.Snapshot{Devices: gm, Time: now}, nil
}

// ResetSeatedOrigin re-centers the runtime's seated calibration at the
// headset's current pose.
func (g *Gateway) ResetSeatedOrigin() error {
	if !g.initialized {
		return ErrNotInitialized
	}
	g.rt.ResetSeatedZeroPose()
	g.logger.Debug("seated origin reset")
	return nil
}

// SetTrackingOrigin selects the calibration frame poses are reported in.
func (g *Gateway) SetTrackingOrigin(origin TrackingOrigin) error {
	if !g.initialized {
		return ErrNotInitialized
	}
	g.rt.SetTrackingOriginMode(origin)
	g.logger.Debug("tracking origin set", "origin", origin.String())
	return nil
}

// EyeOffset returns the fixed head-to-eye translation captured at init.
func (g *Gateway) EyeOffset(eye pose.Eye) mgl32.Vec3 {
	return g.eyeOffsets[eye]
}

// EyeProjection returns the device projection matrix for one eye.
func (g *Gateway) EyeProjection(eye pose.Eye, near, far float32) (mgl32.Mat4, error) {
	if !g.initialized {
		return mgl32.Mat4{}, ErrNotInitialized
	}
	return g.rt.EyeProjection(eye, near, far), nil
}
