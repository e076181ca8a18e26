package gateway

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/vrlink/extension/internal/pose"
)

// TrackingOrigin selects the calibration frame the runtime reports poses in.
type TrackingOrigin int

const (
	OriginSeated TrackingOrigin = iota
	OriginStanding
)

func (o TrackingOrigin) String() string {
	if o == OriginStanding {
		return "standing"
	}
	return "seated"
}

// Event is one entry of the runtime's native event queue.
type Event struct {
	Code        uint32
	DeviceIndex int
	// Age is how long ago the event occurred, in seconds, as reported by
	// the runtime.
	Age float32
}

// Native event codes surfaced by the runtime. Codes not listed here are
// passed through to subscribers untyped.
const (
	CodeTrackedDeviceActivated   = 100
	CodeTrackedDeviceDeactivated = 101
	CodeInputFocusCaptured       = 400
	CodeInputFocusReleased       = 401
	CodeHideRenderModels         = 810
	CodeShowRenderModels         = 811
)

// Runtime is the native VR runtime surface the gateway wraps. Implementations
// bind the actual runtime library; tests and the sim harness provide fakes.
// All calls are synchronous and bounded by the native runtime's own timeouts.
type Runtime interface {
	// Init brings up the native runtime. On failure it returns one of the
	// gateway sentinels or a *NativeInitError.
	Init() error
	Shutdown()

	// PollNextEvent pops one event from the native queue, reporting false
	// when the queue is empty.
	PollNextEvent() (Event, bool)

	// DevicePoses returns the freshest render-time and game-time pose sets.
	DevicePoses() (render, game [pose.MaxTrackedDevices]pose.DevicePose, err error)

	ResetSeatedZeroPose()
	SetTrackingOriginMode(origin TrackingOrigin)

	RecommendedTargetSize() (width, height uint32)
	EyeToHeadOffset(eye pose.Eye) mgl32.Vec3
	EyeProjection(eye pose.Eye, near, far float32) mgl32.Mat4
}
