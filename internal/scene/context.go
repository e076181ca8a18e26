package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/vrlink/extension/internal/host"
	"github.com/vrlink/extension/internal/pose"
)

// CameraBinding associates a logical camera name with a host camera handle.
// Exactly one binding exists per declared name per scene, resolved once at
// scene setup. A name the host cannot resolve is marked absent and skipped
// every frame thereafter; there is no retry.
type CameraBinding struct {
	Name    string
	Camera  host.Camera
	Present bool

	// OriginalProjection is restored on scene teardown.
	OriginalProjection mgl32.Mat4
	EyeProjection      [pose.EyeCount]mgl32.Mat4
}

// Context is the mutable per-scene state. It is created on scene entry and
// torn down on exit; switching scenes constructs a fresh Context rather than
// mutating the old one, so a stale scale or anchor can never carry over.
type Context struct {
	Kind Kind

	// Initial is the world-space anchor captured at scene setup. Immutable
	// until the scene is set up again.
	Initial Anchor

	// Current is the working anchor. Scene policy decides each frame
	// whether it is pinned to Initial, glides, or drifts under locomotion.
	Current Anchor

	// InverseWorldScale multiplies device-space positions into world units.
	InverseWorldScale float32

	Bindings []*CameraBinding

	// HeadWorld and EyeWorld are the most recently resolved world-space
	// poses, kept for later consumers such as input ray casting.
	HeadWorld pose.Pose
	EyeWorld  [pose.EyeCount]pose.Pose
}

// newContext builds a fresh context for a scene entered with the given
// anchor.
func newContext(kind Kind, anchor Anchor, worldScale float32) *Context {
	if worldScale <= 0 {
		worldScale = 1
	}
	return &Context{
		Kind:              kind,
		Initial:           anchor,
		Current:           anchor,
		InverseWorldScale: 1 / worldScale,
		HeadWorld:         pose.Identity(),
		EyeWorld:          [pose.EyeCount]pose.Pose{pose.Identity(), pose.Identity()},
	}
}
