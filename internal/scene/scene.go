// Package scene maps sampled device-space poses into the host's world space,
// one policy per scene kind. A SceneContext is reconstructed on every scene
// entry; anchors and world scale never survive a scene switch.
package scene

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vrlink/extension/internal/pose"
)

// Kind identifies which host scene/mode is active.
type Kind int

const (
	// KindUnsupported marks an identifier the pipeline has no policy for.
	// Setting up such a scene is a configuration error, not a runtime
	// condition.
	KindUnsupported Kind = iota
	KindMenu
	KindVehicleInterior
	KindExtravehicular
	KindEditor
)

func (k Kind) String() string {
	switch k {
	case KindMenu:
		return "menu"
	case KindVehicleInterior:
		return "vehicle-interior"
	case KindExtravehicular:
		return "extravehicular"
	case KindEditor:
		return "editor"
	default:
		return "unsupported"
	}
}

// ErrUnrecognizedScene aborts scene setup for an identifier with no
// registered policy. It indicates a host/core version mismatch and is never
// silently ignored.
var ErrUnrecognizedScene = errors.New("scene: unrecognized scene identifier")

// Anchor is the (position, rotation) pair mapping device space into world
// space for the active scene.
type Anchor struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// Scene is the per-kind transform policy. Setup and Teardown bracket the
// scene's lifetime; Update evolves the context's anchor once per frame,
// before the per-eye transforms are computed.
type Scene interface {
	Kind() Kind

	// CameraNames lists the logical camera names this scene drives.
	CameraNames() []string

	// WorldScale is the scene's world-units-per-meter factor.
	WorldScale() float32

	Setup(ctx *Context) error
	Update(ctx *Context, head pose.Pose, dt float32)
	Teardown(ctx *Context)
}
