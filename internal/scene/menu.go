package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/vrlink/extension/internal/pose"
)

// DefaultMenuGlideStep is the maximum anchor movement per frame in a menu
// scene, in world units.
const DefaultMenuGlideStep = 0.05

// Menu pins the anchor rotation to the scene's initial rotation and glides
// the anchor position toward a scene-supplied target point, a bounded step
// each frame.
type Menu struct {
	Cameras []string
	Scale   float32

	// Target is the point the anchor glides toward.
	Target mgl32.Vec3

	// MaxStep bounds the glide per frame. Zero selects
	// DefaultMenuGlideStep.
	MaxStep float32
}

func (s *Menu) Kind() Kind            { return KindMenu }
func (s *Menu) CameraNames() []string { return s.Cameras }

func (s *Menu) WorldScale() float32 {
	if s.Scale <= 0 {
		return 1
	}
	return s.Scale
}

func (s *Menu) Setup(ctx *Context) error {
	if s.MaxStep <= 0 {
		s.MaxStep = DefaultMenuGlideStep
	}
	return nil
}

func (s *Menu) Update(ctx *Context, head pose.Pose, dt float32) {
	ctx.Current.Rotation = ctx.Initial.Rotation
	ctx.Current.Position = moveToward(ctx.Current.Position, s.Target, s.MaxStep)
}

func (s *Menu) Teardown(ctx *Context) {}
