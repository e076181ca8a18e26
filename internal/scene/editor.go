package scene

import (
	"github.com/vrlink/extension/internal/pose"
)

// Editor is a free-roam scene: the anchor is mutable and driven by
// controller locomotion each frame.
type Editor struct {
	Cameras    []string
	Scale      float32
	Locomotion *Locomotion
}

func (s *Editor) Kind() Kind            { return KindEditor }
func (s *Editor) CameraNames() []string { return s.Cameras }

func (s *Editor) WorldScale() float32 {
	if s.Scale <= 0 {
		return 1
	}
	return s.Scale
}

func (s *Editor) Setup(ctx *Context) error {
	if s.Locomotion != nil {
		// Forget stale button edges from a previous scene.
		s.Locomotion.prevLeft = false
		s.Locomotion.prevRight = false
	}
	return nil
}

func (s *Editor) Update(ctx *Context, head pose.Pose, dt float32) {
	if s.Locomotion != nil {
		s.Locomotion.Apply(ctx, head, dt)
	}
}

func (s *Editor) Teardown(ctx *Context) {}
