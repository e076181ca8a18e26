package scene

import (
	"github.com/vrlink/extension/internal/pose"
)

// Extravehicular pins the anchor to the initial pose every frame, the same
// policy as a vehicle interior: the suit's calibrated origin follows the
// vessel, not the head.
type Extravehicular struct {
	Cameras []string
	Scale   float32
}

func (s *Extravehicular) Kind() Kind            { return KindExtravehicular }
func (s *Extravehicular) CameraNames() []string { return s.Cameras }

func (s *Extravehicular) WorldScale() float32 {
	if s.Scale <= 0 {
		return 1
	}
	return s.Scale
}

func (s *Extravehicular) Setup(ctx *Context) error { return nil }

func (s *Extravehicular) Update(ctx *Context, head pose.Pose, dt float32) {
	ctx.Current = ctx.Initial
}

func (s *Extravehicular) Teardown(ctx *Context) {}
