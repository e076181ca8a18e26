package scene

import (
	"github.com/vrlink/extension/internal/pose"
)

// VehicleInterior pins the anchor to the initial seat pose every frame. The
// physical seat does not move relative to the player's calibrated origin, so
// the anchor never drifts no matter how the head moves.
type VehicleInterior struct {
	Cameras []string
	Scale   float32
}

func (s *VehicleInterior) Kind() Kind            { return KindVehicleInterior }
func (s *VehicleInterior) CameraNames() []string { return s.Cameras }

func (s *VehicleInterior) WorldScale() float32 {
	if s.Scale <= 0 {
		return 1
	}
	return s.Scale
}

func (s *VehicleInterior) Setup(ctx *Context) error { return nil }

func (s *VehicleInterior) Update(ctx *Context, head pose.Pose, dt float32) {
	ctx.Current = ctx.Initial
}

func (s *VehicleInterior) Teardown(ctx *Context) {}
