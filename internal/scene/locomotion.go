package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/vrlink/extension/internal/host"
	"github.com/vrlink/extension/internal/pose"
)

// Default locomotion speeds, in world units per second at world scale 1.
const (
	DefaultVerticalSpeed = 2.0
	DefaultPlanarSpeed   = 4.0
)

// Action names queried from the host's binding layer.
const (
	ActionSetLocomotion = "locomotion"
	ActionVertical      = "vertical"
	ActionPlanar        = "planar"
	ActionRecenter      = "recenter"
)

// Locomotion mutates a scene's anchor from controller input. Only scenes
// with a mutable anchor use it.
type Locomotion struct {
	Input host.InputAPI

	// Recenter re-centers the runtime's seated calibration. It does not
	// alter the scene anchor.
	Recenter func() error

	VerticalSpeed float32
	PlanarSpeed   float32

	prevLeft, prevRight bool
}

// Apply advances the anchor one frame. Vertical displacement comes from the
// left hand's vertical axis, planar displacement from the right hand's
// 2-axis input resolved against where the head currently looks. The anchor
// height never goes below the scene floor at 0.
func (l *Locomotion) Apply(ctx *Context, head pose.Pose, dt float32) {
	if l.Input == nil {
		return
	}
	vSpeed := l.VerticalSpeed
	if vSpeed <= 0 {
		vSpeed = DefaultVerticalSpeed
	}
	pSpeed := l.PlanarSpeed
	if pSpeed <= 0 {
		pSpeed = DefaultPlanarSpeed
	}

	// Movement scales with the scene's world scale so a stick deflection
	// covers the same apparent distance regardless of scale.
	worldScale := float32(1)
	if ctx.InverseWorldScale > 0 {
		worldScale = 1 / ctx.InverseWorldScale
	}

	left, right := l.Input.AxisAction(ActionSetLocomotion, ActionPlanar)
	vertAxis, _ := l.Input.AxisAction(ActionSetLocomotion, ActionVertical)
	_ = left

	// Vertical: left-hand stick Y, clamped at the scene floor.
	y := ctx.Current.Position.Y() + vertAxis.Y()*vSpeed*worldScale*dt
	if y < 0 {
		y = 0
	}
	ctx.Current.Position[1] = y

	// Planar: right-hand stick resolved against the head's current world
	// forward/right, flattened to the horizontal plane so movement always
	// follows the gaze, not a fixed world axis.
	headWorldRot := ctx.Current.Rotation.Mul(head.Rotation)
	forward, fok := horizontalized(headWorldRot.Rotate(mgl32.Vec3{0, 0, -1}))
	rightDir, rok := horizontalized(headWorldRot.Rotate(mgl32.Vec3{1, 0, 0}))
	if fok && rok {
		step := rightDir.Mul(right.X()).Add(forward.Mul(right.Y()))
		ctx.Current.Position = ctx.Current.Position.Add(step.Mul(pSpeed * worldScale * dt))
	}

	l.applyRecenter()
}

// applyRecenter fires the seated-origin reset on the press edge of the
// recenter button on either hand.
func (l *Locomotion) applyRecenter() {
	lp, rp := l.Input.BooleanAction(ActionSetLocomotion, ActionRecenter)
	if ((lp && !l.prevLeft) || (rp && !l.prevRight)) && l.Recenter != nil {
		l.Recenter()
	}
	l.prevLeft, l.prevRight = lp, rp
}
