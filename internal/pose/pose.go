// Package pose holds the value types shared by the tracking pipeline:
// device poses, per-eye constants and the per-frame device snapshots.
package pose

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Eye indexes the two render views of the headset.
type Eye int

const (
	EyeLeft Eye = iota
	EyeRight

	// EyeCount is the number of render views.
	EyeCount = 2
)

func (e Eye) String() string {
	switch e {
	case EyeLeft:
		return "left"
	case EyeRight:
		return "right"
	default:
		return "unknown"
	}
}

// Pose is a position plus a unit-quaternion rotation in a single coordinate
// frame. Poses are values; every transform stage produces a new Pose rather
// than mutating its input.
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// Identity returns the zero pose with an identity rotation.
func Identity() Pose {
	return Pose{Rotation: mgl32.QuatIdent()}
}

// TransformPoint maps a point expressed relative to the pose into the pose's
// parent frame.
func (p Pose) TransformPoint(v mgl32.Vec3) mgl32.Vec3 {
	return p.Position.Add(p.Rotation.Rotate(v))
}

// Forward returns the pose's view direction in its parent frame.
func (p Pose) Forward() mgl32.Vec3 {
	return p.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

// Right returns the pose's right direction in its parent frame.
func (p Pose) Right() mgl32.Vec3 {
	return p.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
}
