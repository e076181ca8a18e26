package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/vrlink/extension/internal/pose"
)

// EyeTransform composes one eye's world-space pose from the sampled head
// pose (device space) and the scene anchor:
//
//	eyeDevice = head.pos + head.rot * eyeOffset
//	world.pos = anchor.pos + anchor.rot * (eyeDevice * invScale)
//	world.rot = anchor.rot * head.rot
func EyeTransform(head pose.Pose, eyeOffset mgl32.Vec3, anchor Anchor, invScale float32) pose.Pose {
	eyeDevice := head.TransformPoint(eyeOffset)
	return pose.Pose{
		Position: anchor.Position.Add(anchor.Rotation.Rotate(eyeDevice.Mul(invScale))),
		Rotation: anchor.Rotation.Mul(head.Rotation),
	}
}

// HeadTransform is EyeTransform with a zero eye offset.
func HeadTransform(head pose.Pose, anchor Anchor, invScale float32) pose.Pose {
	return EyeTransform(head, mgl32.Vec3{}, anchor, invScale)
}

// moveToward advances from toward to by at most step, without overshooting.
// A glide, not a snap.
func moveToward(from, to mgl32.Vec3, step float32) mgl32.Vec3 {
	delta := to.Sub(from)
	dist := delta.Len()
	if dist <= step || dist == 0 {
		return to
	}
	return from.Add(delta.Mul(step / dist))
}

// horizontalized projects a direction onto the horizontal plane and
// renormalizes it. Returns false when the direction is (near) vertical and
// no horizontal component remains.
func horizontalized(dir mgl32.Vec3) (mgl32.Vec3, bool) {
	dir[1] = 0
	l := dir.Len()
	if l < 1e-6 {
		return mgl32.Vec3{}, false
	}
	return dir.Mul(1 / l), true
}
