// Package host declares the capability interfaces the pipeline requires from
// the embedding game engine. The engine side implements these; the pipeline
// never reaches into the engine's object model directly.
package host

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/vrlink/extension/internal/pose"
)

// Camera is an opaque handle to an engine camera, resolved once per scene
// setup through CameraAPI.FindCamera.
type Camera interface{}

// CameraAPI exposes the minimal camera surface of the engine.
type CameraAPI interface {
	// FindCamera resolves a camera by its logical name. The second return
	// is false when no camera with that name exists in the active scene.
	FindCamera(name string) (Camera, bool)

	Projection(c Camera) mgl32.Mat4
	SetProjection(c Camera, m mgl32.Mat4)
	SetEnabled(c Camera, enabled bool)
	SetTransform(c Camera, position mgl32.Vec3, rotation mgl32.Quat)
}

// Hand distinguishes the two controller inputs.
type Hand int

const (
	HandLeft Hand = iota
	HandRight
)

// InputAPI exposes the engine's action-binding layer. Actions are queried by
// action set and name and report both hands at once.
type InputAPI interface {
	BooleanAction(set, name string) (left, right bool)
	AxisAction(set, name string) (left, right mgl32.Vec2)
}

// UVBounds are the texture bounds registered with the render backend for one
// eye target.
type UVBounds struct {
	UMin, VMin, UMax, VMax float32
}

// FlippedFullQuad covers the whole target with V inverted, compensating for
// the backend's texture origin convention.
func FlippedFullQuad() UVBounds {
	return UVBounds{UMin: 0, VMin: 1, UMax: 1, VMax: 0}
}

// RenderTarget describes one per-eye target handed to the render backend at
// initialization.
type RenderTarget struct {
	Eye    pose.Eye
	Width  uint32
	Height uint32
	Bounds UVBounds
}

// RenderBackend is the opaque rendering collaborator. RegisterTargets is
// called once when the runtime comes up; Submit is issued once per frame,
// strictly after pose capture, and is fire-and-forget.
type RenderBackend interface {
	RegisterTargets(targets [pose.EyeCount]RenderTarget) error
	Submit()
}
