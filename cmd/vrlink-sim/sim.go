package main

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vrlink/extension/internal/gateway"
	"github.com/vrlink/extension/internal/host"
	"github.com/vrlink/extension/internal/pose"
)

// simRuntime is a stand-in VR runtime. The head orbits the origin at a slow
// rate and both controllers track beside it, which is enough signal to drive
// every pipeline phase without hardware.
type simRuntime struct {
	mu      sync.Mutex
	frame   uint64
	events  []gateway.Event
	started bool
}

func newSimRuntime() *simRuntime {
	return &simRuntime{}
}

func (r *simRuntime) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = true
	// device activation events like a real runtime would queue on startup
	r.events = append(r.events,
		gateway.Event{Code: gateway.CodeTrackedDeviceActivated, DeviceIndex: pose.HMDIndex},
		gateway.Event{Code: gateway.CodeTrackedDeviceActivated, DeviceIndex: 1},
		gateway.Event{Code: gateway.CodeTrackedDeviceActivated, DeviceIndex: 2},
	)
	return nil
}

func (r *simRuntime) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = false
	r.events = nil
}

func (r *simRuntime) PollNextEvent() (gateway.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return gateway.Event{}, false
	}
	e := r.events[0]
	r.events = r.events[1:]
	return e, true
}

func (r *simRuntime) DevicePoses() (render, game [pose.MaxTrackedDevices]pose.DevicePose, err error) {
	r.mu.Lock()
	r.frame++
	t := float32(r.frame) / 90.0
	r.mu.Unlock()

	head := pose.Pose{
		Position: mgl32.Vec3{
			0.3 * float32(math.Sin(float64(t))),
			1.7,
			0.3 * float32(math.Cos(float64(t))),
		},
		Rotation: mgl32.QuatRotate(t*0.1, mgl32.Vec3{0, 1, 0}),
	}
	render[pose.HMDIndex] = pose.DevicePose{Pose: head, Valid: true, Class: pose.ClassHMD}
	for i, side := range []float32{-0.25, 0.25} {
		render[i+1] = pose.DevicePose{
			Pose: pose.Pose{
				Position: head.Position.Add(mgl32.Vec3{side, -0.5, -0.3}),
				Rotation: head.Rotation,
			},
			Valid: true,
			Class: pose.ClassController,
		}
	}

	// game-logic set predicted slightly ahead of the render set
	game = render
	for i := range game {
		if game[i].Valid {
			game[i].Pose.Position = game[i].Pose.Position.Add(mgl32.Vec3{0, 0, -0.001})
		}
	}
	return render, game, nil
}

func (r *simRuntime) ResetSeatedZeroPose() {}

func (r *simRuntime) SetTrackingOriginMode(origin gateway.TrackingOrigin) {}

func (r *simRuntime) RecommendedTargetSize() (width, height uint32) {
	return 1920, 1080
}

func (r *simRuntime) EyeToHeadOffset(eye pose.Eye) mgl32.Vec3 {
	if eye == pose.EyeLeft {
		return mgl32.Vec3{-0.032, 0, 0}
	}
	return mgl32.Vec3{0.032, 0, 0}
}

func (r *simRuntime) EyeProjection(eye pose.Eye, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(110), 16.0/9.0, near, far)
}

// simCamera is a minimal mutable camera record behind the host.Camera handle.
type simCamera struct {
	name       string
	projection mgl32.Mat4
	position   mgl32.Vec3
	rotation   mgl32.Quat
	enabled    bool
	transforms int
}

// simCameras implements host.CameraAPI over an in-memory camera table.
type simCameras struct {
	cameras map[string]*simCamera
}

func newSimCameras(names ...string) *simCameras {
	s := &simCameras{cameras: make(map[string]*simCamera)}
	for _, n := range names {
		s.cameras[n] = &simCamera{
			name:       n,
			projection: mgl32.Perspective(mgl32.DegToRad(90), 16.0/9.0, 0.1, 1000),
			rotation:   mgl32.QuatIdent(),
		}
	}
	return s
}

func (s *simCameras) FindCamera(name string) (host.Camera, bool) {
	c, ok := s.cameras[name]
	if !ok {
		return nil, false
	}
	return c, true
}

func (s *simCameras) Projection(c host.Camera) mgl32.Mat4 {
	return c.(*simCamera).projection
}

func (s *simCameras) SetProjection(c host.Camera, m mgl32.Mat4) {
	c.(*simCamera).projection = m
}

func (s *simCameras) SetEnabled(c host.Camera, enabled bool) {
	c.(*simCamera).enabled = enabled
}

func (s *simCameras) SetTransform(c host.Camera, position mgl32.Vec3, rotation mgl32.Quat) {
	cam := c.(*simCamera)
	cam.position = position
	cam.rotation = rotation
	cam.transforms++
}

// simInput implements host.InputAPI with a scripted stick pattern so the
// editor scene's locomotion has something to chew on.
type simInput struct {
	frame int
}

func (s *simInput) BooleanAction(set, name string) (left, right bool) {
	return false, false
}

func (s *simInput) AxisAction(set, name string) (left, right mgl32.Vec2) {
	s.frame++
	// push forward on the right stick for a second, then idle
	if s.frame%270 < 90 {
		right = mgl32.Vec2{0, 1}
	}
	return left, right
}

// simBackend implements host.RenderBackend and just counts frames.
type simBackend struct {
	mu         sync.Mutex
	targets    [pose.EyeCount]host.RenderTarget
	registered bool
	submits    int
}

func (b *simBackend) RegisterTargets(targets [pose.EyeCount]host.RenderTarget) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.targets = targets
	b.registered = true
	return nil
}

func (b *simBackend) Submit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submits++
}

func (b *simBackend) Submits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submits
}
