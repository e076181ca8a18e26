package scene

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vrlink/extension/internal/host"
	"github.com/vrlink/extension/internal/pose"
)

// Camera clip planes used for the per-eye device projections.
const (
	nearClip = 0.01
	farClip  = 2000
)

// DeviceConstants is the slice of the gateway the manager needs: the fixed
// per-eye offsets and projections captured at runtime init.
type DeviceConstants interface {
	EyeOffset(eye pose.Eye) mgl32.Vec3
	EyeProjection(eye pose.Eye, near, far float32) (mgl32.Mat4, error)
}

// TransitionHook observes scene entry and exit, e.g. for session recording.
type TransitionHook func(kind Kind, entered bool, at time.Time)

// Dependencies holds what the manager needs to drive host cameras.
type Dependencies struct {
	Cameras host.CameraAPI
	Device  DeviceConstants
	Logger  *slog.Logger
}

// Manager owns the registered scene policies and the active SceneContext.
type Manager struct {
	deps   Dependencies
	scenes map[Kind]Scene

	active Scene
	ctx    *Context
	hook   TransitionHook
}

// NewManager creates a manager with no scenes registered.
func NewManager(deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{
		deps:   deps,
		scenes: make(map[Kind]Scene),
	}
}

// Register adds a scene policy. One policy per kind.
func (m *Manager) Register(s Scene) {
	m.scenes[s.Kind()] = s
}

// SetTransitionHook registers an observer for scene entry/exit.
func (m *Manager) SetTransitionHook(h TransitionHook) { m.hook = h }

// Context returns the active scene context, nil when no scene is active.
func (m *Manager) Context() *Context { return m.ctx }

// Active returns the active scene kind.
func (m *Manager) Active() (Kind, bool) {
	if m.active == nil {
		return KindUnsupported, false
	}
	return m.active.Kind(), true
}

// Enter tears down any active scene and sets up the named one with a fresh
// context anchored at the given world pose. An identifier with no registered
// policy aborts setup with ErrUnrecognizedScene.
func (m *Manager) Enter(kind Kind, anchor Anchor) error {
	s, ok := m.scenes[kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnrecognizedScene, kind.String())
	}

	if m.active != nil {
		m.Exit()
	}

	ctx := newContext(kind, anchor, s.WorldScale())
	m.bindCameras(ctx, s.CameraNames())

	if err := s.Setup(ctx); err != nil {
		m.restoreCameras(ctx)
		return fmt.Errorf("scene %s setup: %w", kind.String(), err)
	}

	m.active = s
	m.ctx = ctx
	m.deps.Logger.Info("scene entered",
		"scene", kind.String(),
		"cameras", len(ctx.Bindings),
		"worldScale", s.WorldScale())
	if m.hook != nil {
		m.hook(kind, true, time.Now())
	}
	return nil
}

// Exit tears the active scene down and restores its cameras to their
// original projection and enabled state.
func (m *Manager) Exit() {
	if m.active == nil {
		return
	}
	kind := m.active.Kind()
	m.active.Teardown(m.ctx)
	m.restoreCameras(m.ctx)
	m.active = nil
	m.ctx = nil
	m.deps.Logger.Info("scene exited", "scene", kind.String())
	if m.hook != nil {
		m.hook(kind, false, time.Now())
	}
}

// Resolve runs one frame of the active scene: evolve the anchor per the
// scene's policy, compose per-eye world transforms from the sampled head
// pose, and apply them to every present camera binding. A no-op when no
// scene is active.
func (m *Manager) Resolve(head pose.Pose, dt float32) {
	if m.active == nil {
		return
	}
	ctx := m.ctx

	m.active.Update(ctx, head, dt)

	ctx.HeadWorld = HeadTransform(head, ctx.Current, ctx.InverseWorldScale)

	for eye := pose.Eye(0); eye < pose.EyeCount; eye++ {
		world := EyeTransform(head, m.deps.Device.EyeOffset(eye), ctx.Current, ctx.InverseWorldScale)
		ctx.EyeWorld[eye] = world

		for _, b := range ctx.Bindings {
			if !b.Present {
				continue
			}
			m.deps.Cameras.SetProjection(b.Camera, b.EyeProjection[eye])
			m.deps.Cameras.SetTransform(b.Camera, world.Position, world.Rotation)
		}
	}
}

// bindCameras resolves each declared camera name once. Names the host cannot
// find become absent bindings, logged once and skipped forever after.
func (m *Manager) bindCameras(ctx *Context, names []string) {
	for _, name := range names {
		b := &CameraBinding{Name: name}
		cam, ok := m.deps.Cameras.FindCamera(name)
		if !ok {
			m.deps.Logger.Warn("camera not found, skipping binding", "camera", name)
			ctx.Bindings = append(ctx.Bindings, b)
			continue
		}
		b.Camera = cam
		b.Present = true
		b.OriginalProjection = m.deps.Cameras.Projection(cam)
		for eye := pose.Eye(0); eye < pose.EyeCount; eye++ {
			proj, err := m.deps.Device.EyeProjection(eye, nearClip, farClip)
			if err != nil {
				m.deps.Logger.Error("eye projection unavailable", "camera", name, "error", err)
				proj = b.OriginalProjection
			}
			b.EyeProjection[eye] = proj
		}
		m.deps.Cameras.SetEnabled(cam, true)
		ctx.Bindings = append(ctx.Bindings, b)
	}
}

func (m *Manager) restoreCameras(ctx *Context) {
	for _, b := range ctx.Bindings {
		if !b.Present {
			continue
		}
		m.deps.Cameras.SetProjection(b.Camera, b.OriginalProjection)
		m.deps.Cameras.SetEnabled(b.Camera, true)
	}
}
