package sampler

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vrlink/extension/internal/gateway"
	"github.com/vrlink/extension/internal/host"
	"github.com/vrlink/extension/internal/lifecycle"
	"github.com/vrlink/extension/internal/pose"
)

// fakeRuntime implements gateway.Runtime; only init matters here, the
// sampler reads poses through its own fake source.
type fakeRuntime struct{}

func (f *fakeRuntime) Init() error { return nil }
func (f *fakeRuntime) Shutdown()   {}
func (f *fakeRuntime) PollNextEvent() (gateway.Event, bool) {
	return gateway.Event{}, false
}
func (f *fakeRuntime) DevicePoses() (render, game [pose.MaxTrackedDevices]pose.DevicePose, err error) {
	return render, game, nil
}
func (f *fakeRuntime) ResetSeatedZeroPose()                                {}
func (f *fakeRuntime) SetTrackingOriginMode(origin gateway.TrackingOrigin) {}
func (f *fakeRuntime) RecommendedTargetSize() (uint32, uint32)             { return 100, 100 }
func (f *fakeRuntime) EyeToHeadOffset(eye pose.Eye) mgl32.Vec3             { return mgl32.Vec3{} }
func (f *fakeRuntime) EyeProjection(eye pose.Eye, near, far float32) mgl32.Mat4 {
	return mgl32.Ident4()
}

// fakeBackend implements host.RenderBackend
type fakeBackend struct {
	submits int
}

func (f *fakeBackend) RegisterTargets(targets [pose.EyeCount]host.RenderTarget) error { return nil }
func (f *fakeBackend) Submit()                                                        { f.submits++ }

// fakeSource implements PoseSource
type fakeSource struct {
	err   error
	calls int
}

func (f *fakeSource) LatestPoses() (render, game pose.Snapshot, err error) {
	f.calls++
	if f.err != nil {
		return pose.Snapshot{}, pose.Snapshot{}, f.err
	}
	now := time.Now()
	render.Time = now
	render.Devices[pose.HMDIndex] = pose.DevicePose{
		Pose:  pose.Pose{Position: mgl32.Vec3{0, 1.7, 0}, Rotation: mgl32.QuatIdent()},
		Valid: true,
		Class: pose.ClassHMD,
	}
	game = render
	game.Devices[pose.HMDIndex].Pose.Position[2] = -0.01
	return render, game, nil
}

// runningMachine builds a machine already in StateRunning.
func runningMachine(t *testing.T, backend host.RenderBackend) *lifecycle.Machine {
	t.Helper()
	m := lifecycle.NewMachine(lifecycle.Dependencies{
		Gateway: gateway.New(&fakeRuntime{}, nil),
		Backend: backend,
	}, lifecycle.DefaultCooldown)
	m.SetEnabled(true)
	m.Tick(time.Now())
	if m.State() != lifecycle.StateRunning {
		t.Fatalf("machine failed to reach running: %s", m.State())
	}
	return m
}

func newTestSampler(t *testing.T, src PoseSource, machine *lifecycle.Machine, backend host.RenderBackend) *Sampler {
	t.Helper()
	s, err := New(Dependencies{Poses: src, Machine: machine, Backend: backend})
	if err != nil {
		t.Fatalf("failed to create sampler: %v", err)
	}
	return s
}

func TestSampleRequiresRunning(t *testing.T) {
	backend := &fakeBackend{}
	machine := lifecycle.NewMachine(lifecycle.Dependencies{
		Gateway: gateway.New(&fakeRuntime{}, nil),
		Backend: backend,
	}, lifecycle.DefaultCooldown)
	src := &fakeSource{}
	s := newTestSampler(t, src, machine, backend)

	if _, ok := s.Sample(time.Now()); ok {
		t.Error("expected no sample while uninitialized")
	}
	if src.calls != 0 {
		t.Error("pose source must not be queried while not running")
	}
}

func TestSampleAndSubmit(t *testing.T) {
	backend := &fakeBackend{}
	machine := runningMachine(t, backend)
	s := newTestSampler(t, &fakeSource{}, machine, backend)

	snap, ok := s.Sample(time.Now())
	if !ok {
		t.Fatal("expected successful sample")
	}
	if _, valid := snap.Head(); !valid {
		t.Error("expected valid head in render snapshot")
	}

	s.Submit()
	if backend.submits != 1 {
		t.Errorf("expected 1 submit, got %d", backend.submits)
	}
}

func TestSubmitWithoutSampleDropped(t *testing.T) {
	backend := &fakeBackend{}
	machine := runningMachine(t, backend)
	s := newTestSampler(t, &fakeSource{}, machine, backend)

	// no sample yet
	s.Submit()
	if backend.submits != 0 {
		t.Error("submit without a sampled pose must be dropped")
	}

	// one sample authorizes exactly one submit
	if _, ok := s.Sample(time.Now()); !ok {
		t.Fatal("expected successful sample")
	}
	s.Submit()
	s.Submit()
	if backend.submits != 1 {
		t.Errorf("expected 1 submit, got %d", backend.submits)
	}
}

func TestPoseFailureForceDisables(t *testing.T) {
	backend := &fakeBackend{}
	machine := runningMachine(t, backend)
	src := &fakeSource{err: errors.New("tracking lost")}
	s := newTestSampler(t, src, machine, backend)

	if _, ok := s.Sample(time.Now()); ok {
		t.Fatal("expected failed sample")
	}
	if machine.Enabled() {
		t.Error("expected VR force-disabled after pose failure")
	}

	// the machine winds down on its next tick
	machine.Tick(time.Now())
	if machine.State() != lifecycle.StateUninitialized {
		t.Errorf("expected uninitialized, got %s", machine.State())
	}

	// and a submit after the failed sample is dropped
	s.Submit()
	if backend.submits != 0 {
		t.Error("expected no submit after failed sample")
	}
}

func TestSubscribersReceiveGameSnapshot(t *testing.T) {
	backend := &fakeBackend{}
	machine := runningMachine(t, backend)
	s := newTestSampler(t, &fakeSource{}, machine, backend)

	sub := s.Subscribe(4)

	if _, ok := s.Sample(time.Now()); !ok {
		t.Fatal("expected successful sample")
	}

	select {
	case snap := <-sub.Receive():
		head, valid := snap.Head()
		if !valid {
			t.Fatal("expected valid head in game snapshot")
		}
		// the game set is the predicted one, not the render set
		if head.Position.Z() != -0.01 {
			t.Errorf("expected game snapshot, got position %v", head.Position)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for game snapshot")
	}
}

func TestFullSubscriberDoesNotBlock(t *testing.T) {
	backend := &fakeBackend{}
	machine := runningMachine(t, backend)
	s := newTestSampler(t, &fakeSource{}, machine, backend)

	// buffer of one, never drained
	s.Subscribe(1)

	for i := 0; i < 10; i++ {
		if _, ok := s.Sample(time.Now()); !ok {
			t.Fatalf("sample %d failed", i)
		}
		s.Submit()
	}
	if backend.submits != 10 {
		t.Errorf("expected 10 submits, got %d", backend.submits)
	}
}
