package pose

import "time"

// MaxTrackedDevices is the number of device slots the runtime reports.
const MaxTrackedDevices = 16

// HMDIndex is the fixed device slot of the headset.
const HMDIndex = 0

// DeviceClass identifies what kind of hardware occupies a device slot.
type DeviceClass int

const (
	ClassInvalid DeviceClass = iota
	ClassHMD
	ClassController
	ClassGenericTracker
	ClassTrackingReference
)

func (c DeviceClass) String() string {
	switch c {
	case ClassHMD:
		return "hmd"
	case ClassController:
		return "controller"
	case ClassGenericTracker:
		return "tracker"
	case ClassTrackingReference:
		return "reference"
	default:
		return "invalid"
	}
}

// DevicePose is one slot of a snapshot: the device-space pose plus whether
// the runtime considers it valid this frame.
type DevicePose struct {
	Pose  Pose
	Valid bool
	Class DeviceClass
}

// Snapshot is the set of device poses captured at one instant. Two snapshots
// exist per frame: a render snapshot used for the current frame's submission
// and a game snapshot published to other subsystems. A snapshot is immutable
// after publication until the next refresh.
type Snapshot struct {
	Devices [MaxTrackedDevices]DevicePose
	Time    time.Time
}

// Head returns the headset pose, reporting false if the HMD slot is invalid.
func (s Snapshot) Head() (Pose, bool) {
	d := s.Devices[HMDIndex]
	if !d.Valid || d.Class != ClassHMD {
		return Identity(), false
	}
	return d.Pose, true
}

// Controllers returns the slot indices of valid controllers.
func (s Snapshot) Controllers() []int {
	var out []int
	for i, d := range s.Devices {
		if d.Valid && d.Class == ClassController {
			out = append(out, i)
		}
	}
	return out
}
