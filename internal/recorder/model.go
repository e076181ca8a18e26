package recorder

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session is one VR session from extension start to teardown.
type Session struct {
	gorm.Model
	StartTime time.Time
	EndTime   *time.Time
	Version   string
}

// StateTransition records one initialization state change.
type StateTransition struct {
	gorm.Model
	SessionID uint
	Time      time.Time
	FromState string
	ToState   string
}

// SceneEvent records a scene entry or exit.
type SceneEvent struct {
	gorm.Model
	SessionID uint
	Time      time.Time
	Scene     string
	Entered   bool
}

// RuntimeEvent records one structured runtime event, with the raw native
// payload kept as JSON for offline inspection.
type RuntimeEvent struct {
	gorm.Model
	SessionID uint
	Time      time.Time
	Kind      string
	Code      uint32
	Payload   datatypes.JSON
}

// FrameTiming is a sampled per-frame pipeline duration.
type FrameTiming struct {
	gorm.Model
	SessionID  uint
	Time       time.Time
	Frame      uint64
	DurationMs float32
}
