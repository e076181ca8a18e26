// Package events drains the runtime's native event queue and republishes
// structured events on a process-local publish/subscribe bus.
package events

import (
	"time"

	"github.com/vrlink/extension/internal/gateway"
)

// Kind classifies the events the pipeline understands. Native codes outside
// the known set are published as KindRuntime with the raw code attached.
type Kind int

const (
	KindRuntime Kind = iota
	KindInputFocusCaptured
	KindInputFocusReleased
	KindRenderModelsShown
	KindRenderModelsHidden
	KindDeviceConnected
	KindDeviceDisconnected
)

func (k Kind) String() string {
	switch k {
	case KindInputFocusCaptured:
		return "input-focus-captured"
	case KindInputFocusReleased:
		return "input-focus-released"
	case KindRenderModelsShown:
		return "render-models-shown"
	case KindRenderModelsHidden:
		return "render-models-hidden"
	case KindDeviceConnected:
		return "device-connected"
	case KindDeviceDisconnected:
		return "device-disconnected"
	default:
		return "runtime"
	}
}

// Event is a structured runtime event as published on the bus.
type Event struct {
	Kind        Kind
	Code        uint32
	DeviceIndex int
	Timestamp   time.Time
}

// kindOf maps a native event code onto a Kind.
func kindOf(code uint32) Kind {
	switch code {
	case gateway.CodeInputFocusCaptured:
		return KindInputFocusCaptured
	case gateway.CodeInputFocusReleased:
		return KindInputFocusReleased
	case gateway.CodeShowRenderModels:
		return KindRenderModelsShown
	case gateway.CodeHideRenderModels:
		return KindRenderModelsHidden
	case gateway.CodeTrackedDeviceActivated:
		return KindDeviceConnected
	case gateway.CodeTrackedDeviceDeactivated:
		return KindDeviceDisconnected
	default:
		return KindRuntime
	}
}
