package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes the state machine recovers from.
// Anything else surfaced by Initialize is a *NativeInitError.
var (
	// ErrDeviceNotPresent means no headset was detected by the runtime.
	ErrDeviceNotPresent = errors.New("gateway: no head-mounted display detected")

	// ErrRuntimeNotInstalled means the companion runtime service is absent.
	ErrRuntimeNotInstalled = errors.New("gateway: VR runtime not installed")

	// ErrUnsupportedGraphicsBackend means the host's active graphics
	// backend is not the one the compositor supports.
	ErrUnsupportedGraphicsBackend = errors.New("gateway: unsupported graphics backend")

	// ErrPoseQuery wraps failures of the per-frame pose fetch. The sampler
	// treats it as fatal for the session.
	ErrPoseQuery = errors.New("gateway: pose query failed")

	// ErrNotInitialized is returned by calls issued before Initialize
	// succeeded or after Shutdown.
	ErrNotInitialized = errors.New("gateway: runtime not initialized")

	// ErrAlreadyInitialized is returned by a second Initialize without an
	// intervening Shutdown.
	ErrAlreadyInitialized = errors.New("gateway: runtime already initialized")
)

// Native init error codes the gateway knows how to classify. The values
// mirror the native runtime's error enumeration.
const (
	initCodeHmdNotFound          = 108
	initCodeHmdNotDetected       = 126
	initCodeInstallNotFound      = 200
	initCodeInstallCorrupt       = 201
	initCodeGraphicsNotSupported = 205
)

// NativeInitError carries a native runtime init failure code that does not
// map onto one of the recoverable sentinels.
type NativeInitError struct {
	Code uint32
}

func (e *NativeInitError) Error() string {
	return fmt.Sprintf("gateway: native init error %d", e.Code)
}

// classifyInit maps a native init failure onto the gateway taxonomy. Known
// codes become sentinels; everything else passes through for the state
// machine to treat as a generic native failure.
func classifyInit(err error) error {
	var nerr *NativeInitError
	if !errors.As(err, &nerr) {
		return err
	}
	switch nerr.Code {
	case initCodeHmdNotFound, initCodeHmdNotDetected:
		return ErrDeviceNotPresent
	case initCodeInstallNotFound, initCodeInstallCorrupt:
		return ErrRuntimeNotInstalled
	case initCodeGraphicsNotSupported:
		return ErrUnsupportedGraphicsBackend
	}
	return err
}
