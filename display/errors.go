package display

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoToken is returned when a login response carries no usable token
var ErrNoToken = errors.New("no access token in login response")

// Stage is a step of the device sync
type Stage string

const (
	StageNotConfigured  Stage = "not_configured"
	StageAuthenticating Stage = "authenticating"
	StageRendering      Stage = "rendering"
	StagePushing        Stage = "pushing"
	StageSucceeded      Stage = "succeeded"
	StageFailed         Stage = "failed"
)

// ConfigurationError lists the required device settings that are missing
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "device is not configured, missing " + strings.Join(e.Missing, ", ")
}

// AuthError is returned when login fails. StatusCode is zero when no
// response was received.
type AuthError struct {
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransportError wraps a network failure, including timeouts
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DeviceRejectedError is a non-2xx answer to a screen update
type DeviceRejectedError struct {
	StatusCode int
	Body       string
}

func (e *DeviceRejectedError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("device rejected update with status %d", e.StatusCode)
	}
	return fmt.Sprintf("device rejected update with status %d: %s", e.StatusCode, e.Body)
}

// SyncError records the stage at which a sync stopped
type SyncError struct {
	Stage Stage
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("display sync failed at %s: %v", e.Stage, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
