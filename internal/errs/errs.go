// Package errs holds the failure taxonomy shared by the check cycle.
package errs

import "errors"

var (
	// ErrResourceNotReady means the sensor interface could not be configured
	// or was used before it was opened.
	ErrResourceNotReady = errors.New("resource not ready")

	// ErrSensorTimeout means an expected echo edge did not arrive in time.
	ErrSensorTimeout = errors.New("sensor timeout")

	// ErrInvalidConfiguration is returned before any GPIO access for bad settings.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDispatchFailure means the messaging collaborator did not deliver the alert.
	ErrDispatchFailure = errors.New("dispatch failure")
)
