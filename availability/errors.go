package availability

import (
	"errors"
	"fmt"
)

// ErrCode classifies engine errors for callers that map them onto
// transport-level responses.
type ErrCode string

const (
	CodeSourceUnavailable ErrCode = "SOURCE_UNAVAILABLE"
	CodeInvalidRange      ErrCode = "INVALID_RANGE"
	CodeUnknownVehicle    ErrCode = "UNKNOWN_VEHICLE"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() ErrCode { return e.code }

var (
	// ErrSourceUnavailable means a booking or note source failed or timed out.
	ErrSourceUnavailable error = &codedError{code: CodeSourceUnavailable, msg: "availability: source unavailable"}
	// ErrInvalidRange means the requested start date is after the end date.
	ErrInvalidRange error = &codedError{code: CodeInvalidRange, msg: "availability: invalid range"}
	// ErrUnknownVehicle is returned (wrapped) by sources for ids they do not know.
	ErrUnknownVehicle error = &codedError{code: CodeUnknownVehicle, msg: "availability: unknown vehicle"}
)

// VehicleError reports why one vehicle's calendar could not be computed.
type VehicleError struct {
	VehicleID uint
	ErrCode   ErrCode
	Cause     error
}

func (e *VehicleError) Error() string {
	return fmt.Sprintf("vehicle %d: %s: %v", e.VehicleID, e.ErrCode, e.Cause)
}

func (e *VehicleError) Code() ErrCode { return e.ErrCode }

// Unwrap exposes both the matching sentinel and the source's own error, so
// errors.Is works against either.
func (e *VehicleError) Unwrap() []error {
	return []error{sentinel(e.ErrCode), e.Cause}
}

func sentinel(code ErrCode) error {
	switch code {
	case CodeUnknownVehicle:
		return ErrUnknownVehicle
	case CodeInvalidRange:
		return ErrInvalidRange
	default:
		return ErrSourceUnavailable
	}
}

// classify turns a source failure into a VehicleError. Anything that is not
// an unknown-vehicle signal counts as the source being unavailable.
func classify(vehicleID uint, err error) *VehicleError {
	code := CodeSourceUnavailable
	if errors.Is(err, ErrUnknownVehicle) {
		code = CodeUnknownVehicle
	}
	return &VehicleError{VehicleID: vehicleID, ErrCode: code, Cause: err}
}

// Code extracts the ErrCode carried by err, or "" if there is none.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
