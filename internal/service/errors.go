package service

import (
	"errors"
	"fmt"
)

// Code classifies operation failures. The string values are stable API codes
// reported to callers.
type Code string

const (
	CodeNoImage             Code = "NO_IMAGE"
	CodeNoFaceDetected      Code = "NO_FACE_DETECTED"
	CodeMultipleFaces       Code = "MULTIPLE_FACES"
	CodeFaceNotRecognized   Code = "FACE_NOT_RECOGNIZED"
	CodeInvalidWorkerID     Code = "INVALID_WORKER_ID"
	CodeMaxFacesReached     Code = "MAX_FACES_REACHED"
	CodeWorkerNotFound      Code = "WORKER_NOT_FOUND"
	CodeThresholdOutOfRange Code = "THRESHOLD_OUT_OF_RANGE"
	CodeInternalError       Code = "INTERNAL_ERROR"
)

// Error is a classified operation failure. Every failure path in the facade
// produces one of these; nothing is swallowed into a generic error.
type Error struct {
	Code          Code
	Message       string
	FacesDetected int // set for MULTIPLE_FACES
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the classification code from an error, falling back to
// INTERNAL_ERROR for anything unclassified.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeInternalError
}
