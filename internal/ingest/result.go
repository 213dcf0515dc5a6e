package ingest

import "net/http"

// Status is the normalized outcome of one invocation.
type Status int

const (
	// StatusOK acknowledges the notification, including ignored objects.
	StatusOK Status = iota
	// StatusBadRequest rejects a malformed envelope or payload; the
	// transport should not redeliver.
	StatusBadRequest
	// StatusError reports a downstream failure; the transport is expected
	// to redeliver.
	StatusError
)

// HTTPStatus maps the outcome to its response code.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusBadRequest:
		return http.StatusBadRequest
	case StatusError:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// Text returns the plain response body for the outcome.
func (s Status) Text() string {
	switch s {
	case StatusBadRequest:
		return "Bad Request"
	case StatusError:
		return "Internal Server Error"
	default:
		return "OK"
	}
}

// Result is the only externally observable outcome of an invocation besides
// downstream store mutations and logs.
type Result struct {
	Status Status
	Detail string
}
