package core

import "errors"

var (
	// ErrMalformedAnswerKey is returned for keys with invalid weights, duplicate ids or no steps
	ErrMalformedAnswerKey = errors.New("malformed answer key")

	// ErrCacheUnavailable signals that the verdict store could not be read and the
	// session continues with an in-memory cache only
	ErrCacheUnavailable = errors.New("match cache unavailable")

	// ErrServiceClosed is returned when grading after Close
	ErrServiceClosed = errors.New("grading service closed")
)
