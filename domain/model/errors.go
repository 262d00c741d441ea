package model

import "errors"

// Sentinel errors shared across usecases and handlers. Handlers translate
// these with errors.Is into HTTP status codes.
var (
	ErrChannelNotFound    = errors.New("channel not found")
	ErrVideoNotFound      = errors.New("video not found")
	ErrIndexingIncomplete = errors.New("channel indexing is not complete")
	ErrNoMatchingVideos   = errors.New("no videos match the requested filters")
	ErrUpstream           = errors.New("upstream API error")
	ErrNotConfigured      = errors.New("external dependency not configured")
	ErrValidation         = errors.New("invalid request")
	ErrRateLimited        = errors.New("daily limit reached")
)
