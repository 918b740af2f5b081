package sync

import "errors"

var (
	// ErrNoConnection is returned when a workspace has no active connection
	// for the requested provider.
	ErrNoConnection = errors.New("no active connection for provider")

	// ErrMissingAPIKey is returned when the connection exists but carries no
	// credential to call the provider with.
	ErrMissingAPIKey = errors.New("connection has no api key")

	// ErrUnknownProvider is returned when no adapter is registered for the
	// connection's provider.
	ErrUnknownProvider = errors.New("no adapter registered for provider")

	// ErrBatchCapExceeded is returned when the continuation chain has run
	// longer than the per-provider batch cap allows. It indicates a stuck
	// loop, not a data problem.
	ErrBatchCapExceeded = errors.New("sync batch cap exceeded")
)
