// Package errors defines error codes and categories for the publish engine
package errors

// Error Categories
const (
	// Validation Errors (VAL)
	ValidationCategory = "VAL"

	// Platform Errors (PLT)
	PlatformCategory = "PLT"

	// Session Errors (SES)
	SessionCategory = "SES"

	// Network Errors (NET)
	NetworkCategory = "NET"

	// Queue Errors (QUE)
	QueueCategory = "QUE"

	// System Errors (SYS)
	SystemCategory = "SYS"
)

// Validation Error Codes
const (
	ErrMissingPlatform Code = "VAL001" // Request is missing the platform field
	ErrMissingPost     Code = "VAL002" // Request is missing the post payload
	ErrEmptyTitle      Code = "VAL003" // Post title is empty
	ErrInvalidRequest  Code = "VAL004" // Request failed general validation
)

// Platform Error Codes
const (
	ErrUnsupportedPlatform Code = "PLT001" // Platform identifier is not registered
	ErrDuplicatePublish    Code = "PLT002" // Same title published to platform within window
	ErrStrategyExhausted   Code = "PLT003" // Every automated strategy failed
	ErrMissingBlogID       Code = "PLT004" // Platform adapter has no blog/account identifier
	ErrEndpointRejected    Code = "PLT005" // Direct write endpoint rejected the request
)

// Session Error Codes
const (
	ErrLoginRequired  Code = "SES001" // Persisted session is invalid or expired
	ErrCaptureTimeout Code = "SES002" // Interactive login was not completed in time
	ErrNoSession      Code = "SES003" // No session record exists for the platform
)

// Network Error Codes
const (
	ErrTimeout           Code = "NET001" // Operation exceeded its deadline
	ErrConnection        Code = "NET002" // Connection reset or refused
	ErrNavigationFailed  Code = "NET003" // Browser navigation did not complete
	ErrTransportProtocol Code = "NET004" // Protocol-level transport failure
)

// Queue Error Codes
const (
	ErrQueueClosed  Code = "QUE001" // Queue has been closed
	ErrQueueFull    Code = "QUE002" // Queue is at capacity
	ErrJobMalformed Code = "QUE003" // Dequeued job could not be decoded
)

// System Error Codes
const (
	ErrInternal       Code = "SYS001" // Unexpected internal failure
	ErrLedgerWrite    Code = "SYS002" // History ledger could not be persisted
	ErrSessionStorage Code = "SYS003" // Session record could not be persisted
)

// Category returns the category prefix of a code.
func (c Code) Category() string {
	if len(c) < 3 {
		return SystemCategory
	}
	return string(c[:3])
}
