// services/errors.go
package services

import "errors"

// Ledger-level invariant violations. Handlers map these to user-facing
// responses; store-layer errors pass through wrapped.
var (
	ErrDuplicateVote   = errors.New("vote already exists for this theme")
	ErrVoteCapExceeded = errors.New("vote cap reached for this jam")
	ErrVoteNotFound    = errors.New("vote not found")
	ErrJamNotFound     = errors.New("jam not found")
	ErrThemeNotFound   = errors.New("theme not found")
	ErrNoParticipants  = errors.New("jam has no active participants")
	ErrNotParticipant  = errors.New("user is not a participant of this jam")

	ErrInvalidCertificateKind = errors.New("certificate kind must be participation or recognition")
)
