package domain

import "errors"

// ErrSessionNotFound is returned when a conversation ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownHandler is returned when the router emits a handler identifier the
// driver does not recognize. This is a contract violation and aborts the turn;
// there is no silent fallback.
var ErrUnknownHandler = errors.New("unknown handler")
