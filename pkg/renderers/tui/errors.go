package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrUnpromptable is returned when a visible field has no terminal prompt
	// representation (attachments, credit card capture).
	ErrUnpromptable = errors.New("tui: field cannot be prompted")
)
