package patchbay

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. The typed errors below unwrap to them.
var (
	ErrInvalidShape = errors.New("invalid export shape")
	ErrReentrant    = errors.New("re-entrant board operation")
	ErrBadSlot      = errors.New("unresolvable import slot")
)

// ShapeError reports an instance whose runtime type cannot be exported.
type ShapeError struct {
	Type   string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("cannot export %s: %s", e.Type, e.Reason)
}

func (e *ShapeError) Unwrap() error {
	return ErrInvalidShape
}

// ReentrancyError reports a board operation re-entered from inside another
// board operation on the same goroutine, such as a subscriber's assignment
// triggering a further export change.
type ReentrancyError struct {
	Op string
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("re-entrant call to %s while the board is mid-operation", e.Op)
}

func (e *ReentrancyError) Unwrap() error {
	return ErrReentrant
}

// SlotError reports an import slot that cannot be subscribed.
type SlotError struct {
	Member string
	Reason string
}

func (e *SlotError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("import slot: %s", e.Reason)
	}
	return fmt.Sprintf("import slot '%s': %s", e.Member, e.Reason)
}

func (e *SlotError) Unwrap() error {
	return ErrBadSlot
}
