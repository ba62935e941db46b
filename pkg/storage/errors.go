package storage

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors matched by the typed errors below.
var (
	// ErrEncoding is matched by EncodingError.
	ErrEncoding = errors.New("storage encoding error")
	// ErrSlotCollision is matched by SlotCollisionError.
	ErrSlotCollision = errors.New("storage slot collision")
)

// EncodingError reports a value that does not fit its slot encoding.
type EncodingError struct {
	Kind   string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %s: %s", e.Kind, e.Reason)
}

func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}

func encodingErrorf(kind, format string, args ...interface{}) *EncodingError {
	return &EncodingError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// SlotCollisionError reports two different values written to one slot.
// Reaching it means a generator declared overlapping slots.
type SlotCollisionError struct {
	Slot     common.Hash
	Existing common.Hash
	Value    common.Hash
}

func (e *SlotCollisionError) Error() string {
	return fmt.Sprintf("slot %s already holds %s, refusing to write %s",
		e.Slot.Hex(), e.Existing.Hex(), e.Value.Hex())
}

func (e *SlotCollisionError) Unwrap() error {
	return ErrSlotCollision
}
