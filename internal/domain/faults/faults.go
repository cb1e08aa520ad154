// Package faults defines the structured error taxonomy shared by every
// service and surfaced through both transports.
package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a fault for transport-level mapping.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindDuplicateKey      Kind = "duplicate_key"
	KindInsufficientStock Kind = "insufficient_stock"
	KindReadOnlyRecord    Kind = "read_only_record"
)

// Fault is a structured, field-attributable error. Services return Faults for
// every expected failure; anything else is an internal error.
type Fault struct {
	Kind    Kind
	Field   string
	Message string
}

func (f *Fault) Error() string {
	if f.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", f.Kind, f.Message, f.Field)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// NotFound reports that an entity id did not resolve.
func NotFound(entity string) *Fault {
	return &Fault{Kind: KindNotFound, Message: entity + " not found"}
}

// InvalidInput reports a field-level validation failure.
func InvalidInput(field, message string) *Fault {
	return &Fault{Kind: KindInvalidInput, Field: field, Message: message}
}

// DuplicateKey reports a uniqueness violation on the named field.
func DuplicateKey(field, value string) *Fault {
	return &Fault{Kind: KindDuplicateKey, Field: field, Message: fmt.Sprintf("%s %q is already registered", field, value)}
}

// InsufficientStock reports that a requested dose or delta exceeds the
// available balance.
func InsufficientStock(message string) *Fault {
	return &Fault{Kind: KindInsufficientStock, Field: "dosePounds", Message: message}
}

// ReadOnlyRecord reports an attempted correction of a feeding event whose
// original feed type no longer exists.
func ReadOnlyRecord() *Fault {
	return &Fault{
		Kind:    KindReadOnlyRecord,
		Message: "the original feed type was deleted; this historical record is read-only",
	}
}

// As extracts a *Fault from an error chain, or nil.
func As(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return nil
}

// IsKind reports whether err carries a Fault of the given kind.
func IsKind(err error, kind Kind) bool {
	f := As(err)
	return f != nil && f.Kind == kind
}
