// Package kerrors defines the typed error kinds shared by every index
// variant, the storage contract, and the query engine.
package kerrors

import (
	"errors"
	"fmt"
)

// Kind identifies one of the failure modes a caller may need to branch on.
type Kind int

const (
	// DimensionMismatch indicates a query or entry dimension differs from
	// the dimension an index or a store has already established.
	DimensionMismatch Kind = iota
	// DuplicateID indicates two entries in one Build, or an Insert against
	// an existing id, share an identifier.
	DuplicateID
	// NotBuilt indicates Search was called before Build.
	NotBuilt
	// AlreadyBuilt indicates Build was called a second time.
	AlreadyBuilt
	// InvalidArgument covers k == 0, nonsensical configuration, and
	// non-finite vector components.
	InvalidArgument
	// NotFound indicates a storage lookup for an id an index returned
	// came back empty, i.e. index/storage divergence.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case DimensionMismatch:
		return "dimension_mismatch"
	case DuplicateID:
		return "duplicate_id"
	case NotBuilt:
		return "not_built"
	case AlreadyBuilt:
		return "already_built"
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is the concrete error type every Kowari component returns for a
// recognized failure mode. Callers branch on the kind with Is rather than
// string-matching Error().
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// New returns an *Error of the given kind with a fixed message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf returns an *Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a *Error of the given kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// DimensionMismatchf builds a DimensionMismatch error comparing an
// established dimension against an offending one.
func DimensionMismatchf(expected, actual int) *Error {
	return Newf(DimensionMismatch, "dimension mismatch: expected %d, got %d", expected, actual)
}

// DuplicateIDf builds a DuplicateID error for the given identifier.
func DuplicateIDf(id string) *Error {
	return Newf(DuplicateID, "duplicate id %q", id)
}

// NotBuiltErr builds a NotBuilt error.
func NotBuiltErr() *Error {
	return New(NotBuilt, "index has not been built")
}

// AlreadyBuiltErr builds an AlreadyBuilt error.
func AlreadyBuiltErr() *Error {
	return New(AlreadyBuilt, "build has already been called on this index")
}

// InvalidArgumentf builds an InvalidArgument error with a formatted message.
func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(InvalidArgument, format, args...)
}

// NotFoundf builds a NotFound error for the given identifier.
func NotFoundf(id string) *Error {
	return Newf(NotFound, "id %q not found in storage", id)
}
