// Package device is the local address book the contacts list is annotated
// against. Access is split into separate read and write grants, and every
// operation quietly degrades to false or empty when its grant is missing.
package device

import (
	"context"
	"errors"
)

// ErrScanAborted wraps every error ReadAllNumbers returns. It only tells the
// caller that the numbers it got back are incomplete.
var ErrScanAborted = errors.New("address book scan aborted")

type NewContact struct {
	FirstName string
	LastName  string
	Phone     string
	Photo     []byte
}

type Provider interface {
	HasReadAccess() bool
	HasWriteAccess() bool

	// FindByPhone reports whether any entry carries phone, compared by
	// normalized digits.
	FindByPhone(ctx context.Context, phone string) bool

	// ReadAllNumbers returns every non-blank number in the book. When the
	// scan stops early it returns what it collected so far together with an
	// error wrapping ErrScanAborted.
	ReadAllNumbers(ctx context.Context) ([]string, error)

	WriteContact(ctx context.Context, contact NewContact) bool
}

type Permissions struct {
	Read  bool
	Write bool
}
