// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package faults classifies the rule violations vault operations can report.
package faults

import (
	"errors"
	"fmt"
)

// Kind is the class of a fault.
type Kind int

const (
	Unauthorized Kind = iota
	SystemPaused
	InsufficientAmount
	InvalidIdentity
	BelowFloor
	NoStake
	DurationTooShort
	InsufficientReserve
	Reentrant
)

func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case SystemPaused:
		return "system_paused"
	case InsufficientAmount:
		return "insufficient_amount"
	case InvalidIdentity:
		return "invalid_identity"
	case BelowFloor:
		return "below_floor"
	case NoStake:
		return "no_stake"
	case DurationTooShort:
		return "duration_too_short"
	case InsufficientReserve:
		return "insufficient_reserve"
	case Reentrant:
		return "reentrant"
	default:
		return "unknown"
	}
}

// Fault is a rule violation. Operations that return a Fault leave
// all state untouched.
type Fault struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *Fault {
	return &Fault{
		kind:    kind,
		message: message,
	}
}

func Newf(kind Kind, format string, args ...interface{}) *Fault {
	return New(kind, fmt.Sprintf(format, args...))
}

func (f *Fault) Error() string {
	if f.message == "" {
		return f.kind.String()
	}
	return f.kind.String() + ": " + f.message
}

func (f *Fault) Kind() Kind {
	return f.kind
}

func (f *Fault) Message() string {
	return f.message
}

// IsFault reports whether err wraps a Fault.
func IsFault(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var f *Fault
	return errors.As(e, &f)
}

// Is reports whether err wraps a Fault of the given kind.
func Is(err error, kind Kind) bool {
	var f *Fault
	if !errors.As(err, &f) {
		return false
	}
	return f.kind == kind
}

// KindOf extracts the kind of the Fault wrapped by err, if any.
func KindOf(err error) (Kind, bool) {
	var f *Fault
	if !errors.As(err, &f) {
		return 0, false
	}
	return f.kind, true
}
