package model

import (
	"errors"
	"fmt"
)

// Kind classifies failures reported by the service.
type Kind int

const (
	KindUnknown Kind = iota
	KindLoginInProgress
	KindAuthenticationFailed
	KindNetwork
	KindRemote
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindLoginInProgress:
		return "login in progress"
	case KindAuthenticationFailed:
		return "authentication failed"
	case KindNetwork:
		return "network error"
	case KindRemote:
		return "remote error"
	case KindNotFound:
		return "not found"
	default:
		return "unknown error"
	}
}

// Error is a classified failure. Subject names the username or repository
// the failure concerns; Message carries the remote API's explanation when
// there is one.
type Error struct {
	Kind    Kind
	Subject string
	Message string
	Err     error
}

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrLoginInProgress      = &Error{Kind: KindLoginInProgress}
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed}
	ErrNetwork              = &Error{Kind: KindNetwork}
	ErrRemote               = &Error{Kind: KindRemote}
	ErrNotFound             = &Error{Kind: KindNotFound}
)

// NewError builds a classified error.
func NewError(kind Kind, subject string, err error) *Error {
	return &Error{Kind: kind, Subject: subject, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Subject != "" {
		msg = fmt.Sprintf("%s: %s", e.Subject, msg)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of err, or KindUnknown if err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
