package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailureKind classifies why a remote call produced no usable text.
type FailureKind string

const (
	FailureNetwork FailureKind = "network"
	FailureTimeout FailureKind = "timeout"
	FailureStatus  FailureKind = "status"
	FailureDecode  FailureKind = "decode"
	FailureEmpty   FailureKind = "empty"
)

// CallError is returned for every failed Generate call.
type CallError struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *CallError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s failure: %v", e.Provider, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err, or "" when err is not a *CallError.
func KindOf(err error) FailureKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// transportError wraps an error from sending the request, telling deadline
// expiry apart from other network trouble.
func transportError(ctx context.Context, provider string, err error) *CallError {
	kind := FailureNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		kind = FailureTimeout
	}
	return &CallError{Provider: provider, Kind: kind, Err: err}
}
