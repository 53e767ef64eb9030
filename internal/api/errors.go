package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// Kind buckets a failed request by what the user can do about it.
type Kind string

const (
	KindNetwork Kind = "network"
	KindHTTP    Kind = "http"
	KindFormat  Kind = "format"
	KindTimeout Kind = "timeout"
	KindOther   Kind = "other"
)

var (
	ErrNoConnection = errors.New("no network connection")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrAuthFailed   = errors.New("authentication failed")
)

type RequestError struct {
	Kind       Kind
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s error", e.Method, e.Path, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// KindOf returns KindOther for errors that did not come from the client.
func KindOf(err error) Kind {
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return KindOther
}

// UserMessage renders err the way it should be shown to a person.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var rerr *RequestError
	if !errors.As(err, &rerr) {
		return err.Error()
	}
	switch rerr.Kind {
	case KindNetwork:
		return "No internet connection. Check your network and try again."
	case KindTimeout:
		return "The server took too long to respond. Please try again."
	case KindFormat:
		return "The server sent a response that could not be read."
	case KindHTTP:
		if rerr.StatusCode == http.StatusUnauthorized {
			return "Your session has expired. Run `nutri login` again."
		}
		if rerr.Message != "" {
			return fmt.Sprintf("Request failed (%d): %s", rerr.StatusCode, rerr.Message)
		}
		return fmt.Sprintf("Request failed with status %d.", rerr.StatusCode)
	default:
		if rerr.Err != nil {
			return fmt.Sprintf("Something went wrong: %v", rerr.Err)
		}
		return "Something went wrong."
	}
}

func classifyTransport(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindOther
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr):
		return KindNetwork
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return KindNetwork
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return KindNetwork
	}
	return KindOther
}

func isStatus(err error, codes ...int) bool {
	var rerr *RequestError
	if !errors.As(err, &rerr) {
		return false
	}
	for _, c := range codes {
		if rerr.StatusCode == c {
			return true
		}
	}
	return false
}
