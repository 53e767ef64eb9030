package api

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

type Reachability interface {
	Reachable(ctx context.Context) bool
}

// Prompter asks the user whether to retry after connectivity is lost.
type Prompter interface {
	ConfirmRetry(message string) bool
}

// Notifier surfaces network and timeout failures to the user.
type Notifier interface {
	Notify(kind Kind, message string)
}

// DialReachability treats a successful TCP dial to Address as "online".
type DialReachability struct {
	Address string
	Timeout time.Duration
}

func (d DialReachability) Reachable(ctx context.Context) bool {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.Address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func ReachabilityFor(baseURL string) (DialReachability, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return DialReachability{}, fmt.Errorf("parse api url: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return DialReachability{}, fmt.Errorf("api url %q has no host", baseURL)
	}
	port := u.Port()
	if port == "" {
		switch strings.ToLower(u.Scheme) {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return DialReachability{Address: net.JoinHostPort(host, port)}, nil
}

type ReachabilityFunc func(ctx context.Context) bool

func (f ReachabilityFunc) Reachable(ctx context.Context) bool { return f(ctx) }
