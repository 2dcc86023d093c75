package lifecycle

import "context"

// State of the interception layer instance.
type State int

const (
	StateUninstalled State = iota
	StateInstalling
	// StateInstalled doubles as the waiting state: an installed instance is
	// immediately eligible to activate, it never waits for open clients.
	StateInstalled
	StateActivating
	StateActive
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninstalled:
		return "uninstalled"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ClientRegistry is the hook for taking over every open client view once
// activation completes, without waiting for navigation.
type ClientRegistry interface {
	Claim(ctx context.Context) error
}

// NoopClients claims nothing; the default when no client host is wired.
type NoopClients struct{}

func (NoopClients) Claim(context.Context) error { return nil }
