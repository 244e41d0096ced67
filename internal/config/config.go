// Package config holds the launch configuration types: the two chat roles,
// their fixed per-role profiles, and the argument list handed to the chat
// executable.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

var (
	ErrUnknownRole   = errors.New("unknown role")
	ErrInvalidConfig = errors.New("invalid launch configuration")
)

// Role represents the peer role the chat executable is started in.
type Role string

const (
	RoleListener  Role = "listener"  // binds a local port and waits for the peer
	RoleConnector Role = "connector" // dials a known peer address
)

// Roles lists every role in menu order.
var Roles = []Role{RoleListener, RoleConnector}

// menuKeys maps the interactive menu answer to its role.
var menuKeys = map[string]Role{
	"1": RoleListener,
	"2": RoleConnector,
}

// aliases accepted by ParseRole besides the role names themselves.
var aliases = map[string]Role{
	"alice": RoleListener,
	"bob":   RoleConnector,
}

// RoleFromChoice maps a raw menu answer to a role. The match is exact:
// " 1" or "1 " are not valid answers.
func RoleFromChoice(choice string) (Role, bool) {
	r, ok := menuKeys[choice]
	return r, ok
}

// ParseRole parses a role name for non-interactive use. Matching is
// case-insensitive and also accepts the historical nicknames.
func ParseRole(name string) (Role, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, r := range Roles {
		if string(r) == n {
			return r, nil
		}
	}
	if r, ok := aliases[n]; ok {
		return r, nil
	}
	return "", fmt.Errorf("%w: %q (want listener or connector)", ErrUnknownRole, name)
}

// MenuKey returns the interactive menu answer that selects r.
func (r Role) MenuKey() string {
	for k, v := range menuKeys {
		if v == r {
			return k
		}
	}
	return ""
}

// Profile is the fixed configuration associated with a role.
type Profile struct {
	Port     int    // local port the chat binds
	Connect  string // remote peer address; empty for the listener
	Nickname string // display name shown to the peer
}

// Table associates every role with its profile.
type Table map[Role]Profile

// DefaultTable returns the reference profiles: Alice listens on 8080,
// Bob listens on 8081 and dials Alice.
func DefaultTable() Table {
	return Table{
		RoleListener: {
			Port:     8080,
			Nickname: "Alice",
		},
		RoleConnector: {
			Port:     8081,
			Connect:  "localhost:8080",
			Nickname: "Bob",
		},
	}
}

// Clone returns a copy of t that can be modified independently.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for r, p := range t {
		out[r] = p
	}
	return out
}

// LaunchConfig stores everything needed to start one chat process.
// It is built once per run and never mutated afterwards.
type LaunchConfig struct {
	Role     Role
	Port     int
	Connect  string
	Nickname string
}

// For builds the launch configuration of role r from t.
func (t Table) For(r Role) (LaunchConfig, error) {
	p, ok := t[r]
	if !ok {
		return LaunchConfig{}, fmt.Errorf("%w: %q", ErrUnknownRole, r)
	}
	return LaunchConfig{
		Role:     r,
		Port:     p.Port,
		Connect:  p.Connect,
		Nickname: p.Nickname,
	}, nil
}

// Args returns the command-line flags for the chat executable, in the
// order --port, --connect, --nickname. --connect is only present when a
// remote address is configured.
func (c LaunchConfig) Args() []string {
	args := []string{"--port", strconv.Itoa(c.Port)}
	if c.Connect != "" {
		args = append(args, "--connect", c.Connect)
	}
	return append(args, "--nickname", c.Nickname)
}

// Validate reports whether c can be handed to the chat executable.
func (c LaunchConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range 1~65535", ErrInvalidConfig, c.Port)
	}
	if c.Nickname == "" {
		return fmt.Errorf("%w: empty nickname", ErrInvalidConfig)
	}
	switch c.Role {
	case RoleConnector:
		if c.Connect == "" {
			return fmt.Errorf("%w: connector needs a peer address", ErrInvalidConfig)
		}
		if _, port, err := net.SplitHostPort(c.Connect); err != nil || port == "" {
			return fmt.Errorf("%w: peer address %q is not host:port", ErrInvalidConfig, c.Connect)
		}
	case RoleListener:
		if c.Connect != "" {
			return fmt.Errorf("%w: listener takes no peer address, got %q", ErrInvalidConfig, c.Connect)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, c.Role)
	}
	return nil
}
