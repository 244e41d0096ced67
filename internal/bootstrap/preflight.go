package bootstrap

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/1ureka/p2pchat-launcher/internal/config"
)

// Prober checks the conditions a chat role depends on before it is
// launched. Probe failures are warnings; they never stop a launch.
type Prober interface {
	Probe(ctx context.Context, cfg config.LaunchConfig) error
}

// PortProber checks that the local port the chat will bind is free.
// The peer address is never dialed: the chat listener would take the
// probe for a real peer.
type PortProber struct{}

func (PortProber) Probe(ctx context.Context, cfg config.LaunchConfig) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort("", strconv.Itoa(cfg.Port)))
	if err != nil {
		return fmt.Errorf("port %d looks busy, %s may fail to bind it: %w", cfg.Port, cfg.Nickname, err)
	}
	return ln.Close()
}
