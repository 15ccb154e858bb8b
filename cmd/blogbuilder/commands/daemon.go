package commands

import (
	"fmt"

	"github.com/nbarraud/blogbuilder/internal/config"
	"github.com/nbarraud/blogbuilder/internal/daemon"
)

// DaemonCmd runs watch-and-serve mode.
type DaemonCmd struct {
	Addr string `help:"Listen address (overrides config)"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if d.Addr != "" {
		cfg.Daemon.Addr = d.Addr
	}
	if cfg.Daemon.Addr == "" {
		cfg.Daemon.Addr = ":8080"
	}

	dm, err := daemon.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return dm.Run(ctx)
}
