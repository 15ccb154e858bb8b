package commands

import (
	"fmt"

	"github.com/nbarraud/blogbuilder/internal/config"
	"github.com/nbarraud/blogbuilder/internal/daemon"
)

// PreviewCmd is daemon mode tuned for local writing: drafts and future posts
// are included, and the heavier sinks (history, events, metrics) stay off.
type PreviewCmd struct {
	Addr string `help:"Listen address" default:"127.0.0.1:8080"`
}

func (p *PreviewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Build.Drafts = true
	cfg.Build.Future = true
	cfg.Daemon.Addr = p.Addr
	cfg.Daemon.Metrics = false
	cfg.Daemon.HistoryDB = ""
	cfg.Daemon.Events.Enabled = false

	dm, err := daemon.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	fmt.Printf("Previewing at http://%s\n", p.Addr)
	return dm.Run(ctx)
}
