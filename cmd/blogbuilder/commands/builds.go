package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/nbarraud/blogbuilder/internal/config"
	"github.com/nbarraud/blogbuilder/internal/eventstore"
)

// BuildsCmd lists recent builds recorded in the daemon history database.
type BuildsCmd struct {
	Limit int `short:"n" help:"Maximum number of builds to show" default:"20"`
}

func (b *BuildsCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Daemon.HistoryDB == "" {
		return fmt.Errorf("no history database configured (daemon.history_db)")
	}

	store, err := eventstore.NewSQLiteStore(cfg.Daemon.HistoryDB)
	if err != nil {
		return fmt.Errorf("open build history: %w", err)
	}
	defer store.Close()

	recs, err := store.ListRecent(context.Background(), b.Limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("No builds recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BUILD\tSTARTED\tDURATION\tOUTCOME\tPOSTS\tSKIPPED")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			shortID(r.BuildID),
			r.Started.Format(time.DateTime),
			r.Duration().Truncate(time.Millisecond),
			r.Outcome, r.Posts, r.Skipped)
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
