// Package daemon runs watch-and-serve mode: an HTTP server over the
// generated site, filesystem watching with debounced rebuilds, optional
// scheduled rebuilds, build history, metrics, and build-event publishing.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/nbarraud/blogbuilder/internal/config"
	"github.com/nbarraud/blogbuilder/internal/eventstore"
	"github.com/nbarraud/blogbuilder/internal/git"
	"github.com/nbarraud/blogbuilder/internal/logfields"
	"github.com/nbarraud/blogbuilder/internal/metrics"
	"github.com/nbarraud/blogbuilder/internal/site"
	"github.com/nbarraud/blogbuilder/internal/workspace"
)

// Daemon wires the generator, watcher, scheduler, server, and optional
// history/event sinks together.
type Daemon struct {
	cfg *config.Config
	gen *site.Generator

	store     eventstore.Store
	publisher *EventPublisher
	registry  *prom.Registry

	ws        *workspace.Manager
	gitClient *git.Client

	triggers chan string

	mu       sync.Mutex
	building bool
}

// New assembles a daemon from configuration. Optional subsystems (history,
// metrics, events) activate only when configured.
func New(cfg *config.Config) (*Daemon, error) {
	d := &Daemon{
		cfg:      cfg,
		triggers: make(chan string, 8),
	}

	d.gen = site.New(cfg, "")
	if cfg.Daemon.Metrics {
		d.registry = prom.NewRegistry()
		d.gen.SetRecorder(metrics.NewPrometheusRecorder(d.registry))
	}

	if cfg.Daemon.HistoryDB != "" {
		store, err := eventstore.NewSQLiteStore(cfg.Daemon.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("open build history: %w", err)
		}
		d.store = store
	}

	if cfg.Daemon.Events.Enabled {
		pub, err := NewEventPublisher(&cfg.Daemon.Events)
		if err != nil {
			d.closeSinks()
			return nil, err
		}
		d.publisher = pub
	}

	if cfg.Content.Repo != nil {
		d.ws = workspace.NewPersistentManager("", "blogbuilder")
		if err := d.ws.Create(); err != nil {
			d.closeSinks()
			return nil, err
		}
		d.gitClient = git.NewClient(d.ws.Path())
	}
	return d, nil
}

// Run blocks until ctx is canceled, serving the site and rebuilding on
// content changes and schedule ticks.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.closeSinks()

	// Initial build so the server has something to serve.
	d.rebuild(ctx, "initial")

	var wg sync.WaitGroup

	watcher, err := NewWatcher(d.watchRoots()...)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	wg.Add(2)
	go func() {
		defer wg.Done()
		watcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		NewDebouncer().Run(ctx, watcher.Events(), d.triggers)
	}()

	if iv := d.cfg.Daemon.RebuildIntervalDuration(); iv > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		if err := sched.ScheduleRebuild(iv, d.Trigger); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		d.buildLoop(ctx)
	}()

	srv := NewServer(d.cfg.Daemon.Addr, d.gen.OutputDir(), d.store, d.registry)
	err = srv.Run(ctx)

	wg.Wait()
	return err
}

// Trigger requests a rebuild; concurrent requests collapse into one.
func (d *Daemon) Trigger(reason string) {
	select {
	case d.triggers <- reason:
	default:
	}
}

func (d *Daemon) watchRoots() []string {
	roots := []string{d.cfg.Templates.Dir}
	if d.gitClient == nil {
		roots = append(roots, d.cfg.Content.Dir)
	}
	return roots
}

func (d *Daemon) buildLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-d.triggers:
			d.rebuild(ctx, reason)
		}
	}
}

func (d *Daemon) rebuild(ctx context.Context, reason string) {
	d.mu.Lock()
	if d.building {
		d.mu.Unlock()
		d.Trigger(reason) // queue one follow-up
		return
	}
	d.building = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.building = false
		d.mu.Unlock()
	}()

	slog.Info("Rebuilding site", slog.String("reason", reason))

	contentDir := d.cfg.Content.Dir
	if d.gitClient != nil {
		checkout, err := d.gitClient.CloneOrUpdate(ctx, d.cfg.Content.Repo)
		if err != nil {
			slog.Error("Content checkout failed", logfields.Error(err))
			return
		}
		contentDir = checkout
	}

	report, err := d.gen.BuildFrom(ctx, contentDir)
	if err != nil {
		slog.Error("Build failed", logfields.Error(err))
	}
	if report == nil {
		return
	}
	d.recordHistory(ctx, report)
	d.publishEvent(ctx, report, reason)
}

func (d *Daemon) recordHistory(ctx context.Context, report *site.BuildReport) {
	if d.store == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		payload = nil
	}
	rec := &eventstore.BuildRecord{
		BuildID:  report.BuildID,
		Started:  report.Start,
		Finished: report.End,
		Outcome:  report.Outcome,
		Posts:    report.Posts,
		Rendered: report.RenderedPages,
		Skipped:  len(report.SkippedFiles),
		Report:   payload,
	}
	if err := d.store.Record(ctx, rec); err != nil {
		slog.Warn("Failed to record build history", logfields.BuildID(report.BuildID), logfields.Error(err))
	}
}

func (d *Daemon) publishEvent(ctx context.Context, report *site.BuildReport, reason string) {
	if d.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ev := BuildEvent{
		BuildID:  report.BuildID,
		Outcome:  report.Outcome,
		Posts:    report.Posts,
		Rendered: report.RenderedPages,
		Skipped:  len(report.SkippedFiles),
		Reason:   reason,
	}
	if err := d.publisher.Publish(pubCtx, ev); err != nil {
		slog.Warn("Failed to publish build event", logfields.BuildID(report.BuildID), logfields.Error(err))
	}
}

func (d *Daemon) closeSinks() {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			slog.Warn("Failed to close build history", logfields.Error(err))
		}
		d.store = nil
	}
	if d.publisher != nil {
		d.publisher.Close()
		d.publisher = nil
	}
}
