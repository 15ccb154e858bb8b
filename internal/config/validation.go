package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validation sentinels allow callers to branch on the failing concern.
var (
	ErrNoContentSource    = errors.New("content: either dir or repo.url must be set")
	ErrInvalidBaseURL     = errors.New("site: base_url must be an absolute http(s) URL")
	ErrInvalidInterval    = errors.New("daemon: rebuild_interval must be a valid Go duration")
	ErrInvalidRepoDepth   = errors.New("content: repo.depth must be >= 0")
	ErrEventsURLRequired  = errors.New("daemon: events.url is required when events are enabled")
	ErrOutputInsideSource = errors.New("output: directory must not be inside the content dir")
)

// Validate checks cross-field constraints after defaults have been applied.
func (c *Config) Validate() error {
	if c.Content.Dir == "" && (c.Content.Repo == nil || c.Content.Repo.URL == "") {
		return ErrNoContentSource
	}
	if c.Site.BaseURL != "" {
		u, err := url.Parse(c.Site.BaseURL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.Site.BaseURL)
		}
	}
	if c.Content.Repo != nil && c.Content.Repo.Depth < 0 {
		return ErrInvalidRepoDepth
	}
	if c.Daemon.RebuildInterval != "" {
		if _, err := time.ParseDuration(c.Daemon.RebuildInterval); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidInterval, c.Daemon.RebuildInterval)
		}
	}
	if c.Daemon.Events.Enabled && c.Daemon.Events.URL == "" {
		return ErrEventsURLRequired
	}
	if c.Content.Dir != "" && c.Output.Directory != "" {
		if strings.HasPrefix(cleanPath(c.Output.Directory), cleanPath(c.Content.Dir)+"/") {
			return ErrOutputInsideSource
		}
	}
	return nil
}

func cleanPath(p string) string {
	p = strings.TrimSuffix(p, "/")
	return strings.TrimPrefix(p, "./")
}
