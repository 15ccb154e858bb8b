package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Content   ContentConfig   `yaml:"content"`
	Build     BuildConfig     `yaml:"build"`
	Output    OutputConfig    `yaml:"output"`
	Templates TemplatesConfig `yaml:"templates"`
	Daemon    DaemonConfig    `yaml:"daemon"`
}

// SiteConfig holds site-wide presentation metadata.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Author      string `yaml:"author,omitempty"`
	Language    string `yaml:"language,omitempty"`
}

// ContentConfig describes where post sources come from.
type ContentConfig struct {
	Dir  string      `yaml:"dir"`
	Repo *RepoConfig `yaml:"repo,omitempty"`
}

// RepoConfig points at a git repository holding the content directory.
type RepoConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
	Depth  int    `yaml:"depth,omitempty"`
}

// BuildConfig holds per-build behavior flags.
type BuildConfig struct {
	Drafts   bool   `yaml:"drafts"`    // include posts marked draft: true
	Future   bool   `yaml:"future"`    // include posts dated after now
	Sanitize bool   `yaml:"sanitize"`  // run rendered HTML through the UGC sanitize policy
	CacheDir string `yaml:"cache_dir"` // render cache location; empty disables caching
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// TemplatesConfig points at an optional user template override directory.
type TemplatesConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// DaemonConfig configures watch/serve mode.
type DaemonConfig struct {
	Addr            string      `yaml:"addr,omitempty"`
	RebuildInterval string      `yaml:"rebuild_interval,omitempty"` // Go duration string; empty disables scheduled rebuilds
	HistoryDB       string      `yaml:"history_db,omitempty"`       // sqlite path; empty disables build history
	Metrics         bool        `yaml:"metrics"`
	Events          NATSConfig  `yaml:"events"`
}

// NATSConfig configures optional build-event publishing.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// RebuildIntervalDuration parses the configured rebuild interval.
// Returns zero when scheduled rebuilds are disabled.
func (d *DaemonConfig) RebuildIntervalDuration() time.Duration {
	if d.RebuildInterval == "" {
		return 0
	}
	iv, err := time.ParseDuration(d.RebuildInterval)
	if err != nil {
		return 0
	}
	return iv
}

// Load loads configuration from the specified file.
// Environment variables referenced as ${VAR} in the YAML are expanded after
// .env/.env.local files have been loaded (existing process env wins).
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads the first .env file found. godotenv.Load never overrides
// variables already present in the process environment.
func loadEnvFiles() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", p)
			return
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Blog"
	}
	if c.Site.Language == "" {
		c.Site.Language = "en"
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "./posts"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./public"
	}
	if c.Content.Repo != nil && c.Content.Repo.Branch == "" {
		c.Content.Repo.Branch = "main"
	}
	if c.Daemon.Addr == "" {
		c.Daemon.Addr = ":8080"
	}
	if c.Daemon.Events.Enabled && c.Daemon.Events.Subject == "" {
		c.Daemon.Events.Subject = "blog.builds"
	}
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Site: SiteConfig{
			Title:       "My Blog",
			Description: "Notes on things I build",
			BaseURL:     "https://example.com",
			Author:      "Jane Doe",
			Language:    "en",
		},
		Content: ContentConfig{Dir: "./posts"},
		Build:   BuildConfig{CacheDir: ".blogbuilder/cache"},
		Output:  OutputConfig{Directory: "./public"},
		Daemon: DaemonConfig{
			Addr:            ":8080",
			RebuildInterval: "1h",
			HistoryDB:       ".blogbuilder/builds.db",
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
