// Package config loads server settings from the environment and table view
// settings from TOML files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// EnvPrefix is prepended to every server environment variable.
const EnvPrefix = "SHIPDESK_"

// Config holds the server settings. Each field is read from EnvPrefix plus
// the name in its comment.
type Config struct {
	DatabaseURL string // DATABASE_URL, required
	GRPCAddr    string // GRPC_ADDR
	HTTPAddr    string // HTTP_ADDR
	NATSURL     string // NATS_URL; empty serves change events over SSE only
	AuthToken   string // AUTH_TOKEN; empty disables auth

	SyncInterval   time.Duration // SYNC_INTERVAL; 0 disables backups
	SyncS3Bucket   string        // SYNC_S3_BUCKET; enables the S3 destination
	SyncS3Endpoint string        // SYNC_S3_ENDPOINT, for MinIO and friends
	SyncS3Region   string        // SYNC_S3_REGION
	SyncS3Key      string        // SYNC_S3_KEY
	SyncGitRepo    string        // SYNC_GIT_REPO; path to a clone, enables git
	SyncGitFile    string        // SYNC_GIT_FILE, relative to the clone
	SyncGitBranch  string        // SYNC_GIT_BRANCH
}

// binding ties one environment variable to a Config field.
type binding struct {
	name string
	def  string
	set  func(c *Config, v string) error
}

func str(f func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*f(c) = v
		return nil
	}
}

var bindings = []binding{
	{"DATABASE_URL", "", str(func(c *Config) *string { return &c.DatabaseURL })},
	{"GRPC_ADDR", ":9090", str(func(c *Config) *string { return &c.GRPCAddr })},
	{"HTTP_ADDR", ":8080", str(func(c *Config) *string { return &c.HTTPAddr })},
	{"NATS_URL", "", str(func(c *Config) *string { return &c.NATSURL })},
	{"AUTH_TOKEN", "", str(func(c *Config) *string { return &c.AuthToken })},
	{"SYNC_INTERVAL", "3m", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		if d < 0 {
			return errors.New("must not be negative")
		}
		c.SyncInterval = d
		return nil
	}},
	{"SYNC_S3_BUCKET", "", str(func(c *Config) *string { return &c.SyncS3Bucket })},
	{"SYNC_S3_ENDPOINT", "", str(func(c *Config) *string { return &c.SyncS3Endpoint })},
	{"SYNC_S3_REGION", "us-east-1", str(func(c *Config) *string { return &c.SyncS3Region })},
	{"SYNC_S3_KEY", "shipdesk/backup.jsonl", str(func(c *Config) *string { return &c.SyncS3Key })},
	{"SYNC_GIT_REPO", "", str(func(c *Config) *string { return &c.SyncGitRepo })},
	{"SYNC_GIT_FILE", "shipdesk.jsonl", str(func(c *Config) *string { return &c.SyncGitFile })},
	{"SYNC_GIT_BRANCH", "main", str(func(c *Config) *string { return &c.SyncGitBranch })},
}

// Load reads the server settings from the process environment.
func Load() (*Config, error) {
	return load(os.Getenv)
}

// load applies each binding to getenv's value, or its default when unset or
// empty.
func load(getenv func(string) string) (*Config, error) {
	c := &Config{}
	for _, b := range bindings {
		v := getenv(EnvPrefix + b.name)
		if v == "" {
			v = b.def
		}
		if v == "" {
			continue
		}
		if err := b.set(c, v); err != nil {
			return nil, fmt.Errorf("%s%s: %w", EnvPrefix, b.name, err)
		}
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("%sDATABASE_URL is required", EnvPrefix)
	}
	return c, nil
}

// Transports a table view can subscribe through.
const (
	TransportNATS = "nats"
	TransportSSE  = "sse"
)

// ViewConfig configures the live table view. It is read from a TOML file:
//
//	columns = ["name", "status", "assigned_agent"]
//	debounce = "250ms"
//	max_concurrent_edits = 4
//	transport = "sse"
//
//	[filter]
//	status = ["Assigned to Agent", "In Review"]
type ViewConfig struct {
	Columns            []string             `toml:"columns"`
	Filter             model.ShipmentFilter `toml:"filter"`
	Debounce           time.Duration        `toml:"debounce"`
	MaxConcurrentEdits int                  `toml:"max_concurrent_edits"`
	Transport          string               `toml:"transport"`
	NATSURL            string               `toml:"nats_url"`
}

// DefaultViewConfig returns the settings used when no view file exists.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		Columns:            append([]string(nil), model.Columns...),
		Debounce:           200 * time.Millisecond,
		MaxConcurrentEdits: 8,
		Transport:          TransportSSE,
	}
}

// LoadViewConfig reads a view file over the defaults. A missing file is not
// an error.
func LoadViewConfig(path string) (ViewConfig, error) {
	vc := DefaultViewConfig()
	if path == "" {
		return vc, nil
	}
	if _, err := toml.DecodeFile(path, &vc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultViewConfig(), nil
		}
		return ViewConfig{}, fmt.Errorf("read view config %s: %w", path, err)
	}
	if err := vc.Validate(); err != nil {
		return ViewConfig{}, fmt.Errorf("view config %s: %w", path, err)
	}
	return vc, nil
}

// Validate checks columns, statuses, and transport.
func (vc ViewConfig) Validate() error {
	if len(vc.Columns) == 0 {
		return errors.New("columns must not be empty")
	}
	for _, c := range vc.Columns {
		if !model.IsColumn(c) {
			return fmt.Errorf("unknown column %q", c)
		}
	}
	for _, s := range vc.Filter.Status {
		if !s.IsValid() {
			return fmt.Errorf("filter: unknown status %q", s)
		}
	}
	if vc.Debounce < 0 {
		return errors.New("debounce must not be negative")
	}
	if vc.MaxConcurrentEdits < 1 {
		return errors.New("max_concurrent_edits must be at least 1")
	}
	switch vc.Transport {
	case TransportNATS:
		if vc.NATSURL == "" {
			return errors.New("transport nats requires nats_url")
		}
	case TransportSSE:
	default:
		return fmt.Errorf("unknown transport %q", vc.Transport)
	}
	return nil
}
