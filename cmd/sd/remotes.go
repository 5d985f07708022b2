package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/alfredjeanlab/shipdesk/internal/config"
)

// RemotesConfig is the contents of remotes.toml: named server profiles and
// the one in use.
type RemotesConfig struct {
	Active  string            `toml:"active"`
	Remotes map[string]Remote `toml:"remotes"`
}

// Remote is a named server profile.
type Remote struct {
	URL     string `toml:"url"`
	Token   string `toml:"token,omitempty"`
	NATSURL string `toml:"nats_url,omitempty"`
	View    string `toml:"view,omitempty"` // table view TOML file
}

// validate checks URL schemes and that the view file, if any, parses.
func (r Remote) validate() error {
	if err := checkURL(r.URL, "http", "https"); err != nil {
		return fmt.Errorf("url: %w", err)
	}
	if r.NATSURL != "" {
		if err := checkURL(r.NATSURL, "nats", "tls"); err != nil {
			return fmt.Errorf("nats url: %w", err)
		}
	}
	if r.View != "" {
		if _, err := config.LoadViewConfig(r.View); err != nil {
			return err
		}
	}
	return nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%q must be a %s URL", raw, schemes[0])
}

// names returns the remote names in sorted order.
func (c RemotesConfig) names() []string {
	out := make([]string, 0, len(c.Remotes))
	for name := range c.Remotes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// resolve returns the named remote, or the active one when name is empty.
func (c RemotesConfig) resolve(name string) (string, Remote, error) {
	if name == "" {
		name = c.Active
	}
	if name == "" {
		return "", Remote{}, errors.New("no active remote; specify a name or run 'sd remote use <name>'")
	}
	r, ok := c.Remotes[name]
	if !ok {
		return "", Remote{}, fmt.Errorf("remote %q not found", name)
	}
	return name, r, nil
}

func (c *RemotesConfig) use(name string) error {
	if _, _, err := c.resolve(name); err != nil {
		return err
	}
	c.Active = name
	return nil
}

// remove deletes a remote, clearing Active if it pointed there.
func (c *RemotesConfig) remove(name string) error {
	if _, _, err := c.resolve(name); err != nil {
		return err
	}
	delete(c.Remotes, name)
	if c.Active == name {
		c.Active = ""
	}
	return nil
}

// stateDir is ~/.local/state/shipdesk, created 0700 on first use.
func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", "shipdesk")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func remoteConfigPath() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "remotes.toml"), nil
}

func loadRemotesConfig() (RemotesConfig, error) {
	cfg := RemotesConfig{Remotes: map[string]Remote{}}
	path, err := remoteConfigPath()
	if err != nil {
		return cfg, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if cfg.Remotes == nil {
		cfg.Remotes = map[string]Remote{}
	}
	return cfg, nil
}

// saveRemotesConfig writes remotes.toml with 0600 permissions; it holds
// tokens.
func saveRemotesConfig(cfg RemotesConfig) error {
	path, err := remoteConfigPath()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// updateRemotes loads remotes.toml, applies fn and saves the result.
func updateRemotes(fn func(*RemotesConfig) error) error {
	cfg, err := loadRemotesConfig()
	if err != nil {
		return err
	}
	if err := fn(&cfg); err != nil {
		return err
	}
	return saveRemotesConfig(cfg)
}

// activeRemote is the active profile, loaded once per process.
var activeRemote = sync.OnceValue(func() Remote {
	cfg, err := loadRemotesConfig()
	if err != nil || cfg.Active == "" {
		return Remote{}
	}
	return cfg.Remotes[cfg.Active]
})
