package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runRemote invokes a remote subcommand's RunE with flags applied and
// returns its output.
func runRemote(t *testing.T, cmd *cobra.Command, flags map[string]string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	defer cmd.SetOut(nil)
	defer cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for k, v := range flags {
		if err := cmd.Flags().Set(k, v); err != nil {
			t.Fatalf("set --%s: %v", k, err)
		}
	}
	err := cmd.RunE(cmd, args)
	return buf.String(), err
}

func TestRemotesConfig_SaveLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadRemotesConfig()
	if err != nil {
		t.Fatalf("load without file: %v", err)
	}
	if cfg.Remotes == nil || cfg.Active != "" {
		t.Fatalf("got %+v, want empty config with non-nil map", cfg)
	}

	cfg.Active = "prod"
	cfg.Remotes["prod"] = Remote{URL: "https://prod.example.com", Token: "tok_abc", NATSURL: "nats://prod:4222", View: "/etc/shipdesk/desk.toml"}
	if err := saveRemotesConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := loadRemotesConfig()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Active != "prod" || got.Remotes["prod"] != cfg.Remotes["prod"] {
		t.Errorf("got %+v, want %+v", got, cfg)
	}

	path, _ := remoteConfigPath()
	for p, want := range map[string]os.FileMode{path: 0o600, filepath.Dir(path): 0o700} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != want {
			t.Errorf("%s mode = %o, want %o", p, info.Mode().Perm(), want)
		}
	}
}

func TestRemotesConfig_Methods(t *testing.T) {
	cfg := RemotesConfig{
		Active: "b",
		Remotes: map[string]Remote{
			"c": {URL: "http://c"},
			"a": {URL: "http://a"},
			"b": {URL: "http://b"},
		},
	}
	if got := strings.Join(cfg.names(), ","); got != "a,b,c" {
		t.Errorf("names() = %q, want %q", got, "a,b,c")
	}

	name, r, err := cfg.resolve("")
	if err != nil || name != "b" || r.URL != "http://b" {
		t.Errorf("resolve(\"\") = %q, %+v, %v; want active remote b", name, r, err)
	}
	if _, _, err := cfg.resolve("zz"); err == nil {
		t.Error("resolve(zz): got nil error, want not found")
	}
	if err := cfg.use("zz"); err == nil || cfg.Active != "b" {
		t.Errorf("use(zz): err=%v active=%q, want error and active unchanged", err, cfg.Active)
	}
	if err := cfg.use("a"); err != nil || cfg.Active != "a" {
		t.Errorf("use(a): err=%v active=%q", err, cfg.Active)
	}
	if err := cfg.remove("a"); err != nil {
		t.Fatal(err)
	}
	if cfg.Active != "" {
		t.Errorf("Active after removing it = %q, want empty", cfg.Active)
	}
	if _, _, err := cfg.resolve(""); err == nil {
		t.Error("resolve with no active remote: got nil error")
	}
	if err := cfg.remove("a"); err == nil {
		t.Error("second remove: got nil error")
	}
}

func TestRemote_Validate(t *testing.T) {
	dir := t.TempDir()
	goodView := filepath.Join(dir, "good.toml")
	badView := filepath.Join(dir, "bad.toml")
	os.WriteFile(goodView, []byte("columns = [\"name\", \"status\"]\n"), 0o644)
	os.WriteFile(badView, []byte("transport = \"carrier-pigeon\"\n"), 0o644)

	tests := []struct {
		name    string
		remote  Remote
		wantErr string
	}{
		{"http", Remote{URL: "http://localhost:8080"}, ""},
		{"https with nats", Remote{URL: "https://desk.example.com", NATSURL: "nats://desk:4222"}, ""},
		{"view", Remote{URL: "http://x", View: goodView}, ""},
		{"no scheme", Remote{URL: "localhost:8080"}, "url:"},
		{"ftp", Remote{URL: "ftp://x"}, "url:"},
		{"bad nats", Remote{URL: "http://x", NATSURL: "http://nats"}, "nats url:"},
		{"bad view", Remote{URL: "http://x", View: badView}, "bad.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.remote.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("got %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct{ tok, fill, want string }{
		{"short", "...", "short"},
		{"tok_very_secret", "...", "tok_very..."},
		{"tok_very_secret", "*", "tok_very*******"},
	}
	for _, tt := range tests {
		if got := maskToken(tt.tok, tt.fill); got != tt.want {
			t.Errorf("maskToken(%q, %q) = %q, want %q", tt.tok, tt.fill, got, tt.want)
		}
	}
}

func TestRemoteCommands(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if out, err := runRemote(t, remoteListCmd, nil); err != nil || !strings.Contains(out, "no remotes configured") {
		t.Fatalf("empty list: %q, %v", out, err)
	}
	if _, err := runRemote(t, remoteAddCmd, map[string]string{"token": "tok_very_secret", "nats": "nats://n:4222"}, "prod", "https://prod.example.com/"); err != nil {
		t.Fatal(err)
	}
	if _, err := runRemote(t, remoteAddCmd, nil, "local", "http://localhost:8080"); err != nil {
		t.Fatal(err)
	}
	if _, err := runRemote(t, remoteAddCmd, nil, "broken", "localhost"); err == nil {
		t.Error("add with schemeless URL: got nil error")
	}
	if _, err := runRemote(t, remoteUseCmd, nil, "local"); err != nil {
		t.Fatal(err)
	}

	out, err := runRemote(t, remoteListCmd, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"* local", "tok_very...", "nats", "https://prod.example.com "} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "broken") {
		t.Errorf("invalid remote was saved:\n%s", out)
	}

	out, err = runRemote(t, remoteShowCmd, nil)
	if err != nil || !strings.Contains(out, "local (active)") {
		t.Errorf("show active: %q, %v", out, err)
	}
	out, err = runRemote(t, remoteShowCmd, nil, "prod")
	if err != nil || !strings.Contains(out, "tok_very*******") || strings.Contains(out, "(active)") {
		t.Errorf("show prod: %q, %v", out, err)
	}

	if _, err := runRemote(t, remoteRemoveCmd, nil, "local"); err != nil {
		t.Fatal(err)
	}
	if _, err := runRemote(t, remoteShowCmd, nil); err == nil {
		t.Error("show after removing active remote: got nil error")
	}
	if _, err := runRemote(t, remoteRemoveCmd, nil, "local"); err == nil {
		t.Error("removing missing remote: got nil error")
	}
}

func TestRemoteAdd_Check(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer healthy.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
	}))
	defer down.Close()

	out, err := runRemote(t, remoteAddCmd, map[string]string{"check": "true"}, "up", healthy.URL)
	if err != nil || !strings.Contains(out, "health: ok") {
		t.Errorf("check healthy: %q, %v", out, err)
	}
	if _, err := runRemote(t, remoteAddCmd, map[string]string{"check": "true"}, "down", down.URL); err == nil {
		t.Error("check unhealthy: got nil error")
	}

	cfg, _ := loadRemotesConfig()
	if _, ok := cfg.Remotes["down"]; ok {
		t.Error("remote failing its health check was saved")
	}
	if _, ok := cfg.Remotes["up"]; !ok {
		t.Error("healthy remote was not saved")
	}
}
