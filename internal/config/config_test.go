package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should not be empty")
	}
	if cfg.Canvas.MinSeparation != 60 {
		t.Errorf("Canvas.MinSeparation = %v, want 60", cfg.Canvas.MinSeparation)
	}
	if cfg.Canvas.Width != DefaultWidth || cfg.Canvas.Height != DefaultHeight {
		t.Errorf("Canvas = %dx%d, want %dx%d", cfg.Canvas.Width, cfg.Canvas.Height, DefaultWidth, DefaultHeight)
	}
	if cfg.Server.WriteTimeout.Duration() != 30*time.Second {
		t.Errorf("Server.WriteTimeout = %s, want 30s", cfg.Server.WriteTimeout.Duration())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error: %v", err)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	data := `
server:
  addr: "127.0.0.1:8080"
  read_timeout: 5s
canvas:
  min_separation: 40
log:
  level: debug
watch:
  path: ./network_graph.json
`
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout.Duration() != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %s, want 5s", cfg.Server.ReadTimeout.Duration())
	}
	if cfg.Server.IdleTimeout.Duration() != 60*time.Second {
		t.Errorf("Server.IdleTimeout = %s, want default 60s", cfg.Server.IdleTimeout.Duration())
	}
	if cfg.Canvas.MinSeparation != 40 {
		t.Errorf("Canvas.MinSeparation = %v, want 40", cfg.Canvas.MinSeparation)
	}
	if cfg.Canvas.MarkerSize != DefaultMarkerSize {
		t.Errorf("Canvas.MarkerSize = %v, want default", cfg.Canvas.MarkerSize)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Watch.Debounce.Duration() != DefaultDebounce {
		t.Errorf("Watch.Debounce = %s, want default", cfg.Watch.Debounce.Duration())
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad level", "log:\n  level: verbose\n", "Level"},
		{"negative separation", "canvas:\n  min_separation: -5\n", "MinSeparation"},
		{"huge canvas", "canvas:\n  width: 100000\n", "Width"},
		{"bad duration", "server:\n  read_timeout: soon\n", "parse config"},
		{"not yaml", "server: [\n", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}

			_, _, err := LoadFromPath(configPath)
			if err == nil {
				t.Fatal("LoadFromPath() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Canvas.Width = 640
	cfg.Watch.Path = "/srv/topology.yaml"
	cfg.Watch.Debounce = Duration(2 * time.Second)

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}

	if loaded.Canvas.Width != 640 {
		t.Errorf("Canvas.Width = %d, want 640", loaded.Canvas.Width)
	}
	if loaded.Watch.Path != "/srv/topology.yaml" {
		t.Errorf("Watch.Path = %q", loaded.Watch.Path)
	}
	if loaded.Watch.Debounce.Duration() != 2*time.Second {
		t.Errorf("Watch.Debounce = %s, want 2s", loaded.Watch.Debounce.Duration())
	}
}

func TestLoadTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "netcanvas.toml")
	data := `
[server]
addr = ":9090"
write_timeout = "45s"

[canvas]
width = 800

[watch]
path = "graph.json"
debounce = "250ms"
`
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.WriteTimeout.Duration() != 45*time.Second {
		t.Errorf("Server.WriteTimeout = %s, want 45s", cfg.Server.WriteTimeout.Duration())
	}
	if cfg.Canvas.Width != 800 || cfg.Canvas.Height != DefaultHeight {
		t.Errorf("Canvas = %dx%d, want 800x%d", cfg.Canvas.Width, cfg.Canvas.Height, DefaultHeight)
	}
	if cfg.Watch.Debounce.Duration() != 250*time.Millisecond {
		t.Errorf("Watch.Debounce = %s, want 250ms", cfg.Watch.Debounce.Duration())
	}

	saved := filepath.Join(t.TempDir(), "copy.toml")
	if err := cfg.Save(saved); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	out, err := os.ReadFile(saved)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `debounce = "250ms"`) {
		t.Errorf("saved TOML missing debounce:\n%s", out)
	}

	reloaded, _, err := LoadFromPath(saved)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if reloaded.Server.Addr != ":9090" {
		t.Errorf("reloaded Server.Addr = %q", reloaded.Server.Addr)
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	// Should find config in working directory
	found := FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// Explicit path doesn't exist, should fall back
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	found = FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}

	// Existing explicit path wins
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := cfg.Save(explicit); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found = FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %q, want %q", found, explicit)
	}
}

func TestFindConfigPathTOML(t *testing.T) {
	tmpDir := t.TempDir()
	if err := DefaultConfig().Save(filepath.Join(tmpDir, TOMLConfigFileName)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	t.Chdir(tmpDir)
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	found := FindConfigPath()
	if filepath.Base(found) != TOMLConfigFileName {
		t.Fatalf("FindConfigPath() = %q, want %s", found, TOMLConfigFileName)
	}
	if _, _, err := LoadFromPath(found); err != nil {
		t.Errorf("LoadFromPath() error: %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	want := filepath.Join(xdg, ConfigDirName, "config.yaml")
	if got := DefaultConfigPath(); got != want {
		t.Errorf("DefaultConfigPath() = %q, want %q", got, want)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}

func TestSummary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Watch.Path = "graph.json"

	summary := cfg.Summary()

	for _, want := range []string{"Server: :3000", "Canvas: 1024x768", "separation 60", "watching graph.json"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() = %q, missing %q", summary, want)
		}
	}
}
