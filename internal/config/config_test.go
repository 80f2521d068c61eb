package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_CreatesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DirName)
	m := NewManager(dir)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"config.json", ".gitignore"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}

	cfg := m.Get()
	if !cfg.FirstTime {
		t.Error("FirstTime = false on first load")
	}
	if cfg.Worker.PollInterval != 3*time.Second || cfg.Requester.PollInterval != time.Second {
		t.Errorf("poll intervals = %s/%s", cfg.Worker.PollInterval, cfg.Requester.PollInterval)
	}
	if cfg.Requester.Timeout != 30*time.Second {
		t.Errorf("timeout = %s", cfg.Requester.Timeout)
	}
	ch, ok := cfg.Channel("board")
	if !ok || ch.Request != "board.txt" || ch.Response != "board.txt" {
		t.Errorf("board channel = %+v, %v", ch, ok)
	}
	ch, ok = cfg.Channel("wordcount")
	if !ok || ch.Response != "wordcount.out.txt" {
		t.Errorf("wordcount channel = %+v, %v", ch, ok)
	}
	if _, ok := cfg.Channel("chess"); ok {
		t.Error("Channel(chess) found")
	}
}

func TestSave_DurationsAsStrings(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.Save(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(m.Path())
	if err != nil {
		t.Fatal(err)
	}

	var raw struct {
		Worker    map[string]any `json:"worker"`
		Requester map[string]any `json:"requester"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw.Worker["poll_interval"] != "3s" {
		t.Errorf("worker.poll_interval = %v", raw.Worker["poll_interval"])
	}
	if raw.Requester["timeout"] != "30s" {
		t.Errorf("requester.timeout = %v", raw.Requester["timeout"])
	}
}

func TestLoad_RoundTripsSavedChanges(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	m.Get().Worker.PollInterval = 250 * time.Millisecond
	m.Get().Protocol.Codec = "cbor"
	if err := m.Save(); err != nil {
		t.Fatal(err)
	}
	if err := m.CompleteFirstRun(); err != nil {
		t.Fatal(err)
	}

	again := NewManager(dir)
	if err := again.Load(); err != nil {
		t.Fatal(err)
	}
	cfg := again.Get()
	if cfg.FirstTime {
		t.Error("FirstTime survived CompleteFirstRun")
	}
	if cfg.Worker.PollInterval != 250*time.Millisecond {
		t.Errorf("poll interval = %s", cfg.Worker.PollInterval)
	}
	if cfg.Protocol.Codec != "cbor" {
		t.Errorf("codec = %q", cfg.Protocol.Codec)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MINEFILE_REQUESTER_TIMEOUT", "5s")
	t.Setenv("MINEFILE_LOG_LEVEL", "debug")

	m := NewManager(t.TempDir())
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if got := m.Get().Requester.Timeout; got != 5*time.Second {
		t.Errorf("timeout = %s, want 5s", got)
	}
	if got := m.Get().Log.Level; got != "debug" {
		t.Errorf("log level = %q", got)
	}
}

func TestCompleteFirstRun_KeepsFileValues(t *testing.T) {
	t.Setenv("MINEFILE_REQUESTER_TIMEOUT", "5s")
	t.Setenv("MINEFILE_TEST_SHARE", "/srv/share")

	dir := t.TempDir()
	written := `{
  "requester": {"poll_interval": "1s", "timeout": "30s"},
  "channels": [{"kind": "board", "request": "$MINEFILE_TEST_SHARE/board.txt", "response": "$MINEFILE_TEST_SHARE/board.txt"}]
}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(written), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if ch, _ := m.Get().Channel("board"); ch.Request != "/srv/share/board.txt" {
		t.Fatalf("loaded request path = %q", ch.Request)
	}
	if err := m.CompleteFirstRun(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(m.Path())
	if err != nil {
		t.Fatal(err)
	}
	var saved struct {
		FirstTime *bool           `json:"first_time"`
		Requester map[string]any  `json:"requester"`
		Channels  []ChannelConfig `json:"channels"`
	}
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatal(err)
	}
	if saved.FirstTime == nil || *saved.FirstTime {
		t.Error("first_time not cleared in file")
	}
	if saved.Requester["timeout"] != "30s" {
		t.Errorf("env override persisted: timeout = %v", saved.Requester["timeout"])
	}
	if len(saved.Channels) != 1 || saved.Channels[0].Request != "$MINEFILE_TEST_SHARE/board.txt" {
		t.Errorf("expanded path persisted: %+v", saved.Channels)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := `{"protocol": {"framing": "carrier-pigeon"}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	err := NewManager(dir).Load()
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("Load = %v, want invalid config", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"raw framing", func(c *Config) { c.Protocol.Framing = "raw" }, true},
		{"zero worker poll", func(c *Config) { c.Worker.PollInterval = 0 }, false},
		{"negative timeout", func(c *Config) { c.Requester.Timeout = -time.Second }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"missing response", func(c *Config) { c.Channels[0].Response = "" }, false},
		{"duplicate kind", func(c *Config) { c.Channels[1].Kind = c.Channels[0].Kind }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, ok want %v", err, tt.ok)
			}
		})
	}
}

func TestValidate_FillsBlanks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Protocol.Codec = ""
	cfg.Log.Format = ""
	cfg.Log.Outputs = nil
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Protocol.Codec != "json" || cfg.Log.Format != "console" || len(cfg.Log.Outputs) != 1 {
		t.Errorf("blanks not filled: %+v %+v", cfg.Protocol, cfg.Log)
	}
}

func TestExpandString(t *testing.T) {
	t.Setenv("MINEFILE_TEST_HOME", "/srv/mine")

	tests := []struct {
		in, want string
	}{
		{"$MINEFILE_TEST_HOME/board.txt", "/srv/mine/board.txt"},
		{"${MINEFILE_TEST_HOME}/x", "/srv/mine/x"},
		{"plain.txt", "plain.txt"},
		{"$MINEFILE_TEST_UNSET_VAR/y", "$MINEFILE_TEST_UNSET_VAR/y"},
	}
	for _, tt := range tests {
		if got := expandString(tt.in); got != tt.want {
			t.Errorf("expandString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	m := NewManager("/data/.minefile")
	if got := m.Resolve("board.txt"); got != filepath.Join("/data/.minefile", "board.txt") {
		t.Errorf("Resolve(relative) = %q", got)
	}
	if got := m.Resolve("/tmp/board.txt"); got != "/tmp/board.txt" {
		t.Errorf("Resolve(absolute) = %q", got)
	}
}

func TestEnsureGitignore_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(path, []byte("mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewManager(dir).ensureGitignore(); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "mine\n" {
		t.Errorf(".gitignore overwritten: %q", data)
	}
}
