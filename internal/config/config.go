package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/billie-coop/minefile/internal/channel"
	"github.com/billie-coop/minefile/internal/protocol"
)

// DirName is the data directory created next to where the CLI runs.
const DirName = ".minefile"

// Config is the whole minefile configuration. It is passed explicitly to
// every component; nothing reads it from a global.
type Config struct {
	// FirstTime is true until the welcome text has been shown once
	FirstTime bool `mapstructure:"first_time" json:"first_time"`

	Protocol  ProtocolConfig  `mapstructure:"protocol" json:"protocol"`
	Worker    WorkerConfig    `mapstructure:"worker" json:"worker"`
	Requester RequesterConfig `mapstructure:"requester" json:"requester"`
	Channels  []ChannelConfig `mapstructure:"channels" json:"channels"`
	Journal   JournalConfig   `mapstructure:"journal" json:"journal"`
	Log       LogConfig       `mapstructure:"log" json:"log"`
}

// ProtocolConfig selects how channel files are laid out.
type ProtocolConfig struct {
	// Framing: envelope or raw
	Framing string `mapstructure:"framing" json:"framing"`
	// Codec: json or cbor (envelope framing only)
	Codec string `mapstructure:"codec" json:"codec"`
}

// WorkerConfig tunes the worker daemon.
type WorkerConfig struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	ServedCapacity int           `mapstructure:"served_capacity"`
	// Notify enables fsnotify early wake-ups on top of polling
	Notify   bool          `mapstructure:"notify"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// RequesterConfig tunes the CLI side.
type RequesterConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ChannelConfig is one request/response file pair. Request and Response
// may name the same file. Relative paths resolve against the data
// directory.
type ChannelConfig struct {
	Kind     string `mapstructure:"kind" json:"kind"`
	Request  string `mapstructure:"request" json:"request"`
	Response string `mapstructure:"response" json:"response"`
}

// JournalConfig locates journal entries.
type JournalConfig struct {
	Directory string `mapstructure:"directory" json:"directory"`
	// FilenameFormat is a Go time layout used for entry ids
	FilenameFormat string `mapstructure:"filename_format" json:"filename_format"`
	Extension      string `mapstructure:"extension" json:"extension"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level" json:"level"`
	// Format: console or json
	Format string `mapstructure:"format" json:"format"`
	// Outputs: stdout, stderr, or file paths
	Outputs     []string       `mapstructure:"outputs" json:"outputs"`
	Rotation    RotationConfig `mapstructure:"rotation" json:"rotation"`
	Development bool           `mapstructure:"development" json:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool `mapstructure:"enable" json:"enable"`
	MaxSizeMB  int  `mapstructure:"max_size_mb" json:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups" json:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days" json:"max_age_days"`
	Compress   bool `mapstructure:"compress" json:"compress"`
}

// DefaultConfig returns a config with sensible defaults.
// The board channel reuses one file for both directions, like the legacy
// board.txt worker did; word counts use a separate response file.
func DefaultConfig() *Config {
	return &Config{
		FirstTime: true,
		Protocol: ProtocolConfig{
			Framing: string(protocol.FramingEnvelope),
			Codec:   "json",
		},
		Worker: WorkerConfig{
			PollInterval:   3 * time.Second,
			ServedCapacity: 256,
			Notify:         true,
			Debounce:       50 * time.Millisecond,
		},
		Requester: RequesterConfig{
			PollInterval: time.Second,
			Timeout:      30 * time.Second,
		},
		Channels: []ChannelConfig{
			{Kind: "board", Request: "board.txt", Response: "board.txt"},
			{Kind: "wordcount", Request: "wordcount.txt", Response: "wordcount.out.txt"},
		},
		Journal: JournalConfig{
			Directory:      "journal_entries",
			FilenameFormat: "2006-01-02_15-04-05",
			Extension:      ".json",
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"stderr"},
			Rotation: RotationConfig{
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
	}
}

// Channel returns the channel pair for kind.
func (c *Config) Channel(kind string) (ChannelConfig, bool) {
	for _, ch := range c.Channels {
		if ch.Kind == kind {
			return ch, true
		}
	}
	return ChannelConfig{}, false
}

// workerConfigJSON writes durations as "3s" rather than nanoseconds.
type workerConfigJSON struct {
	PollInterval   string `json:"poll_interval"`
	ServedCapacity int    `json:"served_capacity"`
	Notify         bool   `json:"notify"`
	Debounce       string `json:"debounce"`
}

// MarshalJSON implements json.Marshaler for WorkerConfig
func (w WorkerConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(workerConfigJSON{
		PollInterval:   w.PollInterval.String(),
		ServedCapacity: w.ServedCapacity,
		Notify:         w.Notify,
		Debounce:       w.Debounce.String(),
	})
}

type requesterConfigJSON struct {
	PollInterval string `json:"poll_interval"`
	Timeout      string `json:"timeout"`
}

// MarshalJSON implements json.Marshaler for RequesterConfig
func (r RequesterConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(requesterConfigJSON{
		PollInterval: r.PollInterval.String(),
		Timeout:      r.Timeout.String(),
	})
}

// Manager handles configuration loading and saving
type Manager struct {
	dir        string
	configPath string
	config     *Config
}

// NewManager creates a manager for the data directory dir.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:        dir,
		configPath: filepath.Join(dir, "config.json"),
		config:     DefaultConfig(),
	}
}

// Dir returns the data directory.
func (m *Manager) Dir() string { return m.dir }

// Path returns the config file path.
func (m *Manager) Path() string { return m.configPath }

// Load reads the configuration from disk, creating defaults if needed.
// Environment variables prefixed MINEFILE_ override file values, e.g.
// MINEFILE_WORKER_POLL_INTERVAL=500ms.
func (m *Manager) Load() error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", m.dir, err)
	}

	if err := m.ensureGitignore(); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	if _, err := os.Stat(m.configPath); errors.Is(err, os.ErrNotExist) {
		if err := m.Save(); err != nil {
			return err
		}
	}

	cfg := DefaultConfig()
	v := viper.New()
	v.SetConfigFile(m.configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("MINEFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	m.expandEnvVars(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}

	m.config = cfg
	return nil
}

// Save writes the current configuration to disk, as loaded: env overrides
// and expanded paths included.
func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := channel.WriteFileAtomic(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	return m.config
}

// CompleteFirstRun clears the first-run flag. Only that key is rewritten
// in the file: the loaded config carries env overrides and expanded
// paths that must not be persisted.
func (m *Manager) CompleteFirstRun() error {
	m.config.FirstTime = false

	data, err := os.ReadFile(m.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return m.Save()
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}
	fields["first_time"] = json.RawMessage("false")

	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := channel.WriteFileAtomic(m.configPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Resolve turns a configured path into one usable from the working
// directory: relative paths are taken relative to the data directory.
func (m *Manager) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.dir, path)
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("first_time", cfg.FirstTime)
	v.SetDefault("protocol.framing", cfg.Protocol.Framing)
	v.SetDefault("protocol.codec", cfg.Protocol.Codec)
	v.SetDefault("worker.poll_interval", cfg.Worker.PollInterval)
	v.SetDefault("worker.served_capacity", cfg.Worker.ServedCapacity)
	v.SetDefault("worker.notify", cfg.Worker.Notify)
	v.SetDefault("worker.debounce", cfg.Worker.Debounce)
	v.SetDefault("requester.poll_interval", cfg.Requester.PollInterval)
	v.SetDefault("requester.timeout", cfg.Requester.Timeout)
	v.SetDefault("channels", cfg.Channels)
	v.SetDefault("journal.directory", cfg.Journal.Directory)
	v.SetDefault("journal.filename_format", cfg.Journal.FilenameFormat)
	v.SetDefault("journal.extension", cfg.Journal.Extension)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
}

// Validate checks values and fills blanks.
func (c *Config) Validate() error {
	if _, err := protocol.ParseFraming(c.Protocol.Framing); err != nil {
		return err
	}
	if c.Protocol.Codec == "" {
		c.Protocol.Codec = "json"
	}
	if c.Worker.PollInterval <= 0 {
		return fmt.Errorf("worker.poll_interval must be positive, got %s", c.Worker.PollInterval)
	}
	if c.Requester.PollInterval <= 0 {
		return fmt.Errorf("requester.poll_interval must be positive, got %s", c.Requester.PollInterval)
	}
	if c.Requester.Timeout <= 0 {
		return fmt.Errorf("requester.timeout must be positive, got %s", c.Requester.Timeout)
	}

	seen := make(map[string]bool)
	for i, ch := range c.Channels {
		if ch.Kind == "" || ch.Request == "" || ch.Response == "" {
			return fmt.Errorf("channels[%d]: kind, request and response are required", i)
		}
		if seen[ch.Kind] {
			return fmt.Errorf("channels[%d]: duplicate kind %q", i, ch.Kind)
		}
		seen[ch.Kind] = true
	}

	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}
	return nil
}

// ensureGitignore keeps channel temp files and logs out of git.
func (m *Manager) ensureGitignore() error {
	gitignorePath := filepath.Join(m.dir, ".gitignore")

	if _, err := os.Stat(gitignorePath); !errors.Is(err, os.ErrNotExist) {
		return nil // Already exists
	}

	gitignoreContent := `# minefile data directory .gitignore
#
# Channel files change on every request; only config is worth keeping.

*.tmp
*.log
*.txt

!config.json
!.gitignore

# Journal entries are up to you - uncomment to ignore:
# journal_entries/
`

	return os.WriteFile(gitignorePath, []byte(gitignoreContent), 0o644)
}

// expandEnvVars expands environment variables in path values
func (m *Manager) expandEnvVars(config *Config) {
	for i := range config.Channels {
		config.Channels[i].Request = expandString(config.Channels[i].Request)
		config.Channels[i].Response = expandString(config.Channels[i].Response)
	}
	config.Journal.Directory = expandString(config.Journal.Directory)
	for i := range config.Log.Outputs {
		config.Log.Outputs[i] = expandString(config.Log.Outputs[i])
	}
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandString expands environment variables in a string
// Supports $VAR and ${VAR} syntax; unknown variables are left as written
func expandString(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match
	})
}
