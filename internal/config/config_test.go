package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 || cfg.Graphics.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Physics.FixedStep != 1.0/120.0 {
		t.Errorf("expected fixed step 1/120, got %v", cfg.Physics.FixedStep)
	}
	if cfg.Physics.MaxSubsteps != 3 {
		t.Errorf("expected 3 substeps, got %d", cfg.Physics.MaxSubsteps)
	}
	if cfg.Physics.SettleThreshold != 0.01 {
		t.Errorf("expected settle threshold 0.01, got %v", cfg.Physics.SettleThreshold)
	}

	if cfg.Audio.QueueSize != 10 || cfg.Audio.MaxVoices != 3 {
		t.Errorf("expected queue 10 and 3 voices, got %d and %d", cfg.Audio.QueueSize, cfg.Audio.MaxVoices)
	}
	if cfg.Audio.Cooldown != 100*time.Millisecond {
		t.Errorf("expected cooldown 100ms, got %v", cfg.Audio.Cooldown)
	}
	if cfg.Audio.Die.VelocityScale != 40 || cfg.Audio.Bowl.VelocityScale != 35 {
		t.Errorf("unexpected velocity scales %v/%v", cfg.Audio.Die.VelocityScale, cfg.Audio.Bowl.VelocityScale)
	}

	if cfg.Camera.SettleDuration != 5*time.Second {
		t.Errorf("expected settle duration 5s, got %v", cfg.Camera.SettleDuration)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"odd shadow map", func(c *Config) { c.Graphics.ShadowMapSize = 1000 }, "shadow_map_size"},
		{"tiny shadow map", func(c *Config) { c.Graphics.ShadowMapSize = 128 }, "shadow_map_size"},
		{"log format", func(c *Config) { c.Logging.FileFormat = "xml" }, "file_format"},
		{"zero step", func(c *Config) { c.Physics.FixedStep = 0 }, "fixed_step"},
		{"no substeps", func(c *Config) { c.Physics.MaxSubsteps = 0 }, "max_substeps"},
		{"no solver substeps", func(c *Config) { c.Physics.SolverSubsteps = 0 }, "solver_substeps"},
		{"negative speed", func(c *Config) { c.Physics.Speed = -1 }, "speed"},
		{"empty queue", func(c *Config) { c.Audio.QueueSize = 0 }, "queue_size"},
		{"no voices", func(c *Config) { c.Audio.MaxVoices = 0 }, "max_voices"},
		{"inverted heights", func(c *Config) { c.Dice.MaxHeight = 1 }, "max_height"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateShadowsOff(t *testing.T) {
	cfg := Default()
	cfg.Graphics.Shadows = false
	cfg.Graphics.ShadowMapSize = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("shadow map size checked with shadows off: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

audio:
  master_volume: 0.5
  muted: true
  cooldown: 250ms
  die:
    velocity_scale: 20

physics:
  gravity: -9.81
  max_substeps: 5

camera:
  settle_duration: 2s

data:
  character_file: "alrik.yaml"

logging:
  level: "debug"
  log_file: "dicebowl.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen || cfg.Graphics.VSync {
		t.Error("graphics flags not loaded")
	}
	if !cfg.Audio.Muted {
		t.Error("expected muted to be true")
	}
	if cfg.Audio.Cooldown != 250*time.Millisecond {
		t.Errorf("expected cooldown 250ms, got %v", cfg.Audio.Cooldown)
	}
	if cfg.Audio.Die.VelocityScale != 20 {
		t.Errorf("expected die velocity scale 20, got %v", cfg.Audio.Die.VelocityScale)
	}
	if cfg.Audio.Die.BaseVolume != 0.7 {
		t.Errorf("unset fields should keep defaults, got base volume %v", cfg.Audio.Die.BaseVolume)
	}
	if cfg.Physics.Gravity != -9.81 || cfg.Physics.MaxSubsteps != 5 {
		t.Errorf("physics not loaded: %+v", cfg.Physics)
	}
	if cfg.Camera.SettleDuration != 2*time.Second {
		t.Errorf("expected settle duration 2s, got %v", cfg.Camera.SettleDuration)
	}
	if cfg.Data.CharacterFile != "alrik.yaml" {
		t.Errorf("expected character file alrik.yaml, got %s", cfg.Data.CharacterFile)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "dicebowl.log" {
		t.Errorf("logging not loaded: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DICEBOWL_SPEED", "2.5")
	t.Setenv("DICEBOWL_MUTED", "true")
	t.Setenv("DICEBOWL_ADDR", "127.0.0.1:9999")

	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Physics.Speed != 2.5 {
		t.Errorf("expected speed 2.5, got %v", cfg.Physics.Speed)
	}
	if !cfg.Audio.Muted {
		t.Error("expected muted from env")
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("expected addr from env, got %s", cfg.Server.Addr)
	}
	if cfg.Graphics.Width != 1280 {
		t.Errorf("unset env must not touch width, got %d", cfg.Graphics.Width)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("DICEBOWL_WIDTH", "wide")

	err := applyEnv(Default())
	if err == nil {
		t.Fatal("expected error for non-numeric width")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Graphics.ShowFPS || !cfg.Graphics.Wireframes {
					t.Error("expected fps and wireframes with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "speed flag",
			setup: func() { *flagSpeed = 0.5 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Physics.Speed != 0.5 {
					t.Errorf("expected speed 0.5, got %v", cfg.Physics.Speed)
				}
			},
			teardown: func() { *flagSpeed = 0 },
		},
		{
			name: "data flags",
			setup: func() {
				*flagMuted = true
				*flagCharacter = "hero.yaml"
				*flagHistory = "rolls.db"
			},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Audio.Muted {
					t.Error("expected muted")
				}
				if cfg.Data.CharacterFile != "hero.yaml" || cfg.Data.HistoryDB != "rolls.db" {
					t.Errorf("data paths not applied: %+v", cfg.Data)
				}
			},
			teardown: func() {
				*flagMuted = false
				*flagCharacter = ""
				*flagHistory = ""
			},
		},
		{
			name:  "serve flag",
			setup: func() { *flagServe = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Server.Enabled {
					t.Error("expected server enabled")
				}
			},
			teardown: func() { *flagServe = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
physics:
  speed: 3
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("DICEBOWL_HEIGHT", "1000")
	t.Setenv("DICEBOWL_SPEED", "2")
	*flagConfig = configPath
	*flagWidth = 1920
	*flagSpeed = 4
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
		*flagSpeed = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1000 {
		t.Errorf("expected height 1000 from env, got %d", cfg.Graphics.Height)
	}
	if cfg.Physics.Speed != 4 {
		t.Errorf("expected speed 4 from flag, got %v", cfg.Physics.Speed)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("physics:\n  max_substeps: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected validation error")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Physics.Gravity = -12
	off := false
	cfg.Dice.UseTalentColors = &off
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Physics.Gravity != -12 {
		t.Errorf("saved gravity lost: %v", loaded.Physics.Gravity)
	}
	if v := loaded.Dice.UseTalentColors; v == nil || *v {
		t.Errorf("talent color override lost: %v", v)
	}
	if loaded.Camera.SettleDuration != 5*time.Second {
		t.Errorf("duration did not survive save, got %v", loaded.Camera.SettleDuration)
	}
}
