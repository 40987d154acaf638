// Package config handles dicebowl configuration loading and management.
package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Config holds all application settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Audio    AudioConfig    `yaml:"audio"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Camera   CameraConfig   `yaml:"camera"`
	Dice     DiceConfig     `yaml:"dice"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width" env:"DICEBOWL_WIDTH"`
	Height     int  `yaml:"height" env:"DICEBOWL_HEIGHT"`
	Fullscreen bool `yaml:"fullscreen" env:"DICEBOWL_FULLSCREEN"`
	VSync      bool `yaml:"vsync" env:"DICEBOWL_VSYNC"`
	FPSLimit   int  `yaml:"fps_limit"`
	ShowFPS    bool `yaml:"show_fps"`
	Wireframes bool `yaml:"wireframes"`
	Shadows    bool `yaml:"shadows" env:"DICEBOWL_SHADOWS"`
	// ShadowMapSize is the side of the sun's depth map, a power of two.
	ShadowMapSize int `yaml:"shadow_map_size"`
}

// AudioConfig holds mixer and collision sound settings.
type AudioConfig struct {
	MasterVolume float32 `yaml:"master_volume" env:"DICEBOWL_MASTER_VOLUME"`
	SFXVolume    float32 `yaml:"sfx_volume"`
	Muted        bool    `yaml:"muted" env:"DICEBOWL_MUTED"`

	DieSound  string `yaml:"die_sound"`
	BowlSound string `yaml:"bowl_sound"`

	QueueSize int           `yaml:"queue_size"`
	MaxVoices int           `yaml:"max_voices"`
	Cooldown  time.Duration `yaml:"cooldown"`

	// MinSpeed is the relative speed below which contacts stay silent.
	MinSpeed          float64 `yaml:"min_speed"`
	IntensityExponent float64 `yaml:"intensity_exponent"`

	Die  SoundProfile `yaml:"die"`
	Bowl SoundProfile `yaml:"bowl"`
}

// SoundProfile shapes the volume and pitch of one collision sound.
type SoundProfile struct {
	BaseVolume     float64 `yaml:"base_volume"`
	VelocityScale  float64 `yaml:"velocity_scale"`
	MinVolume      float64 `yaml:"min_volume"`
	MaxVolume      float64 `yaml:"max_volume"`
	PitchVariation float64 `yaml:"pitch_variation"`
}

// PhysicsConfig holds simulation settings.
type PhysicsConfig struct {
	FixedStep       float64 `yaml:"fixed_step"`
	MaxSubsteps     int     `yaml:"max_substeps"`
	Speed           float64 `yaml:"speed" env:"DICEBOWL_SPEED"`
	Gravity         float64 `yaml:"gravity"`
	SettleThreshold float64 `yaml:"settle_threshold"`
	LinearDamping   float64 `yaml:"linear_damping"`
	AngularDamping  float64 `yaml:"angular_damping"`
	Restitution     float64 `yaml:"restitution"`
	Friction        float64 `yaml:"friction"`
	Density         float64 `yaml:"density"`
	SolverSubsteps  int     `yaml:"solver_substeps"`

	BowlRadius        float64 `yaml:"bowl_radius"`
	BowlTopRadius     float64 `yaml:"bowl_top_radius"`
	WallHeight        float64 `yaml:"wall_height"`
	GroundRestitution float64 `yaml:"ground_restitution"`
	GroundFriction    float64 `yaml:"ground_friction"`
	WallRestitution   float64 `yaml:"wall_restitution"`
	WallFriction      float64 `yaml:"wall_friction"`
}

// CameraConfig holds the viewport camera behavior.
type CameraConfig struct {
	SettleDuration time.Duration `yaml:"settle_duration"`
	OrbitRadius    float64       `yaml:"orbit_radius"`
	OrbitHeight    float64       `yaml:"orbit_height"`
	RotationSpeed  float64       `yaml:"rotation_speed"`
	OrbitLerp      float64       `yaml:"orbit_lerp"`
	FollowLerp     float64       `yaml:"follow_lerp"`
	FOV            float32       `yaml:"fov"`
}

// DiceConfig holds throw planning and pooling settings.
type DiceConfig struct {
	PoolSize        int     `yaml:"pool_size"`
	MinHeight       float64 `yaml:"min_height"`
	MaxHeight       float64 `yaml:"max_height"`
	Spacing         float64 `yaml:"spacing"`
	ThrowRadius     float64 `yaml:"throw_radius"`
	ThrowHeight     float64 `yaml:"throw_height"`
	ThrowVelocity   float64 `yaml:"throw_velocity"`
	VelocityJitter  float64 `yaml:"velocity_jitter"`
	AngularVelocity float64 `yaml:"angular_velocity"`
	// UseTalentColors overrides the appearance file's choice when set.
	UseTalentColors *bool `yaml:"use_talent_colors,omitempty"`
}

// DataConfig holds data file paths.
type DataConfig struct {
	CharacterFile  string `yaml:"character_file" env:"DICEBOWL_CHARACTER"`
	AppearanceFile string `yaml:"appearance_file"`
	HistoryDB      string `yaml:"history_db" env:"DICEBOWL_HISTORY_DB"`
	HistorySize    int    `yaml:"history_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" env:"DICEBOWL_LOG_LEVEL"`
	LogFile string `yaml:"log_file" env:"DICEBOWL_LOG_FILE"`
	// FileFormat is "text" or "json" for the log file.
	FileFormat string `yaml:"file_format" env:"DICEBOWL_LOG_FORMAT"`
}

// ServerConfig holds the local HTTP control surface settings.
type ServerConfig struct {
	// Enabled exposes the HTTP API from the desktop client as well.
	Enabled      bool          `yaml:"enabled" env:"DICEBOWL_SERVE"`
	Addr         string        `yaml:"addr" env:"DICEBOWL_ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	RollTimeout  time.Duration `yaml:"roll_timeout"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:         1280,
			Height:        720,
			VSync:         true,
			Shadows:       true,
			ShadowMapSize: 1024,
		},
		Audio: AudioConfig{
			MasterVolume:      0.8,
			SFXVolume:         1.0,
			DieSound:          "sounds/dice-hit.wav",
			BowlSound:         "sounds/bowl-hit.wav",
			QueueSize:         10,
			MaxVoices:         3,
			Cooldown:          100 * time.Millisecond,
			MinSpeed:          0.5,
			IntensityExponent: 1.5,
			Die: SoundProfile{
				BaseVolume:     0.7,
				VelocityScale:  40,
				MinVolume:      0.05,
				MaxVolume:      1,
				PitchVariation: 0.2,
			},
			Bowl: SoundProfile{
				BaseVolume:     0.8,
				VelocityScale:  35,
				MinVolume:      0.05,
				MaxVolume:      1,
				PitchVariation: 0.1,
			},
		},
		Physics: PhysicsConfig{
			FixedStep:         1.0 / 120.0,
			MaxSubsteps:       3,
			Speed:             1,
			Gravity:           -25,
			SettleThreshold:   0.01,
			LinearDamping:     0.5,
			AngularDamping:    0.5,
			Restitution:       0.3,
			Friction:          0.8,
			Density:           2.0,
			SolverSubsteps:    4,
			BowlRadius:        10,
			BowlTopRadius:     11,
			WallHeight:        4,
			GroundRestitution: 0.1,
			GroundFriction:    1.0,
			WallRestitution:   0.5,
			WallFriction:      0.2,
		},
		Camera: CameraConfig{
			SettleDuration: 5 * time.Second,
			OrbitRadius:    8,
			OrbitHeight:    5,
			RotationSpeed:  0.003,
			OrbitLerp:      0.02,
			FollowLerp:     0.1,
			FOV:            45,
		},
		Dice: DiceConfig{
			PoolSize:        8,
			MinHeight:       6,
			MaxHeight:       8,
			Spacing:         2.5,
			ThrowRadius:     10,
			ThrowHeight:     8,
			ThrowVelocity:   15,
			VelocityJitter:  10,
			AngularVelocity: 15,
		},
		Data: DataConfig{
			CharacterFile:  "character.yaml",
			AppearanceFile: "appearance.yaml",
			HistoryDB:      "dicebowl.db",
			HistorySize:    50,
		},
		Logging: LoggingConfig{
			Level:      "info",
			FileFormat: "text",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RollTimeout:  20 * time.Second,
		},
	}
}

// Validate reports settings that would leave a subsystem unusable.
func (c *Config) Validate() error {
	var err error
	if s := c.Graphics.ShadowMapSize; c.Graphics.Shadows && (s < 256 || s > 8192 || s&(s-1) != 0) {
		err = multierr.Append(err, fmt.Errorf("graphics.shadow_map_size must be a power of two in [256, 8192], got %d", s))
	}
	if f := c.Logging.FileFormat; f != "" && f != "text" && f != "json" {
		err = multierr.Append(err, fmt.Errorf("logging.file_format must be text or json, got %q", f))
	}
	if c.Physics.FixedStep <= 0 {
		err = multierr.Append(err, fmt.Errorf("physics.fixed_step must be positive, got %v", c.Physics.FixedStep))
	}
	if c.Physics.MaxSubsteps < 1 {
		err = multierr.Append(err, fmt.Errorf("physics.max_substeps must be at least 1, got %d", c.Physics.MaxSubsteps))
	}
	if c.Physics.SolverSubsteps < 1 {
		err = multierr.Append(err, fmt.Errorf("physics.solver_substeps must be at least 1, got %d", c.Physics.SolverSubsteps))
	}
	if c.Physics.Speed <= 0 {
		err = multierr.Append(err, fmt.Errorf("physics.speed must be positive, got %v", c.Physics.Speed))
	}
	if c.Physics.SettleThreshold <= 0 {
		err = multierr.Append(err, fmt.Errorf("physics.settle_threshold must be positive, got %v", c.Physics.SettleThreshold))
	}
	if c.Audio.QueueSize < 1 {
		err = multierr.Append(err, fmt.Errorf("audio.queue_size must be at least 1, got %d", c.Audio.QueueSize))
	}
	if c.Audio.MaxVoices < 1 {
		err = multierr.Append(err, fmt.Errorf("audio.max_voices must be at least 1, got %d", c.Audio.MaxVoices))
	}
	if c.Dice.PoolSize < 0 {
		err = multierr.Append(err, fmt.Errorf("dice.pool_size must not be negative, got %d", c.Dice.PoolSize))
	}
	if c.Dice.MaxHeight < c.Dice.MinHeight {
		err = multierr.Append(err, fmt.Errorf("dice.max_height %v below min_height %v", c.Dice.MaxHeight, c.Dice.MinHeight))
	}
	return err
}
