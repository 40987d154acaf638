package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and wireframes")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagSpeed      = flag.Float64("speed", 0, "Animation speed multiplier")
	flagMuted      = flag.Bool("muted", false, "Start with sound muted")
	flagCharacter  = flag.String("character", "", "Path to character sheet")
	flagHistory    = flag.String("history", "", "Path to roll history database")
	flagServe      = flag.Bool("serve", false, "Expose the local HTTP API")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Graphics.ShowFPS = true
		cfg.Graphics.Wireframes = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagSpeed > 0 {
		cfg.Physics.Speed = *flagSpeed
	}
	if *flagMuted {
		cfg.Audio.Muted = true
	}
	if *flagCharacter != "" {
		cfg.Data.CharacterFile = *flagCharacter
	}
	if *flagHistory != "" {
		cfg.Data.HistoryDB = *flagHistory
	}
	if *flagServe {
		cfg.Server.Enabled = true
	}
}
