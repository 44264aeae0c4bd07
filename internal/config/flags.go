package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagLenient = flag.Bool("lenient", false, "Sort out-of-order animation keys instead of failing")
	flagDouble  = flag.Bool("double", false, "Emit 64-bit floats when re-encoding")
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
	}
	if *flagLenient {
		cfg.Import.LenientKeyframes = true
	}
	if *flagDouble {
		cfg.Encode.DoublePrecision = true
	}
}
