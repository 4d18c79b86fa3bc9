package config

import (
	"flag"
	gomath "math"
)

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagLat    = flag.Float64("lat", nan(), "Camera latitude in degrees")
	flagLon    = flag.Float64("lon", nan(), "Camera longitude in degrees")
	flagElev   = flag.Float64("elev", 0, "Camera elevation in meters")
	flagBudget = flag.Int("budget", 0, "Split/merge budget per tick")
	flagTicks  = flag.Int("ticks", 0, "Number of simulation ticks")
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
	if !gomath.IsNaN(*flagLat) {
		cfg.Camera.Lat = *flagLat
	}
	if !gomath.IsNaN(*flagLon) {
		cfg.Camera.Lon = *flagLon
	}
	if *flagElev > 0 {
		cfg.Camera.Elev = *flagElev
	}
	if *flagBudget > 0 {
		cfg.Engine.Budget = *flagBudget
	}
	if *flagTicks > 0 {
		cfg.Sim.Ticks = *flagTicks
	}
}

func nan() float64 { return gomath.NaN() }
