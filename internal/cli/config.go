package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/urbanpilot/oddnet/pkg/odd"
	"github.com/urbanpilot/oddnet/pkg/pipeline"
)

// =============================================================================
// Config - File Configuration
// =============================================================================

// Config holds operator configuration loaded from oddnet.toml. Every
// field has a working zero value, so running without a config file is
// fine: analysis thresholds default inside the pipeline, the store is
// in-memory, and the snapshot cache lives under the XDG cache dir.
type Config struct {
	// Listen is the serve command's bind address.
	Listen string `toml:"listen"`

	Analysis AnalysisConfig `toml:"analysis"`
	Network  NetworkConfig  `toml:"network"`

	// Criteria is the predefined compliance criteria set, used when
	// the network mode is "predefined".
	Criteria *odd.Criteria `toml:"criteria"`

	Provider ProviderConfig `toml:"provider"`
	Store    StoreConfig    `toml:"store"`
	Cache    CacheConfig    `toml:"cache"`
}

// AnalysisConfig carries junction analysis thresholds.
type AnalysisConfig struct {
	TrimDist        float64 `toml:"trim_dist"`
	TypeAngleTol    float64 `toml:"type_angle_tol"`
	PositionTol     float64 `toml:"position_tol"`
	LaneWidth       float64 `toml:"lane_width"`
	LeftHandTraffic bool    `toml:"left_hand_traffic"`
	Workers         int     `toml:"workers"`

	SchoolZoneRadius float64 `toml:"school_zone_radius"`
	ParkingLotRadius float64 `toml:"parking_lot_radius"`
}

// NetworkConfig carries network evaluation defaults.
type NetworkConfig struct {
	Mode          string  `toml:"mode"`
	SnapTolerance float64 `toml:"snap_tolerance"`
}

// ProviderConfig selects the road network snapshot source.
type ProviderConfig struct {
	// BaseURL is the HTTP snapshot endpoint. When empty, commands
	// fall back to local snapshot files passed as arguments.
	BaseURL string `toml:"base_url"`
}

// StoreConfig selects the analysis result store.
type StoreConfig struct {
	// Backend is "memory" (default) or "mongo".
	Backend  string `toml:"backend"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// CacheConfig selects the snapshot and network cache.
type CacheConfig struct {
	// Backend is "file" (default), "redis" or "none".
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// loadConfig reads configuration from path. With an empty path it
// searches ./oddnet.toml and then the XDG config dir; a missing file
// simply yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := Config{Listen: ":8080"}

	explicit := path != ""
	if !explicit {
		path = findConfig()
		if path == "" {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// findConfig returns the first existing default config path, or "".
func findConfig() string {
	candidates := []string{"oddnet.toml"}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		candidates = append(candidates, filepath.Join(configHome, appName, "oddnet.toml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", appName, "oddnet.toml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// pipelineOptions maps the config onto pipeline options. Command flags
// are bound on top of the returned value, so flags win over the file.
func (cfg Config) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		TrimDist:         cfg.Analysis.TrimDist,
		TypeAngleTol:     cfg.Analysis.TypeAngleTol,
		PositionTol:      cfg.Analysis.PositionTol,
		LaneWidth:        cfg.Analysis.LaneWidth,
		LeftHandTraffic:  cfg.Analysis.LeftHandTraffic,
		Workers:          cfg.Analysis.Workers,
		SchoolZoneRadius: cfg.Analysis.SchoolZoneRadius,
		ParkingLotRadius: cfg.Analysis.ParkingLotRadius,
		Mode:             odd.Mode(cfg.Network.Mode),
		SnapTolerance:    cfg.Network.SnapTolerance,
		Predefined:       cfg.Criteria,
	}
}
