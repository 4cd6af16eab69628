package config

import "github.com/Gobusters/ectoenv"

// Config holds the environment-driven settings for embedding applications.
// Library callers can skip this entirely and construct engine configs
// directly.
type Config struct {
	AppName    string `env:"APP_NAME" env-default:"dahlia"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs bool   `env:"PRETTY_LOGS" env-default:"false"`

	// Processing
	ResolutionWorkerCount int     `env:"RESOLUTION_WORKER_COUNT" env-default:"4"`
	DefaultFuzzyThreshold float64 `env:"DEFAULT_FUZZY_THRESHOLD" env-default:"80"`
	MaxDisplayValues      int     `env:"MAX_DISPLAY_VALUES" env-default:"5"`

	// Quality scoring
	QualityExcellentScore float64 `env:"QUALITY_EXCELLENT_SCORE" env-default:"90"`
	QualityGoodScore      float64 `env:"QUALITY_GOOD_SCORE" env-default:"75"`
	MinResolvedConfidence float64 `env:"MIN_RESOLVED_CONFIDENCE" env-default:"0.7"`
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
