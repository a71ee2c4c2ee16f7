package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FLASHIZ_REVIEW_NEW_PER_DAY.
const EnvPrefix = "FLASHIZ"

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	DBPath   string `mapstructure:"db_path"`   // empty means the XDG default
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error
	LogFile  string `mapstructure:"log_file"`  // empty means the XDG state default
	Locale   string `mapstructure:"locale"`    // BCP 47 tag for UI messages

	Review Review `mapstructure:"review"`
	Media  Media  `mapstructure:"media"`
	Sync   Sync   `mapstructure:"sync"`
}

// Review tunes queue building and the review session.
type Review struct {
	NewPerDay      int           `mapstructure:"new_per_day"`
	ReviewsPerDay  int           `mapstructure:"reviews_per_day"`
	LearnAhead     time.Duration `mapstructure:"learn_ahead"`
	LeechThreshold int           `mapstructure:"leech_threshold"`
	LeechAction    string        `mapstructure:"leech_action"` // "tag" or "suspend"

	// TagScanLimit caps how many notes are scanned when collecting the
	// tags used in a deck.
	TagScanLimit int `mapstructure:"tag_scan_limit"`

	Autoplay bool `mapstructure:"autoplay"`
}

// Media configures where media files live and how they are played.
type Media struct {
	Dir string `mapstructure:"dir"` // empty means "media" next to the database

	// Player is the command used for audio/video cues. The cue's file path
	// is appended as the final argument.
	Player []string `mapstructure:"player"`
}

// Sync holds the account used for sync status probing.
type Sync struct {
	Username string `mapstructure:"username"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel: "info",
		Locale:   "en",
		Review: Review{
			NewPerDay:      20,
			ReviewsPerDay:  200,
			LearnAhead:     20 * time.Minute,
			LeechThreshold: 8,
			LeechAction:    "tag",
			TagScanLimit:   10000,
			Autoplay:       true,
		},
		Media: Media{
			Player: []string{"mpv", "--no-video", "--really-quiet"},
		},
	}
}

// Load reads configuration from path (or the default search locations when
// path is empty), a .env file in the working directory, and FLASHIZ_*
// environment variables.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the review session cannot work with.
func (c *Config) Validate() error {
	if c.Review.NewPerDay < 0 || c.Review.ReviewsPerDay < 0 {
		return fmt.Errorf("config: daily limits must not be negative")
	}
	if c.Review.LeechThreshold < 1 {
		return fmt.Errorf("config: review.leech_threshold must be at least 1")
	}
	switch c.Review.LeechAction {
	case "tag", "suspend":
	default:
		return fmt.Errorf("config: review.leech_action must be \"tag\" or \"suspend\", got %q", c.Review.LeechAction)
	}
	if c.Review.TagScanLimit < 1 {
		return fmt.Errorf("config: review.tag_scan_limit must be positive")
	}
	return nil
}

// MediaDir resolves the media directory for the given database path.
func (c *Config) MediaDir(dbPath string) string {
	if c.Media.Dir != "" {
		return c.Media.Dir
	}
	return filepath.Join(filepath.Dir(dbPath), "media")
}

// Dir returns $XDG_CONFIG_HOME/flashiz, falling back to ~/.config/flashiz.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "flashiz"), nil
}

// DefaultLogPath returns $XDG_STATE_HOME/flashiz/flashiz.log.
func DefaultLogPath() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "flashiz", "flashiz.log"), nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("locale", d.Locale)

	v.SetDefault("review.new_per_day", d.Review.NewPerDay)
	v.SetDefault("review.reviews_per_day", d.Review.ReviewsPerDay)
	v.SetDefault("review.learn_ahead", d.Review.LearnAhead)
	v.SetDefault("review.leech_threshold", d.Review.LeechThreshold)
	v.SetDefault("review.leech_action", d.Review.LeechAction)
	v.SetDefault("review.tag_scan_limit", d.Review.TagScanLimit)
	v.SetDefault("review.autoplay", d.Review.Autoplay)

	v.SetDefault("media.dir", d.Media.Dir)
	v.SetDefault("media.player", d.Media.Player)

	v.SetDefault("sync.username", d.Sync.Username)
}
