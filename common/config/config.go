package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"os"
	"strconv"
	"strings"
	"time"
	"vincit.fi/photo-frame/common/logger"
)

const (
	DefaultConfigFile          = "configs/config.yaml"
	DefaultDelay               = 10 * time.Second
	DefaultUpdateInterval      = time.Hour
	DefaultCategories          = "all"
	DefaultBackend             = "sql"
	DefaultPhotosDir           = "__photo_frame/photos"
	DefaultCategoriesDir       = "__photo_frame/categories"
	DefaultLegacyCategoriesDir = "configs/categories"
	DefaultDatabase            = "__photo_frame/db/tags.db"
	DefaultLabelsCacheDir      = "__photo_frame/rekognition"
	DefaultFeedBaseURL         = "https://pixabay.com/api/"
	DefaultMaxPhotos           = 3
	DefaultOrder               = "popular"
	DefaultImageType           = "photo"
	DefaultMinConfidence       = 70.0
	DefaultHttpPort            = 8080
	DefaultLogLevel            = "INFO"

	envPrefix = "PHOTOFRAME_"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel string  `yaml:"log_level"`
	Frame    Frame   `yaml:"frame"`
	Storage  Storage `yaml:"storage"`
	Feed     Feed    `yaml:"feed"`
	Labels   Labels  `yaml:"labels"`
	Http     Http    `yaml:"http"`
	Cast     Cast    `yaml:"cast"`
}

type Frame struct {
	Delay          time.Duration `yaml:"delay"`
	ShowTitles     bool          `yaml:"show_titles"`
	Categories     string        `yaml:"categories"`
	UpdateInterval time.Duration `yaml:"update_interval"`
	MonitorMemory  bool          `yaml:"monitor_memory"`
}

type Storage struct {
	Backend             string `yaml:"backend"`
	PhotosDir           string `yaml:"photos_dir"`
	CategoriesDir       string `yaml:"categories_dir"`
	LegacyCategoriesDir string `yaml:"legacy_categories_dir"`
	Database            string `yaml:"database"`
}

type Feed struct {
	BaseURL       string `yaml:"base_url"`
	Token         string `yaml:"token"`
	MaxPhotos     int    `yaml:"max_photos"`
	Order         string `yaml:"order"`
	ImageType     string `yaml:"image_type"`
	Category      string `yaml:"category"`
	EditorsChoice bool   `yaml:"editors_choice"`
}

type Labels struct {
	Enabled       bool    `yaml:"enabled"`
	CacheDir      string  `yaml:"cache_dir"`
	MinConfidence float64 `yaml:"min_confidence"`
	Region        string  `yaml:"region"`
}

type Http struct {
	Enabled        bool     `yaml:"enabled"`
	Port           int      `yaml:"port"`
	Secret         string   `yaml:"secret"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Cast struct {
	Enabled        bool   `yaml:"enabled"`
	Device         string `yaml:"device"`
	ShowBackground bool   `yaml:"show_background"`
}

func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Frame: Frame{
			Delay:          DefaultDelay,
			ShowTitles:     true,
			Categories:     DefaultCategories,
			UpdateInterval: DefaultUpdateInterval,
		},
		Storage: Storage{
			Backend:             DefaultBackend,
			PhotosDir:           DefaultPhotosDir,
			CategoriesDir:       DefaultCategoriesDir,
			LegacyCategoriesDir: DefaultLegacyCategoriesDir,
			Database:            DefaultDatabase,
		},
		Feed: Feed{
			BaseURL:   DefaultFeedBaseURL,
			MaxPhotos: DefaultMaxPhotos,
			Order:     DefaultOrder,
			ImageType: DefaultImageType,
		},
		Labels: Labels{
			CacheDir:      DefaultLabelsCacheDir,
			MinConfidence: DefaultMinConfidence,
		},
		Http: Http{
			Port: DefaultHttpPort,
		},
		Cast: Cast{
			ShowBackground: true,
		},
	}
}

// Load reads the YAML file at path on top of the defaults and then applies
// PHOTOFRAME_* environment variables, including those from a .env file in
// the working directory. A missing file is an error only when mustExist is
// set.
func Load(path string, mustExist bool) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logger.Debug.Printf("Loaded environment from .env")
	}

	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if errors.Is(err, os.ErrNotExist) && !mustExist {
				logger.Warn.Printf("Config file '%s' not found, using defaults", path)
			} else {
				return nil, err
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, path, err)
	}
	logger.Info.Printf("Loaded config from '%s'", path)
	return nil
}

func (s *Config) applyEnv() {
	s.LogLevel = getenv("LOG_LEVEL", s.LogLevel)
	s.Frame.Categories = getenv("CATEGORIES", s.Frame.Categories)
	s.Frame.Delay = getDuration("DELAY", s.Frame.Delay)
	s.Storage.Backend = getenv("STORAGE_BACKEND", s.Storage.Backend)
	s.Storage.Database = getenv("DATABASE", s.Storage.Database)
	s.Feed.BaseURL = getenv("FEED_BASE_URL", s.Feed.BaseURL)
	s.Feed.Token = getenv("FEED_TOKEN", s.Feed.Token)
	s.Http.Port = getInt("HTTP_PORT", s.Http.Port)
	s.Http.Secret = getenv("HTTP_SECRET", s.Http.Secret)
	s.Labels.Region = getenv("LABELS_REGION", s.Labels.Region)
}

func (s *Config) Validate() error {
	if s.Frame.Delay <= 0 {
		return fmt.Errorf("%w: frame.delay must be positive, was %s", ErrInvalidConfig, s.Frame.Delay)
	}
	if s.Frame.UpdateInterval < 0 {
		return fmt.Errorf("%w: frame.update_interval must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(strings.TrimSpace(s.Storage.Backend)) {
	case "json", "sql":
	default:
		return fmt.Errorf("%w: unknown storage.backend '%s'", ErrInvalidConfig, s.Storage.Backend)
	}
	if s.Feed.MaxPhotos < 0 {
		return fmt.Errorf("%w: feed.max_photos must not be negative", ErrInvalidConfig)
	}
	if s.Labels.MinConfidence < 0 || s.Labels.MinConfidence > 100 {
		return fmt.Errorf("%w: labels.min_confidence must be between 0 and 100", ErrInvalidConfig)
	}
	return nil
}

func getenv(key string, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		logger.Warn.Printf("Ignoring invalid %s%s: '%s'", envPrefix, key, v)
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(envPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		logger.Warn.Printf("Ignoring invalid %s%s: '%s'", envPrefix, key, v)
	}
	return def
}
