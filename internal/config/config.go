// Package config loads .hotelcritic.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dshills/hotelcritic/internal/lexicon"
	"github.com/dshills/hotelcritic/internal/llm"
	"github.com/dshills/hotelcritic/internal/prompt"
	"github.com/dshills/hotelcritic/internal/rating"
	"github.com/dshills/hotelcritic/internal/reply"
	"github.com/dshills/hotelcritic/internal/review"
)

// FileName is the configuration file looked up from the working directory.
const FileName = ".hotelcritic.yaml"

// maxWalk bounds how many parent directories Load searches.
const maxWalk = 10

// Default values. New() is the only place they are applied.
const (
	DefaultHotelName     = "中油花园酒店"
	DefaultHotelLocation = "市中心繁华地段"

	DefaultTemperature = 0.7
	DefaultRetries     = 3
	DefaultRedisAddr   = "localhost:6379"
)

// EnvRedisAddr overrides Cache.RedisAddr.
const EnvRedisAddr = "HOTELCRITIC_REDIS_ADDR"

// HotelConfig identifies the property. Blank values fall back to
// placeholders when used.
type HotelConfig struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

// AnalysisConfig controls dimension analysis.
type AnalysisConfig struct {
	Lexicon   string  `yaml:"lexicon" validate:"required"`
	Excellent float64 `yaml:"excellent" validate:"gt=0,lte=5"`
	High      float64 `yaml:"high" validate:"gt=0,ltefield=Excellent"`
}

// AggregateConfig controls review-list aggregation.
type AggregateConfig struct {
	Policy       string   `yaml:"policy" validate:"oneof=inverse-day inverse-day-rank exponential"`
	Lambda       float64  `yaml:"lambda" validate:"gte=0"`
	Offset       float64  `yaml:"offset" validate:"gte=0,lt=5"`
	ScoreColumns []string `yaml:"score_columns" validate:"min=1,dive,required"`
	DateColumns  []string `yaml:"date_columns" validate:"min=1,dive,required"`
	RankColumns  []string `yaml:"rank_columns" validate:"dive,required"`
}

// ReplyConfig controls reply drafting.
type ReplyConfig struct {
	Model         string  `yaml:"model"`
	Temperature   float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens     int     `yaml:"max_tokens" validate:"gt=0"`
	MaxWords      int     `yaml:"max_words" validate:"gt=0"`
	MaxChars      int     `yaml:"max_chars" validate:"gt=0"`
	Workers       int     `yaml:"workers" validate:"gte=1,lte=64"`
	RatePerSecond float64 `yaml:"rate_per_second" validate:"gte=0"`
	Burst         int     `yaml:"burst" validate:"gte=1"`
	Retries       int     `yaml:"retries" validate:"gte=1,lte=10"`
	Redact        bool    `yaml:"redact"`
	Revise        bool    `yaml:"revise"`
}

// CacheConfig controls the optional Redis reply cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	RedisAddr string        `yaml:"redis_addr" validate:"omitempty,hostname_port"`
	TTL       time.Duration `yaml:"ttl" validate:"gt=0"`
}

// Config is the top-level configuration loaded from .hotelcritic.yaml.
type Config struct {
	Hotel     HotelConfig     `yaml:"hotel"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Aggregate AggregateConfig `yaml:"aggregate"`
	Reply     ReplyConfig     `yaml:"reply"`
	Cache     CacheConfig     `yaml:"cache"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New returns a Config with all defaults populated.
func New() *Config {
	return &Config{
		Hotel: HotelConfig{
			Name:     DefaultHotelName,
			Location: DefaultHotelLocation,
		},
		Analysis: AnalysisConfig{
			Lexicon:   lexicon.DefaultName,
			Excellent: review.DefaultExcellent,
			High:      review.DefaultHigh,
		},
		Aggregate: AggregateConfig{
			Policy:       rating.PolicyInverseDay,
			Lambda:       rating.DefaultDecayLambda,
			Offset:       rating.DefaultCalibrationOffset,
			ScoreColumns: []string{"评分", "score", "rating"},
			DateColumns:  []string{"日期", "date", "入住日期"},
			RankColumns:  []string{"排名", "rank"},
		},
		Reply: ReplyConfig{
			Temperature:   DefaultTemperature,
			MaxTokens:     llm.DefaultMaxTokens,
			MaxWords:      prompt.DefaultMaxWords,
			MaxChars:      prompt.DefaultMaxChars,
			Workers:       reply.DefaultWorkers,
			RatePerSecond: llm.DefaultRatePerSecond,
			Burst:         llm.DefaultBurst,
			Retries:       DefaultRetries,
			Redact:        true,
		},
		Cache: CacheConfig{
			RedisAddr: DefaultRedisAddr,
			TTL:       llm.DefaultCacheTTL,
		},
	}
}

// Load finds .hotelcritic.yaml by walking up from startDir (max 10 levels)
// and decodes it over the defaults. Without a file the defaults are
// returned. Environment overrides apply last, then the result is validated.
func Load(startDir string) (*Config, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", FileName, err)
		}
	}

	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		cfg.Cache.RedisAddr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config.Validate: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid %s: %s", FileName, strings.Join(msgs, "; "))
}

// HotelInfo returns the configured hotel as a report value.
func (c *Config) HotelInfo() review.Hotel {
	return review.Hotel{Name: c.Hotel.Name, Location: c.Hotel.Location}
}

// Thresholds returns the configured tier boundaries.
func (c *Config) Thresholds() review.Thresholds {
	return review.Thresholds{Excellent: c.Analysis.Excellent, High: c.Analysis.High}
}

// findConfigFile walks up from dir looking for the config file. Returns
// os.ErrNotExist if none is found.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < maxWalk; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}
