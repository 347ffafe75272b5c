package scoring

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Weights are the per-signal multipliers of the final score.
type Weights struct {
	Experience     float64 `yaml:"experience" validate:"gte=0,lte=1"`
	Location       float64 `yaml:"location" validate:"gte=0,lte=1"`
	Category       float64 `yaml:"category" validate:"gte=0,lte=1"`
	TextOverlap    float64 `yaml:"text_overlap" validate:"gte=0,lte=1"`
	PriorView      float64 `yaml:"prior_view" validate:"gte=0,lte=1"`
	ApplicationFit float64 `yaml:"application_fit" validate:"gte=0,lte=1"`
	EmployerView   float64 `yaml:"employer_view" validate:"gte=0,lte=1"`
	Relevance      float64 `yaml:"relevance" validate:"gte=0,lte=1"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Experience + w.Location + w.Category + w.TextOverlap +
		w.PriorView + w.ApplicationFit + w.EmployerView + w.Relevance
}

// LevelBuckets holds the upper bounds, in whole years, of the lower three
// seniority buckets. Anything above MidMaxYears is HighLevel.
type LevelBuckets struct {
	InternshipMaxYears int `yaml:"internship_max_years" validate:"gte=0"`
	EntryMaxYears      int `yaml:"entry_max_years" validate:"gtefield=InternshipMaxYears"`
	MidMaxYears        int `yaml:"mid_max_years" validate:"gtefield=EntryMaxYears"`
}

// Config is the immutable parameter set of a Scorer.
type Config struct {
	Weights Weights      `yaml:"weights"`
	Buckets LevelBuckets `yaml:"buckets"`

	// Experience partial credit for a bucket one step away, and for anything
	// further or an unknown job level.
	AdjacentLevelCredit float64 `yaml:"adjacent_level_credit" validate:"gte=0,lte=1"`
	DistantLevelCredit  float64 `yaml:"distant_level_credit" validate:"gte=0,lte=1"`

	// Category credit when the category does not appear in the bio.
	CategoryDefaultCredit float64 `yaml:"category_default_credit" validate:"gte=0,lte=1"`

	// Raw index relevance is divided by this before clamping.
	RelevanceScale float64 `yaml:"relevance_scale" validate:"gt=0"`

	Threshold float64 `yaml:"threshold" validate:"gte=0,lte=1"`
	TopN      int     `yaml:"top_n" validate:"gte=1"`
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Experience:     0.25,
			Location:       0.20,
			Category:       0.15,
			TextOverlap:    0.05,
			PriorView:      0.10,
			ApplicationFit: 0.10,
			EmployerView:   0.10,
			Relevance:      0.15,
		},
		Buckets: LevelBuckets{
			InternshipMaxYears: 1,
			EntryMaxYears:      3,
			MidMaxYears:        6,
		},
		AdjacentLevelCredit:   0.8,
		DistantLevelCredit:    0.5,
		CategoryDefaultCredit: 0.5,
		RelevanceScale:        10,
		Threshold:             0.30,
		TopN:                  10,
	}
}

var validate = validator.New()

// Validate checks every bound of c.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid scoring config: %w", err)
	}
	return nil
}

// LoadConfig reads a YAML override file on top of DefaultConfig. An empty
// path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read scoring config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse scoring config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
