// Package config holds the workflow configuration: built-in defaults, CART_*
// environment overrides and an optional YAML file, validated before use.
package config

import (
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	cartErrors "github.com/ezoic/cart/pkg/errors"
	ms "github.com/ezoic/cart/sklearn/model_selection"
)

// EnvPrefix is the prefix of every environment override. Variables are named
// CART_<SECTION>_<FIELD>, e.g. CART_CV_FOLDS or CART_SEARCH_MAX_DEPTH=1:11.
const EnvPrefix = "CART"

// Config represents the complete workflow configuration
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Baseline BaselineConfig `yaml:"baseline"`
	Holdout  HoldoutConfig  `yaml:"holdout"`
	CV       CVConfig       `yaml:"cv"`
	Search   SearchConfig   `yaml:"search"`
	Curves   CurvesConfig   `yaml:"curves"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DataConfig locates the dataset
type DataConfig struct {
	Path       string `yaml:"path" split_words:"true" default:"datasets/diabetes.csv" validate:"required"`
	Label      string `yaml:"label" split_words:"true" default:"Outcome" validate:"required"`
	SampleSeed uint64 `yaml:"sample_seed" split_words:"true" default:"45"`
}

// BaselineConfig is the model fitted and scored on the full data
type BaselineConfig struct {
	Seed int64 `yaml:"seed" split_words:"true" default:"1"`
}

// HoldoutConfig controls the train/test evaluation
type HoldoutConfig struct {
	TestSize  float64 `yaml:"test_size" split_words:"true" default:"0.30" validate:"gt=0,lt=1"`
	SplitSeed uint64  `yaml:"split_seed" split_words:"true" default:"45"`
	ModelSeed int64   `yaml:"model_seed" split_words:"true" default:"17"`
}

// CVConfig controls cross-validation of the default and the final model
type CVConfig struct {
	Folds     int      `yaml:"folds" split_words:"true" default:"5" validate:"min=2"`
	Scoring   []string `yaml:"scoring" split_words:"true" default:"accuracy,f1,roc_auc" validate:"min=1,dive,scorer"`
	ModelSeed int64    `yaml:"model_seed" split_words:"true" default:"17"`
}

// SearchConfig controls the hyperparameter grid search
type SearchConfig struct {
	MaxDepth        IntRange `yaml:"max_depth" split_words:"true" default:"1:11"`
	MinSamplesSplit IntRange `yaml:"min_samples_split" split_words:"true" default:"2:20"`
	Folds           int      `yaml:"folds" split_words:"true" default:"5" validate:"min=2"`
	NJobs           int      `yaml:"n_jobs" split_words:"true" default:"-1" validate:"min=-1,ne=0"`
	Verbose         int      `yaml:"verbose" split_words:"true" default:"1" validate:"min=0"`
	Scoring         string   `yaml:"scoring" split_words:"true" default:"accuracy" validate:"scorer"`
}

// CurvesConfig controls the validation curves
type CurvesConfig struct {
	Folds           int      `yaml:"folds" split_words:"true" default:"10" validate:"min=2"`
	Scoring         string   `yaml:"scoring" split_words:"true" default:"roc_auc" validate:"scorer"`
	FinalScoring    string   `yaml:"final_scoring" split_words:"true" default:"f1" validate:"scorer"`
	MaxDepth        IntRange `yaml:"max_depth" split_words:"true" default:"1:11"`
	MinSamplesSplit IntRange `yaml:"min_samples_split" split_words:"true" default:"2:20"`
}

// OutputConfig names the artifacts. Empty optional paths disable the artifact.
type OutputConfig struct {
	TreeImage      string `yaml:"tree_image" split_words:"true" default:"cart_final.png"`
	TreeDot        string `yaml:"tree_dot" split_words:"true"`
	Model          string `yaml:"model" split_words:"true" default:"cart_final.gob" validate:"required"`
	ImportancePlot string `yaml:"importance_plot" split_words:"true"`
	ImportanceTop  int    `yaml:"importance_top" split_words:"true" default:"5" validate:"min=1"`
	CurveDir       string `yaml:"curve_dir" split_words:"true"`
	Workbook       string `yaml:"workbook" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" split_words:"true" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" split_words:"true" default:"console" validate:"oneof=json console"`
}

// Load applies, in order, the defaults, CART_* environment variables and the YAML
// file at path (skipped when path is empty), then validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, cartErrors.Wrap(err, "failed to load config from env")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, cartErrors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, cartErrors.Wrapf(err, "failed to parse config file %s", path)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteYAML writes the configuration as YAML.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("scorer", func(fl validator.FieldLevel) bool {
		_, err := ms.GetScorer(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks every field constraint. The first violation is returned as a
// ValidationError naming the field.
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if cartErrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return cartErrors.NewValidationError(fe.Namespace(), "failed '"+fe.ActualTag()+"' check", fe.Value())
	}
	return cartErrors.Wrap(err, "config validation failed")
}
