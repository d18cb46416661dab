package main

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ezoic/cart/core/model"
	"github.com/ezoic/cart/internal/config"
	cartErrors "github.com/ezoic/cart/pkg/errors"
	"github.com/ezoic/cart/pkg/log"
	"github.com/ezoic/cart/sklearn/tree"
)

// CLI holds the flags shared by every command.
type CLI struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool

	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	c := &CLI{}
	cmd := &cobra.Command{
		Use:           "cart",
		Short:         "Train, tune, inspect and export a CART decision tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "YAML configuration file (applied over CART_* environment variables)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error (default from config)")
	flags.StringVar(&c.logFormat, "log-format", "", "log format: console or json (default from config)")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored console output")

	cmd.AddCommand(
		c.newRunCommand(),
		c.newPredictCommand(),
		c.newRulesCommand(),
		c.newExportCommand(),
		c.newConfigCommand(),
	)
	return cmd
}

func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Logging.Format = c.logFormat
	}
	if err := log.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return err
	}
	if c.noColor {
		color.NoColor = true
	}
	c.cfg = cfg

	if c.configPath != "" {
		log.GetLoggerWithName("cli").Debug("Configuration loaded", log.ConfigPathKey, c.configPath)
	}
	return nil
}

// modelPath returns path, or the configured model file when path is empty.
func (c *CLI) modelPath(path string) string {
	if path != "" {
		return path
	}
	return c.cfg.Output.Model
}

// loadTree reads a gob model saved by the workflow, or a scikit-learn tree
// exported as JSON when path ends in .json.
func loadTree(path string) (*tree.DecisionTreeClassifier, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		m, err := model.LoadSKLearnModelFromFile(path)
		if err != nil {
			return nil, cartErrors.Wrapf(err, "failed to load model %s", path)
		}
		params, err := model.LoadDecisionTreeParams(m)
		if err != nil {
			return nil, cartErrors.Wrapf(err, "failed to load model %s", path)
		}
		return tree.FromSKLearn(params)
	}

	dt := tree.NewDecisionTreeClassifier()
	if err := model.LoadModel(dt, path); err != nil {
		return nil, cartErrors.Wrapf(err, "failed to load model %s", path)
	}
	if !dt.IsFitted() {
		return nil, cartErrors.NewNotFittedError("DecisionTreeClassifier", "load")
	}
	return dt, nil
}

// parseRow parses a comma-separated feature vector.
func parseRow(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	row := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, cartErrors.Wrapf(err, "row %q: value %d", s, i)
		}
		row[i] = v
	}
	return row, nil
}

func parseRows(values []string) ([][]float64, error) {
	rows := make([][]float64, len(values))
	for i, v := range values {
		row, err := parseRow(v)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}
