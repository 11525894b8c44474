// Package config defines the data structures related to configuration and
// includes functions for loading the config and the form facts it points at.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/tal-calculator/internal/calculator"
	"github.com/iwvelando/tal-calculator/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for tal-calculator.
type Configuration struct {
	Calculation CalculationConfig `yaml:"calculation,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
	Output      OutputConfig      `yaml:"output,omitempty"`
	Storage     StorageConfig     `yaml:"storage,omitempty"`
	Geocode     GeocodeConfig     `yaml:"geocode,omitempty"`
}

// CalculationConfig holds the published constants of the reference year.
type CalculationConfig struct {
	ReferenceYear     int     `yaml:"referenceYear,omitempty"`
	CPIRate           float64 `yaml:"cpiRate,omitempty"`
	AmortizationYears int     `yaml:"amortizationYears,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format   string `yaml:"format,omitempty"`   // pretty, csv, json, markdown, html
	Language string `yaml:"language,omitempty"` // fr, en
}

// StorageConfig locates the saved form snapshots.
type StorageConfig struct {
	Path          string        `yaml:"path,omitempty"`
	Key           string        `yaml:"key,omitempty"`
	AutosaveDelay time.Duration `yaml:"autosaveDelay,omitempty"`
}

// GeocodeConfig configures the address lookup service.
type GeocodeConfig struct {
	URL       string `yaml:"url,omitempty"`
	UserAgent string `yaml:"userAgent,omitempty"`
}

// Parameters returns the calculation constants in the form the calculator
// expects.
func (c CalculationConfig) Parameters() calculator.Parameters {
	return calculator.Parameters{
		ReferenceYear:     c.ReferenceYear,
		CPIRate:           c.CPIRate,
		AmortizationYears: c.AmortizationYears,
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("calculation.referenceYear", constants.DefaultReferenceYear)
	v.SetDefault("calculation.cpiRate", constants.DefaultCPIRate)
	v.SetDefault("calculation.amortizationYears", constants.DefaultAmortizationYears)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.language", "fr")
	v.SetDefault("storage.path", constants.DefaultStorageDir)
	v.SetDefault("storage.key", constants.DefaultStorageKey)
	v.SetDefault("storage.autosaveDelay", time.Duration(constants.DefaultAutosaveDelayMillis)*time.Millisecond)
	v.SetDefault("geocode.url", constants.DefaultGeocodeURL)
	v.SetDefault("geocode.userAgent", "tal-calculator")
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &configuration, nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with TAL_ override
// file values, e.g. TAL_CALCULATION_CPIRATE.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data: %w", err)
	}

	return decode(v)
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Configuration {
	conf, err := decode(newViper())
	if err != nil {
		// Defaults are static and always decode.
		panic(err)
	}
	return conf
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Calculation.CPIRate < 0 || c.Calculation.CPIRate > constants.MaxCPIRate {
		warnings = append(warnings, fmt.Sprintf("CPI rate %.4f is outside the expected range [0, %.2f]",
			c.Calculation.CPIRate, constants.MaxCPIRate))
	}
	if c.Calculation.AmortizationYears <= 0 {
		warnings = append(warnings, fmt.Sprintf("amortization period of %d years disables the major repairs section",
			c.Calculation.AmortizationYears))
	}
	if c.Calculation.ReferenceYear != constants.DefaultReferenceYear {
		warnings = append(warnings, fmt.Sprintf("reference year %d differs from the built-in %d rates; make sure the CPI rate was updated",
			c.Calculation.ReferenceYear, constants.DefaultReferenceYear))
	}

	return warnings
}
