package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/iwvelando/tal-calculator/internal/calculator"
	"github.com/iwvelando/tal-calculator/internal/config"
	"github.com/iwvelando/tal-calculator/internal/export"
	"github.com/iwvelando/tal-calculator/internal/i18n"
	"github.com/iwvelando/tal-calculator/internal/logging"
	"github.com/iwvelando/tal-calculator/internal/store"
	"github.com/iwvelando/tal-calculator/pkg/constants"
	"github.com/iwvelando/tal-calculator/pkg/form"
	"github.com/iwvelando/tal-calculator/pkg/output"
	"github.com/iwvelando/tal-calculator/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, time.Now); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": %q}\n", err.Error())
		os.Exit(1)
	}
}

// loadConfiguration falls back to the built-in defaults when the default
// config file is absent. An explicitly named file must exist.
func loadConfiguration(path string, explicit bool) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(path)
	if err == nil {
		return conf, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return config.Defaults(), nil
	}
	return nil, fmt.Errorf("failed to load configuration at %s: %w", path, err)
}

func run(args []string, stdout io.Writer, now func() time.Time) error {
	flags := flag.NewFlagSet("tal-calculator", flag.ContinueOnError)
	configLocation := flags.String("config", constants.DefaultConfigFile, "path to configuration file")
	factsLocation := flags.String("facts", "", "path to a YAML or JSON facts file; defaults to the saved form")
	outputFormatFlag := flags.String("output-format", "", "type of output override: pretty, csv, json, markdown, html")
	langFlag := flags.String("lang", "", "output language override: fr, en")
	logLevel := flags.String("log-level", "", "log level override (debug, info, warn, error)")
	save := flags.Bool("save", false, "save the facts as the current form after computing")
	if err := flags.Parse(args); err != nil {
		return err
	}

	// A missing .env file is the common case.
	_ = godotenv.Load()

	explicitConfig := false
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicitConfig = true
		}
	})
	conf, err := loadConfiguration(*configLocation, explicitConfig)
	if err != nil {
		return err
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	langName := conf.Output.Language
	if *langFlag != "" {
		langName = *langFlag
	}
	lang, err := i18n.Parse(langName)
	if err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	var fileStore *store.FileStore
	if *save || *factsLocation == "" {
		fileStore, err = store.NewFileStore(conf.Storage.Path, logger)
		if err != nil {
			return err
		}
	}

	var facts form.Facts
	if *factsLocation != "" {
		facts, err = config.LoadFacts(*factsLocation)
	} else {
		facts, err = fileStore.Load(conf.Storage.Key)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no facts file given and no saved form under %q: %w", conf.Storage.Key, err)
		}
	}
	if err != nil {
		return err
	}

	for _, warning := range validation.ValidateFacts(facts) {
		logger.Warn("Facts warning: "+warning,
			zap.String("op", "main"),
		)
	}

	params := conf.Calculation.Parameters()
	values := calculator.CalculateAll(logger, params, facts)

	if *save {
		if err := fileStore.Save(conf.Storage.Key, facts); err != nil {
			return err
		}
		logger.Info("form saved",
			zap.String("op", "main"),
			zap.String("key", conf.Storage.Key),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		return output.PrettyFormat(stdout, lang, facts, values)
	case constants.OutputFormatCSV:
		return output.CsvFormat(stdout, lang, facts, values)
	case constants.OutputFormatJSON:
		return output.JSONFormat(stdout, params, facts, values)
	case constants.OutputFormatMarkdown:
		_, err = io.WriteString(stdout, export.Markdown(facts, values, lang, now()))
		return err
	case constants.OutputFormatHTML:
		page, err := export.HTML(facts, values, lang, now())
		if err != nil {
			return err
		}
		_, err = io.WriteString(stdout, page)
		return err
	}
	return nil
}
