// Package constants provides shared constants for the tal-calculator application.
package constants

// Reference-year defaults. These are the TAL 2026 published values and are
// only used when the configuration does not override them.
const (
	// DefaultReferenceYear is the year the published rates apply to
	DefaultReferenceYear = 2026

	// DefaultCPIRate is the annual average CPI variation for Quebec
	DefaultCPIRate = 0.031

	// DefaultAmortizationYears is the amortization period for major repairs
	DefaultAmortizationYears = 20
)

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxCPIRate is the highest CPI rate accepted without a warning
	MaxCPIRate = 0.2
)

// Form constants
const (
	// MaxRepairLines is the maximum number of major repair lines per form
	MaxRepairLines = 30

	// DefaultDwellingsConcerned is the dwelling count given to a new line
	DefaultDwellingsConcerned = 1
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatMarkdown is the summary document as Markdown
	OutputFormatMarkdown = "markdown"

	// OutputFormatHTML is the summary document as a standalone HTML page
	OutputFormatHTML = "html"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "TAL"
)

// Storage defaults
const (
	// DefaultStorageDir is where form snapshots are written
	DefaultStorageDir = ".tal-calculator"

	// DefaultStorageKey is the key the in-progress form is saved under
	DefaultStorageKey = "corpiq-calculateur-loyer-2026"

	// DefaultAutosaveDelayMillis is the debounce delay before an autosave
	DefaultAutosaveDelayMillis = 500
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultReadTimeout bounds reading a whole request
	DefaultReadTimeout = "15s"

	// DefaultShutdownTimeout bounds draining in-flight requests on shutdown
	DefaultShutdownTimeout = "10s"
)

// Address lookup defaults
const (
	// DefaultGeocodeURL is the Nominatim search endpoint
	DefaultGeocodeURL = "https://nominatim.openstreetmap.org/search"

	// GeocodeMinQueryLength is the shortest query sent to the lookup service
	GeocodeMinQueryLength = 2

	// GeocodeResultLimit is the number of suggestions requested
	GeocodeResultLimit = 6
)
