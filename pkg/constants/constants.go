package constants

// CLIName is the binary name used in user-facing output
const CLIName = "fmlint"

// FrontmatterDelimiter marks the start and end of a YAML front matter block
const FrontmatterDelimiter = "---"

// RedactionMarker replaces secret values in all rendered output
const RedactionMarker = "[REDACTED]"

// MaxContextLineWidth is the display width at which context snippet lines are truncated
const MaxContextLineWidth = 80

// DefaultContextLines is the number of source lines shown on each side of an erroring line
const DefaultContextLines = 2

// ConfigFileName is the per-project configuration file discovered by walking parent directories
const ConfigFileName = ".fmlint.toml"

// Environment variables consumed at runtime
const (
	// EnvNoColor disables colorized output when set to any non-empty value
	EnvNoColor = "NO_COLOR"

	// EnvStructuredLogs enables the JSON validation summary on stderr when set to any non-empty value
	EnvStructuredLogs = "FMLINT_STRUCTURED_LOGS"
)

// Exit codes under the granular convention
const (
	// ExitOK means no error-severity findings
	ExitOK = 0

	// ExitFailure is the simple-convention code for any error-severity finding
	ExitFailure = 1

	// ExitSyntaxError reports front matter that could not be parsed at all
	ExitSyntaxError = 2

	// ExitFieldError reports parseable front matter with invalid field content
	ExitFieldError = 3
)
