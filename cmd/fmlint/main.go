package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fmlint/fmlint/pkg/cli"
	"github.com/fmlint/fmlint/pkg/config"
	"github.com/fmlint/fmlint/pkg/console"
	"github.com/fmlint/fmlint/pkg/constants"
)

// Build-time variables set by GoReleaser
var (
	version = "dev"
)

// Global flags
var verbose bool

// validateColorMode validates the color flag value
func validateColorMode(mode string) error {
	if mode != "auto" && mode != "always" && mode != "never" {
		return fmt.Errorf("invalid color value '%s'. Must be 'auto', 'always', or 'never'", mode)
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   constants.CLIName,
	Short: "Front matter linter for markdown rule documents",
	Long: `fmlint validates the YAML front matter of markdown rule documents.

Tenet and binding documents open with a --- delimited front matter block
declaring structured metadata. fmlint checks that the block parses, that
required fields exist and are well formed, that ids are unique slugs and
that bindings reference tenets that exist, then reports every finding with
its line number, a source snippet and a suggested fix.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [path...]",
	Short: "Validate the front matter of markdown documents",
	Long: `Validate the front matter of markdown documents.

Directory arguments are walked for *.md files; file arguments are taken
as-is. With no arguments the current directory is validated.

Examples:
  ` + constants.CLIName + ` validate
  ` + constants.CLIName + ` validate docs/tenets docs/bindings
  ` + constants.CLIName + ` validate docs/tenets/clarity.md --strict
  ` + constants.CLIName + ` validate --granular-exit --color never

The exit code is 0 when no errors were found and 1 otherwise; with
--granular-exit it is 2 for front matter that does not parse and 3 for
invalid field content.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := buildValidateOptions(cmd, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			os.Exit(1)
		}
		code, err := cli.RunValidate(opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			os.Exit(1)
		}
		if code != 0 {
			os.Exit(code)
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [path...]",
	Short: "Revalidate documents as they change",
	Long: `Revalidate documents as they change.

Watches the given paths (default the current directory) and revalidates
changed markdown files after a short debounce. Findings render after every
cycle; watch always exits 0 on Ctrl-C.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := buildValidateOptions(cmd, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			os.Exit(1)
		}
		if err := cli.RunWatch(opts); err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			os.Exit(1)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(console.FormatInfoMessage(fmt.Sprintf("%s version %s", constants.CLIName, cli.GetVersion())))
	},
}

// buildValidateOptions merges command flags over the nearest .fmlint.toml.
// Discovery starts from the first path argument so the validated tree's own
// configuration applies even when fmlint runs from elsewhere.
func buildValidateOptions(cmd *cobra.Command, args []string) (cli.ValidateOptions, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
		if info, err := os.Stat(start); err == nil && !info.IsDir() {
			start = filepath.Dir(start)
		}
	}
	cfg, cfgPath, err := config.Discover(start)
	if err != nil {
		return cli.ValidateOptions{}, err
	}
	if verbose && cfgPath != "" {
		fmt.Println(console.FormatVerboseMessage("using configuration from " + cfgPath))
	}

	opts := cli.OptionsFromConfig(cfg)
	opts.Paths = args
	opts.Verbose = verbose

	flags := cmd.Flags()
	opts.Parallel, _ = flags.GetInt("parallel")
	opts.Strict, _ = flags.GetBool("strict")
	opts.Quiet, _ = flags.GetBool("quiet")
	if flags.Changed("color") {
		opts.Color, _ = flags.GetString("color")
	}
	if flags.Changed("granular-exit") {
		opts.GranularExit, _ = flags.GetBool("granular-exit")
	}

	if err := validateColorMode(opts.Color); err != nil {
		return cli.ValidateOptions{}, err
	}
	return opts, nil
}

func init() {
	// Add global verbose flag to root command
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output showing detailed information")

	// Add flags to validate command
	validateCmd.Flags().IntP("parallel", "p", 0, "Number of parallel validation workers (default GOMAXPROCS, capped at 8)")
	validateCmd.Flags().Bool("strict", false, "Treat warnings as errors when computing the exit code")
	validateCmd.Flags().BoolP("quiet", "q", false, "Suppress the success message")
	validateCmd.Flags().String("color", "auto", "Colorize output: auto, always or never")
	validateCmd.Flags().Bool("granular-exit", false, "Exit 2 for syntax errors and 3 for field errors instead of 1")

	// Add flags to watch command
	watchCmd.Flags().IntP("parallel", "p", 0, "Number of parallel validation workers (default GOMAXPROCS, capped at 8)")
	watchCmd.Flags().BoolP("quiet", "q", false, "Suppress per-cycle success messages")
	watchCmd.Flags().String("color", "auto", "Colorize output: auto, always or never")

	// Add all commands to root
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// A project .env may carry NO_COLOR or FMLINT_STRUCTURED_LOGS.
	_ = godotenv.Load()

	// Set version information in the CLI package
	cli.SetVersionInfo(version)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
