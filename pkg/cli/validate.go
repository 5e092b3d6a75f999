// Package cli implements the fmlint commands: batch validation with a
// rendered report and policy-driven exit code, and a watch mode that
// revalidates documents as they change.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/fmlint/fmlint/pkg/config"
	"github.com/fmlint/fmlint/pkg/console"
	"github.com/fmlint/fmlint/pkg/constants"
	"github.com/fmlint/fmlint/pkg/findings"
	"github.com/fmlint/fmlint/pkg/rules"
	"github.com/fmlint/fmlint/pkg/telemetry"
)

// MaxValidateWorkers caps the parallel fan-out regardless of GOMAXPROCS.
const MaxValidateWorkers = 8

// spinnerThreshold is the batch size above which a progress spinner shows.
const spinnerThreshold = 10

// ValidateOptions are the effective settings of one validate run, flags
// already merged over the configuration file.
type ValidateOptions struct {
	Paths           []string
	Parallel        int
	Strict          bool
	Quiet           bool
	Verbose         bool
	Color           string
	GranularExit    bool
	ContextLines    int
	ExpectedVersion string
	SchemaCheck     bool
}

// OptionsFromConfig seeds validate options from a decoded configuration file.
func OptionsFromConfig(cfg config.Config) ValidateOptions {
	return ValidateOptions{
		Color:           cfg.Output.Color,
		ContextLines:    cfg.Output.ContextLines,
		GranularExit:    cfg.Policy.GranularExitCodes,
		ExpectedVersion: cfg.Docs.ExpectedVersion,
		SchemaCheck:     cfg.Docs.Schema,
	}
}

// RunValidate validates every markdown document reachable from the option
// paths and renders one report to stdout. The returned code follows the
// selected exit-code convention; the error is reserved for failures of the
// run itself, not for findings.
func RunValidate(opts ValidateOptions) (int, error) {
	corr := telemetry.NewCorrelationContext()

	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	collector := findings.NewCollector()
	files := discoverFiles(paths, collector)
	contents, docs := readDocuments(files, collector)
	if opts.Verbose {
		fmt.Println(console.FormatCountMessage(fmt.Sprintf("%d markdown files discovered", len(files))))
	}

	formatter := newFormatter(opts)
	validator := rules.New(rules.Options{
		ExpectedVersion: opts.ExpectedVersion,
		SchemaCheck:     opts.SchemaCheck,
	})
	validator.Prescan(docs)

	var spin *console.SpinnerWrapper
	if len(docs) > spinnerThreshold {
		spin = console.NewSpinner(fmt.Sprintf("Validating %d files...", len(docs)))
		spin.Start()
	}
	results := validateDocuments(validator, docs, formatter, opts.Parallel)
	if spin != nil {
		spin.Stop()
	}

	for _, res := range results {
		collector.Merge(res.collector)
	}

	all := collector.All()
	if report := formatter.Render(all, contents); report != "" {
		fmt.Print(report)
	}
	if opts.Verbose && len(all) > 0 {
		fmt.Print(renderTypeSummary(all))
	}
	if len(all) == 0 && !opts.Quiet {
		fmt.Println(console.FormatSuccessMessage(fmt.Sprintf("all files valid (%d checked)", len(docs))))
	}

	collector.LogValidationSummary(corr, nil)
	telemetry.Sync()

	policied := all
	if opts.Strict {
		policied = promoteWarnings(all)
	}
	convention := findings.ConventionSimple
	if opts.GranularExit {
		convention = findings.ConventionGranular
	}
	return findings.ExitCode(convention, policied), nil
}

type fileResult struct {
	path      string
	collector *findings.Collector
}

// validateDocuments fans per-file validation out on a bounded pool. Each file
// gets its own Collector so workers share no mutable state except the
// formatter's locked redactor; results come back sorted by path so merge
// order is deterministic.
func validateDocuments(validator *rules.Validator, docs []rules.Document, formatter *findings.Formatter, parallel int) []fileResult {
	if len(docs) == 0 {
		return nil
	}

	workers := parallel
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxValidateWorkers {
		workers = MaxValidateWorkers
	}

	p := pool.NewWithResults[fileResult]().WithMaxGoroutines(workers)
	for _, doc := range docs {
		doc := doc // capture loop variable
		p.Go(func() fileResult {
			collector := findings.NewCollector()
			validator.ValidateFile(doc, collector, formatter.Redactor())
			return fileResult{path: doc.Path, collector: collector}
		})
	}
	results := p.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].path < results[j].path
	})
	return results
}

// discoverFiles expands the path arguments: directories are walked for
// markdown files, explicit files are taken as-is. A path that cannot be
// reached becomes a finding, never an abort.
func discoverFiles(paths []string, collector *findings.Collector) []string {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			collector.AddError(path, 0, "", findings.TypeInvalidFilePath,
				"path does not exist", "check the path argument")
			continue
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		walkErr := filepath.Walk(path, func(entry string, entryInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if entryInfo.IsDir() {
				// Dot directories hold tooling state, not documents.
				if name := entryInfo.Name(); strings.HasPrefix(name, ".") && entry != path {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(entry, ".md") {
				add(entry)
			}
			return nil
		})
		if walkErr != nil {
			collector.AddError(path, 0, "", findings.TypeInvalidFilePath,
				fmt.Sprintf("cannot walk directory: %v", walkErr), "")
		}
	}

	sort.Strings(files)
	return files
}

// readDocuments loads file contents, turning unreadable files into findings.
func readDocuments(files []string, collector *findings.Collector) (map[string]string, []rules.Document) {
	contents := make(map[string]string, len(files))
	docs := make([]rules.Document, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			collector.AddError(file, 0, "", findings.TypeInvalidFilePath,
				fmt.Sprintf("cannot read file: %v", err), "")
			continue
		}
		contents[file] = string(data)
		docs = append(docs, rules.Document{Path: file, Content: string(data)})
	}
	return contents, docs
}

// newFormatter applies the color mode and context width. NO_COLOR wins over
// everything, including an explicit "always".
func newFormatter(opts ValidateOptions) *findings.Formatter {
	var formatter *findings.Formatter
	switch {
	case os.Getenv(constants.EnvNoColor) != "":
		formatter = findings.NewFormatterWithColor(false)
	case opts.Color == "always":
		formatter = findings.NewFormatterWithColor(true)
	case opts.Color == "never":
		formatter = findings.NewFormatterWithColor(false)
	default:
		formatter = findings.NewFormatter(os.Stdout)
	}
	formatter.SetContextLines(opts.ContextLines)
	return formatter
}

// promoteWarnings copies the findings with every warning raised to error
// severity. Only the exit-code policy sees the promoted set; the report keeps
// the original severities.
func promoteWarnings(all []findings.Finding) []findings.Finding {
	promoted := make([]findings.Finding, len(all))
	copy(promoted, all)
	for i := range promoted {
		promoted[i].Severity = findings.SeverityError
	}
	return promoted
}

// renderTypeSummary builds the per-type count table shown under --verbose.
func renderTypeSummary(all []findings.Finding) string {
	counts := make(map[string]int)
	for _, f := range all {
		counts[f.Type]++
	}

	types := make([]string, 0, len(counts))
	for typ := range counts {
		types = append(types, typ)
	}
	sort.Strings(types)

	rows := make([][]string, 0, len(types))
	for _, typ := range types {
		rows = append(rows, []string{typ, fmt.Sprintf("%d", counts[typ])})
	}

	return console.RenderTable(console.TableConfig{
		Title:     "Findings by type",
		Headers:   []string{"Type", "Count"},
		Rows:      rows,
		ShowTotal: true,
		TotalRow:  []string{"Total", fmt.Sprintf("%d", len(all))},
	})
}
