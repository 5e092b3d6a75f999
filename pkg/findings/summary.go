package findings

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fmlint/fmlint/pkg/console"
	"github.com/fmlint/fmlint/pkg/telemetry"
)

// LogValidationSummary emits one structured record with counts by severity,
// taxonomy type and file. The record is opt-in via FMLINT_STRUCTURED_LOGS
// and best-effort: a sink failure is reported on stderr and never propagates
// or alters collected findings.
func (c *Collector) LogValidationSummary(corr telemetry.CorrelationContext, logger *zap.Logger) {
	if !telemetry.Enabled() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("could not write validation summary: %v", r)))
		}
	}()

	if logger == nil {
		logger = telemetry.Logger()
	}

	errors := 0
	warnings := 0
	byType := make(map[string]int)
	byFile := make(map[string]int)
	for _, f := range c.findings {
		if f.Severity == SeverityError {
			errors++
		} else {
			warnings++
		}
		byType[f.Type]++
		if f.File != "" {
			byFile[f.File]++
		}
	}

	logger.Info("validation_summary",
		zap.String("correlation_id", corr.ID),
		zap.Int64("duration_ms", time.Since(corr.Start).Milliseconds()),
		zap.Int("errors", errors),
		zap.Int("warnings", warnings),
		zap.Int("files", len(byFile)),
		zap.Any("by_type", byType),
		zap.Any("by_file", byFile),
	)
}
