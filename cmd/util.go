package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

var (
	greenCheck = color.GreenString("✔")
	redCross   = color.RedString("✖")

	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
)

// BeQuietError signals that the command already printed the failure and
// Execute should not log it again.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "exiting due to previous error"
}

// logError reports a remote call failure with its correlation ID and
// returns a BeQuietError so the root command exits without re-logging.
func logError(err error, correlation, msg string) error {
	if correlation != "" {
		log.Error().Msgf("%s %s (correlation ID: %s)", redCross, msg, correlation)
	} else {
		log.Error().Msgf("%s %s", redCross, msg)
	}
	log.Error().Msgf("error: %v", err)
	return BeQuietError{}
}

func logSuccess(format string, args ...any) {
	log.Info().Msgf(greenCheck+" "+format, args...)
}

func applyTableFormat(t table.Writer) {
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// parseConstraintFlags turns repeatable key=value flags into constraints.
// Values are YAML scalars, so `max_latency_ms=50` compares numerically and
// an explicit operator can be selected with a map value, e.g.
// `features={$contains: tls}`.
func parseConstraintFlags(entries []string) (map[string]core.Constraint, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]core.Constraint, len(entries))
	for _, entry := range entries {
		key, rawValue, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("constraint %q: expected key=value", entry)
		}
		var raw any
		if err := yaml.Unmarshal([]byte(rawValue), &raw); err != nil {
			return nil, fmt.Errorf("constraint %q: %w", entry, err)
		}
		constraint, err := core.ParseConstraint(key, raw)
		if err != nil {
			return nil, err
		}
		out[key] = constraint
	}
	return out, nil
}
