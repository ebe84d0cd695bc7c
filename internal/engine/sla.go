package engine

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

// SLA is a compiled service-level expression evaluated against a candidate's
// attributes, e.g. "latency_ms < 50 && uptime >= 0.999". Compile once per
// resolution, evaluate per candidate.
type SLA struct {
	expression string
	program    *vm.Program
}

// CompileSLA compiles the expression. A compile failure is an input error
// surfaced to the caller, not a per-tier failure code.
func CompileSLA(expression string) (*SLA, error) {
	program, err := expr.Compile(expression,
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid sla expression: %w", err)
	}
	return &SLA{expression: expression, program: program}, nil
}

func (s *SLA) Expression() string {
	return s.expression
}

// Evaluate runs the expression over the descriptor's attributes. Runtime
// failures (missing attribute, type clash) fail closed with a note instead
// of an error: an unevaluable SLA is an unmet SLA.
func (s *SLA) Evaluate(descriptor *core.ProviderDescriptor) (bool, string) {
	env := make(map[string]any, len(descriptor.Attributes))
	for key, value := range descriptor.Attributes {
		env[key] = value.Native()
	}

	out, err := expr.Run(s.program, env)
	if err != nil {
		return false, fmt.Sprintf("sla evaluation failed: %v", err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Sprintf("sla expression returned %T, want bool", out)
	}
	if !ok {
		return false, fmt.Sprintf("sla %q not met", s.expression)
	}
	return true, ""
}
