package filter

import (
	"context"
	"strings"

	"github.com/kodayn/osukit/tracker"
)

// defaultCompiler backs the package-level helpers so repeated
// compilations of the same expression hit the cache.
var defaultCompiler = NewExprCompiler(WithCache(100))

// CompileFilter compiles a filter expression using the shared default compiler
func CompileFilter(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}

// ParseAndCreateFilter compiles an expression into a plain predicate.
// An empty expression matches every play.
func ParseAndCreateFilter(expression string) (func(tracker.ScoreInfo) bool, error) {
	if strings.TrimSpace(expression) == "" {
		return func(tracker.ScoreInfo) bool { return true }, nil
	}

	filter, err := CompileFilter(expression)
	if err != nil {
		return nil, err
	}

	return filter.Evaluate, nil
}

// EvaluateFilters compiles and evaluates multiple named filters against
// the same plays, returning the matches per filter name
func EvaluateFilters(ctx context.Context, expressions map[string]string, plays []tracker.ScoreInfo) (map[string][]tracker.ScoreInfo, error) {
	manager := NewManager()
	defer manager.Close(ctx)

	if err := manager.RegisterFilters(expressions); err != nil {
		return nil, err
	}

	return manager.EvaluateAll(ctx, plays)
}
