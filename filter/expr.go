package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/kodayn/osukit/osuapi"
	"github.com/kodayn/osukit/tracker"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression  string
	program     *vm.Program
	customFuncs map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
		maps.Copy(c.customFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
		customFuncs: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	customFuncs map[string]any
	cache       *lruCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	// Check cache if enabled
	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Compile with static environment for validation
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(), // Allow play properties
		expr.AsBool(),                  // Ensure boolean result
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression:  expression,
		program:     program,
		customFuncs: c.customFuncs,
	}

	// Cache if enabled
	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against a play. Plays that fail to
// evaluate are treated as non-matching.
func (f *exprFilter) Evaluate(play tracker.ScoreInfo) bool {
	matched, err := f.TryEvaluate(play)
	if err != nil {
		return false
	}
	return matched
}

// TryEvaluate evaluates the filter and surfaces evaluation failures
func (f *exprFilter) TryEvaluate(play tracker.ScoreInfo) (bool, error) {
	env := createRuntimeEnvironment(play)
	if len(f.customFuncs) > 0 {
		maps.Copy(env, f.customFuncs)
	}

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			PlayTitle:  play.DisplayTitle(),
			Reason:     "failed to evaluate expression",
			Err:        err,
		}
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// IsThreadSafe indicates that expr filters are thread-safe
func (f *exprFilter) IsThreadSafe() bool {
	return true
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 32)
	addHelperFunctions(funcs)
	return funcs
}

// addHelperFunctions adds all helper functions to the provided map
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	// Current time
	env["now"] = time.Now
}

// createRuntimeEnvironment creates the runtime environment for filter evaluation
func createRuntimeEnvironment(play tracker.ScoreInfo) map[string]any {
	// Pre-allocate with expected size
	env := make(map[string]any, 48)

	// Add helper functions
	addHelperFunctions(env)

	// Add play data
	env["Play"] = play

	// Add play-specific helper functions using closures for efficiency
	env["hasMod"] = createHasModFunc(play.Mods)
	env["noMod"] = createNoModFunc(play.Mods)
	env["rankAtLeast"] = createRankAtLeastFunc(play.Rank)
	env["statusIs"] = createStatusIsFunc(play.Status)
	env["fullCombo"] = createFullComboFunc(play.FullCombo)

	// Direct play properties for convenience
	env["Title"] = play.Title
	env["Artist"] = play.Artist
	env["Version"] = play.Version
	env["Creator"] = play.Creator
	env["Stars"] = play.Stars
	env["BPM"] = play.BPM
	env["Status"] = play.Status.String()
	env["Mode"] = play.Mode.String()
	env["Mods"] = play.Mods.String()
	env["Rank"] = play.Rank
	env["Accuracy"] = play.Accuracy
	env["PP"] = play.PP
	env["MaxCombo"] = play.MaxCombo
	env["Misses"] = play.Misses
	env["Position"] = play.Position
	env["Date"] = play.Date
	env["BeatmapID"] = play.BeatmapID
	env["UserID"] = play.UserID
	env["FullCombo"] = play.FullCombo

	return env
}

// Helper factory functions for better performance through closures

func createHasModFunc(mods osuapi.Mods) func(string) bool {
	return func(name string) bool {
		want, err := osuapi.ParseMods(name)
		if err != nil || want == osuapi.ModNone {
			return false
		}
		return mods.Has(want)
	}
}

func createNoModFunc(mods osuapi.Mods) func() bool {
	return func() bool {
		return mods == osuapi.ModNone
	}
}

// gradeOrder ranks the letter grades the API reports. X and XH
// are the wire names for SS and silver SS.
var gradeOrder = map[string]int{
	"F":   0,
	"D":   1,
	"C":   2,
	"B":   3,
	"A":   4,
	"S":   5,
	"SH":  6,
	"X":   7,
	"SS":  7,
	"XH":  8,
	"SSH": 8,
}

func createRankAtLeastFunc(rank string) func(string) bool {
	value, ok := gradeOrder[strings.ToUpper(rank)]
	return func(grade string) bool {
		threshold, known := gradeOrder[strings.ToUpper(grade)]
		return ok && known && value >= threshold
	}
}

func createStatusIsFunc(status osuapi.ApprovalStatus) func(string) bool {
	name := status.String()
	return func(want string) bool {
		return strings.EqualFold(name, want)
	}
}

func createFullComboFunc(fullCombo bool) func() bool {
	return func() bool {
		return fullCombo
	}
}
