package filter

import (
	"maps"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/cinetrack/movie"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	compiler   *ExprCompiler
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*ExprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *ExprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *ExprCompiler) {
		maps.Copy(c.extra, funcs)
	}
}

// ExprCompiler compiles expr-lang expressions evaluated against a movie.Row
type ExprCompiler struct {
	extra map[string]any
	cache *lruCache[CompiledFilter]
}

// NewCompiler creates a new expr-based filter compiler
func NewCompiler(opts ...ExprCompilerOption) *ExprCompiler {
	c := &ExprCompiler{
		extra: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ CachingCompiler = (*ExprCompiler)(nil)

// Compile compiles an expression into an executable filter.
// Unknown identifiers and non-boolean results are compile errors.
func (c *ExprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Compile against a zero row so field and helper types are checked
	program, err := expr.Compile(expression,
		expr.Env(c.environment(movie.Row{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &exprFilter{
		expression: expression,
		program:    program,
		compiler:   c,
	}

	if c.cache != nil {
		c.cache.Put(expression, f)
	}

	return f, nil
}

// Clear removes all cached filters
func (c *ExprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *ExprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

func (c *ExprCompiler) environment(row movie.Row) map[string]any {
	env := createRuntimeEnvironment(row)
	maps.Copy(env, c.extra)
	return env
}

// Match evaluates the filter against a row
func (f *exprFilter) Match(row movie.Row) (bool, error) {
	result, err := expr.Run(f.program, f.compiler.environment(row))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			MovieID:    row.ID,
			MovieTitle: row.Title,
			Err:        err,
		}
	}

	// AsBool at compile time guarantees the type
	return result.(bool), nil
}

// Evaluate reports whether the row matches; evaluation errors count as no match
func (f *exprFilter) Evaluate(row movie.Row) bool {
	ok, err := f.Match(row)
	return err == nil && ok
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createRuntimeEnvironment exposes a row's fields and the row-bound helpers
func createRuntimeEnvironment(row movie.Row) map[string]any {
	env := make(map[string]any, 16)

	year, _ := strconv.Atoi(row.ReleaseYear())
	_, hasPoster := row.PosterURL()

	env["ID"] = row.ID
	env["Title"] = row.Title
	env["Overview"] = row.Overview
	env["Year"] = year
	env["Rating"] = row.VoteAverage
	env["ReleaseDate"] = row.ReleaseDate
	env["HasPoster"] = hasPoster
	env["Favorite"] = row.Overlay.Favorite
	env["Note"] = row.Overlay.Note

	// String helpers
	env["icontains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["iprefix"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}

	env["yearBetween"] = createYearBetweenFunc(year)
	env["hasNote"] = func() bool {
		return strings.TrimSpace(row.Overlay.Note) != ""
	}

	return env
}

// createYearBetweenFunc reports whether the release year is within [from, to].
// Rows without a parseable year never match.
func createYearBetweenFunc(year int) func(int, int) bool {
	return func(from, to int) bool {
		return year != 0 && year >= from && year <= to
	}
}

// Apply returns the rows matched by f, preserving order
func Apply(f Filter, rows []movie.Row) []movie.Row {
	matched := make([]movie.Row, 0, len(rows))
	for _, row := range rows {
		if f.Evaluate(row) {
			matched = append(matched, row)
		}
	}
	return matched
}
