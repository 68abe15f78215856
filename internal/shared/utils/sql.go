package utils

import (
	"fmt"
	"strings"
)

// JoinWithAnd joins a slice of strings with AND operator
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE operand matching q literally anywhere in
// the value. Use it with ESCAPE '\'.
func ContainsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// Where accumulates AND-ed predicates with positional ($n) arguments
type Where struct {
	clauses []string
	args    []any
}

// NextArg is the placeholder index the next added argument will take
func (w *Where) NextArg() int {
	return len(w.args) + 1
}

// Add appends a predicate whose placeholders are written as %d, e.g. "status = $%d"
func (w *Where) Add(format string, args ...any) {
	idx := make([]any, len(args))
	for i := range args {
		idx[i] = w.NextArg() + i
	}
	w.clauses = append(w.clauses, fmt.Sprintf(format, idx...))
	w.args = append(w.args, args...)
}

// AddRaw appends a pre-rendered predicate together with the arguments it binds
func (w *Where) AddRaw(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return "TRUE"
	}
	return JoinWithAnd(w.clauses)
}

func (w *Where) Args() []any {
	return w.args
}
