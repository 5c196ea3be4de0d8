package utils

import (
	"fmt"
	"strings"
)

// JoinWithAnd joins a slice of strings with AND operator
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}

// ArgList accumulates positional query arguments and hands out $n placeholders.
type ArgList struct {
	args []any
}

// Add appends v and returns its placeholder, e.g. "$3".
func (a *ArgList) Add(v any) string {
	a.args = append(a.args, v)
	return fmt.Sprintf("$%d", len(a.args))
}

func (a *ArgList) Args() []any {
	return a.args
}

func (a *ArgList) Len() int {
	return len(a.args)
}
