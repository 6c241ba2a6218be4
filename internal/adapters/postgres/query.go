package postgres_adapter

import (
	"fmt"
	"strings"
)

// whereBuilder собирает условия с позиционными параметрами $1, $2...
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) eq(column string, value any) {
	w.args = append(w.args, value)
	w.conds = append(w.conds, fmt.Sprintf("%s = $%d", column, len(w.args)))
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
