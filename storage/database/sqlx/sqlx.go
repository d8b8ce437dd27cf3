// Package sqlxrepos implements the core repositories on PostgreSQL with sqlx.
package sqlxrepos

import (
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/strmangle"

	"github.com/trezcool/classroom/core"
)

// where accumulates conditions written with "?" bindvars.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// in adds a "column IN (...)" condition. An empty ids list matches nothing.
func (w *where) in(column string, ids []int) error {
	if len(ids) == 0 {
		w.conds = append(w.conds, "FALSE")
		return nil
	}
	cond, args, err := sqlx.In(column+" IN (?)", ids)
	if err != nil {
		return err
	}
	w.add(cond, args...)
	return nil
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy renders the ORDER BY clause of the orderings whose field is allowed, ending with fallback.
func orderBy(orderings []core.DBOrdering, allowed []string, fallback ...core.DBOrdering) string {
	all := make([]core.DBOrdering, 0, len(orderings)+len(fallback))
	all = append(append(all, orderings...), fallback...)

	clauses := make([]string, 0, len(all))
	for _, o := range all {
		field := strings.ToLower(strings.TrimSpace(o.Field))
		if !strmangle.SetInclude(field, allowed) {
			continue
		}
		o.Field = field
		clauses = append(clauses, o.String())
	}
	if len(clauses) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}
