package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/artdir"
)

// parseTime parses a stored RFC3339 timestamp.
func parseTime(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", column, value, err)
	}
	return t, nil
}

// appendWhere writes the WHERE clause for filter and returns its arguments.
func appendWhere(query *strings.Builder, filter artdir.ImageFilter) []any {
	var conds []string
	var args []any
	if filter.URL != nil {
		conds = append(conds, "url = ?")
		args = append(args, *filter.URL)
	}
	if filter.ID != nil {
		conds = append(conds, "image_id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Source != nil {
		conds = append(conds, "source = ?")
		args = append(args, string(*filter.Source))
	}
	if filter.Valid != nil {
		conds = append(conds, "valid = ?")
		args = append(args, *filter.Valid)
	}
	if len(conds) > 0 {
		query.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	return args
}

// appendPage writes LIMIT and OFFSET. SQLite only accepts OFFSET after a
// LIMIT, so an offset without a limit uses LIMIT -1.
func appendPage(query *strings.Builder, args *[]any, limit, offset int) {
	switch {
	case limit > 0:
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	case offset > 0:
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
