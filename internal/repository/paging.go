package repository

import (
	"database/sql"
	"fmt"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func pageBounds(page, size int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return size, (page - 1) * size
}

// searchClause builds a case-insensitive LIKE over columns bound to one placeholder.
func searchClause(search string, args []interface{}, columns ...string) (string, []interface{}) {
	if strings.TrimSpace(search) == "" {
		return "", args
	}
	args = append(args, "%"+strings.ToLower(strings.TrimSpace(search))+"%")
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("LOWER(%s) LIKE $%d", col, len(args))
	}
	return " AND (" + strings.Join(parts, " OR ") + ")", args
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
