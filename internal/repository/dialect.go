package repository

// Dialect selects the SQL variant used for row limiting.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectOracle Dialect = "oracle"
)

// paginate returns the row-limiting clause for one page and its arguments.
func (d Dialect) paginate(limit, offset int) (string, []interface{}) {
	if d == DialectOracle {
		return " OFFSET ? ROWS FETCH NEXT ? ROWS ONLY", []interface{}{offset, limit}
	}
	return " LIMIT ? OFFSET ?", []interface{}{limit, offset}
}

// first returns a clause keeping the first n rows.
func (d Dialect) first(n int) (string, []interface{}) {
	if d == DialectOracle {
		return " FETCH FIRST ? ROWS ONLY", []interface{}{n}
	}
	return " LIMIT ?", []interface{}{n}
}
