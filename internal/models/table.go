package models

// TableView is the result of reading a whole table. Columns is only filled
// when the table has no rows.
type TableView struct {
	Rows    []map[string]any
	Columns []string
}
