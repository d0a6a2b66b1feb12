package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentQuotesCallerNames(t *testing.T) {
	assert.Equal(t, `"orders"`, ident("orders"))
	assert.Equal(t, `"weird""name"`, ident(`weird"name`))
	assert.Equal(t, `"users; DROP TABLE users"`, ident("users; DROP TABLE users"))
}

func TestBuildInsert(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		columns []string
		values  int
		want    string
	}{
		{
			name:    "paired",
			table:   "car",
			columns: []string{"car_name", "price"},
			values:  2,
			want:    `INSERT INTO "car" ("car_name", "price") VALUES ($1, $2)`,
		},
		{
			name:    "arity mismatch is left to the server",
			table:   "car",
			columns: []string{"car_name"},
			values:  2,
			want:    `INSERT INTO "car" ("car_name") VALUES ($1, $2)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildInsert(tt.table, tt.columns, tt.values))
		})
	}
}
