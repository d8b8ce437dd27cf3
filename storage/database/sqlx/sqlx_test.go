package sqlxrepos

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/classroom/core"
)

func Test_orderBy(t *testing.T) {
	allowed := []string{"id", "title", "due_date"}
	fallback := core.DBOrdering{Field: "id", Ascending: true}

	tests := []struct {
		name      string
		orderings []core.DBOrdering
		want      string
	}{
		{name: "fallback only", want: " ORDER BY id ASC"},
		{name: "lower cased", orderings: []core.DBOrdering{{Field: " Due_Date "}}, want: " ORDER BY due_date DESC, id ASC"},
		{name: "unknown fields skipped", orderings: []core.DBOrdering{{Field: "password_hash"}, {Field: "title", Ascending: true}}, want: " ORDER BY title ASC, id ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderBy(tt.orderings, allowed, fallback))
		})
	}

	assert.Empty(t, orderBy([]core.DBOrdering{{Field: "lol"}}, allowed))
}
