package postgres

import (
	"testing"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildListQuery(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		query, args := buildListQuery("pages", nil)
		assert.Equal(t, "SELECT id, payload FROM documents WHERE collection = $1 ORDER BY seq ASC", query)
		assert.Equal(t, []any{"pages"}, args)
	})

	t.Run("equality filters", func(t *testing.T) {
		query, args := buildListQuery("pageVersions", []domain.Filter{
			domain.Eq("siteId", "site1"),
			domain.Eq("pageId", "home"),
		})
		assert.Equal(t,
			"SELECT id, payload FROM documents WHERE collection = $1 AND payload->>$2 = $3 AND payload->>$4 = $5 ORDER BY seq ASC",
			query,
		)
		assert.Equal(t, []any{"pageVersions", "siteId", "site1", "pageId", "home"}, args)
	})
}
