package pgsql

import (
	"testing"

	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildFilterClauses(t *testing.T) {
	credit := domain.Credit

	t.Run("no filters", func(t *testing.T) {
		clauses, args := buildFilterClauses(domain.TransactionFilter{}, []string{"user_id = $1"}, []interface{}{"u1"})
		assert.Equal(t, []string{"user_id = $1"}, clauses)
		assert.Equal(t, []interface{}{"u1"}, args)
	})

	t.Run("search matches description or counterparty number", func(t *testing.T) {
		filter := domain.TransactionFilter{Search: "100000000002"}
		clauses, args := buildFilterClauses(filter, []string{"user_id = $1"}, []interface{}{"u1"})

		assert.Len(t, clauses, 2)
		// One grouped clause, one argument: a transfer entry is found by its
		// counterparty account number even when its description was rewritten.
		assert.Equal(t, "(description ILIKE $2 OR counterparty_account_number ILIKE $2)", clauses[1])
		assert.Equal(t, []interface{}{"u1", "%100000000002%"}, args)
	})

	t.Run("type filter", func(t *testing.T) {
		filter := domain.TransactionFilter{Type: &credit}
		clauses, args := buildFilterClauses(filter, []string{"user_id = $1"}, []interface{}{"u1"})

		assert.Equal(t, []string{"user_id = $1", "transaction_type = $2"}, clauses)
		assert.Equal(t, []interface{}{"u1", "CREDIT"}, args)
	})

	t.Run("search and type combine", func(t *testing.T) {
		filter := domain.TransactionFilter{Search: "rent", Type: &credit}
		clauses, args := buildFilterClauses(filter, []string{"user_id = $1"}, []interface{}{"u1"})

		assert.Equal(t, []string{
			"user_id = $1",
			"(description ILIKE $2 OR counterparty_account_number ILIKE $2)",
			"transaction_type = $3",
		}, clauses)
		assert.Equal(t, []interface{}{"u1", "%rent%", "CREDIT"}, args)
	})
}
