package postgres

import (
	"testing"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"

	"github.com/stretchr/testify/assert"
)

func TestDecisionWhere(t *testing.T) {
	where, args := decisionWhere(repository.DecisionFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = decisionWhere(repository.DecisionFilter{
		OriginID:      "b",
		DestinationID: "a",
		Kinds:         models.PositiveKinds(),
	})
	assert.Equal(t, " WHERE origin_id = $1 AND destination_id = $2 AND kind = ANY($3)", where)
	assert.Equal(t, []any{"b", "a", []string{"like", "superlike"}}, args)

	where, args = decisionWhere(repository.DecisionFilter{DestinationID: "a"})
	assert.Equal(t, " WHERE destination_id = $1", where)
	assert.Equal(t, []any{"a"}, args)
}
