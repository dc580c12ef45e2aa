package dynamo

import (
	"context"
	"fmt"
	"sort"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type decisionItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	Entity string `dynamodbav:"entity"`
	models.Decision
}

func decisionKey(d *models.Decision) (string, string) {
	return "DECISION#" + d.OriginID,
		fmt.Sprintf("TO#%s#%020d#%s", d.DestinationID, d.CreatedAt.UnixNano(), d.ID)
}

// DecisionRepository handles DynamoDB operations for decisions
type DecisionRepository struct {
	s *Store
}

// Create appends a decision. The sort key embeds the decision id, so a
// failed condition means this decision is already stored.
func (r *DecisionRepository) Create(ctx context.Context, d *models.Decision) error {
	if d.OriginID == d.DestinationID {
		return fmt.Errorf("decision %s targets its own origin", d.ID)
	}

	pk, sk := decisionKey(d)
	item, err := attributevalue.MarshalMap(decisionItem{PK: pk, SK: sk, Entity: entityDecision, Decision: *d})
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}

	_, err = r.s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil && !isConditionFailed(err) {
		return fmt.Errorf("failed to create decision: %w", err)
	}
	return nil
}

// List retrieves decisions passing the filter, oldest first.
// Filters with an origin read a single partition; the rest scan.
func (r *DecisionRepository) List(ctx context.Context, filter repository.DecisionFilter) ([]*models.Decision, error) {
	var raw []map[string]types.AttributeValue
	var err error

	switch {
	case filter.OriginID != "":
		prefix := "TO#"
		if filter.DestinationID != "" {
			prefix += filter.DestinationID + "#"
		}
		raw, err = r.s.query(ctx, "DECISION#"+filter.OriginID, prefix)
	case filter.DestinationID != "":
		raw, err = r.s.scan(ctx, entityDecision, "destination_id = :dest", nil,
			map[string]types.AttributeValue{":dest": str(filter.DestinationID)})
	default:
		raw, err = r.s.scan(ctx, entityDecision, "", nil, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}

	var items []decisionItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decisions: %w", err)
	}

	var decisions []*models.Decision
	for i := range items {
		if filter.Matches(&items[i].Decision) {
			decisions = append(decisions, &items[i].Decision)
		}
	}
	sort.Slice(decisions, func(i, j int) bool {
		if !decisions[i].CreatedAt.Equal(decisions[j].CreatedAt) {
			return decisions[i].CreatedAt.Before(decisions[j].CreatedAt)
		}
		return decisions[i].ID < decisions[j].ID
	})
	return decisions, nil
}

// Exists checks whether any decision passes the filter
func (r *DecisionRepository) Exists(ctx context.Context, filter repository.DecisionFilter) (bool, error) {
	decisions, err := r.List(ctx, filter)
	if err != nil {
		return false, err
	}
	return len(decisions) > 0, nil
}
