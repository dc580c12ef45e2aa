package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type matchItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	Entity string `dynamodbav:"entity"`
	models.Match
}

func matchKey(userA, userB string) (string, string) {
	a, b := models.CanonicalPair(userA, userB)
	return "MATCH#" + a + "#" + b, "MATCH"
}

// MatchRepository handles DynamoDB operations for matches
type MatchRepository struct {
	s *Store
}

// CreateIfAbsent writes the match only if no item exists for its pair
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, m *models.Match) (bool, *models.Match, error) {
	m.UserAID, m.UserBID = models.CanonicalPair(m.UserAID, m.UserBID)
	pk, sk := matchKey(m.UserAID, m.UserBID)

	item, err := attributevalue.MarshalMap(matchItem{PK: pk, SK: sk, Entity: entityMatch, Match: *m})
	if err != nil {
		return false, nil, fmt.Errorf("failed to marshal match: %w", err)
	}

	_, err = r.s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err == nil {
		return true, m, nil
	}
	if !isConditionFailed(err) {
		return false, nil, fmt.Errorf("failed to create match: %w", err)
	}

	existing, err := r.GetByPair(ctx, m.UserAID, m.UserBID)
	if err != nil {
		return false, nil, fmt.Errorf("failed to load existing match: %w", err)
	}
	return false, existing, nil
}

// GetByID retrieves a match by ID
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	matches, err := r.list(ctx, "#id = :id", map[string]string{"#id": "id"},
		map[string]types.AttributeValue{":id": str(id)})
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("match %s: %w", id, repository.ErrNotFound)
	}
	return matches[0], nil
}

// GetByPair retrieves the match of two users in either order
func (r *MatchRepository) GetByPair(ctx context.Context, userA, userB string) (*models.Match, error) {
	pk, sk := matchKey(userA, userB)
	raw, err := r.s.getItem(ctx, pk, sk)
	if err != nil {
		return nil, fmt.Errorf("failed to get match by pair: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("match %s/%s: %w", userA, userB, repository.ErrNotFound)
	}

	var item matchItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}
	return &item.Match, nil
}

// List retrieves matches passing the filter, oldest first
func (r *MatchRepository) List(ctx context.Context, filter repository.MatchFilter) ([]*models.Match, error) {
	all, err := r.list(ctx, "", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	var matches []*models.Match
	for _, m := range all {
		if filter.Matches(m) {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// End marks a match as ended
func (r *MatchRepository) End(ctx context.Context, id string, at time.Time) error {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	endedAt, err := attributevalue.Marshal(at)
	if err != nil {
		return fmt.Errorf("failed to marshal end time: %w", err)
	}

	pk, sk := matchKey(m.UserAID, m.UserBID)
	_, err = r.s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.s.table),
		Key:                      key(pk, sk),
		UpdateExpression:         aws.String("SET #status = :status, ended_at = :ended"),
		ConditionExpression:      aws.String("attribute_exists(PK)"),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": str(string(models.MatchEnded)),
			":ended":  endedAt,
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("match %s: %w", id, repository.ErrNotFound)
		}
		return fmt.Errorf("failed to end match: %w", err)
	}
	return nil
}

func (r *MatchRepository) list(ctx context.Context, filter string, names map[string]string, values map[string]types.AttributeValue) ([]*models.Match, error) {
	raw, err := r.s.scan(ctx, entityMatch, filter, names, values)
	if err != nil {
		return nil, err
	}

	var items []matchItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal matches: %w", err)
	}

	matches := make([]*models.Match, 0, len(items))
	for i := range items {
		matches = append(matches, &items[i].Match)
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}
