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

type userItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	Entity string `dynamodbav:"entity"`
	models.User
}

func userKey(id string) (string, string) {
	return "USER#" + id, "PROFILE"
}

// UserRepository handles DynamoDB operations for users
type UserRepository struct {
	s *Store
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	pk, sk := userKey(user.ID)
	item, err := attributevalue.MarshalMap(userItem{PK: pk, SK: sk, Entity: entityUser, User: *user})
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	_, err = r.s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("user %s already exists", user.ID)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	pk, sk := userKey(id)
	raw, err := r.s.getItem(ctx, pk, sk)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &item.User, nil
}

// ListExcluding retrieves every user other than id
func (r *UserRepository) ListExcluding(ctx context.Context, id string) ([]*models.User, error) {
	raw, err := r.s.scan(ctx, entityUser, "#id <> :id",
		map[string]string{"#id": "id"},
		map[string]types.AttributeValue{":id": str(id)},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var items []userItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal users: %w", err)
	}

	users := make([]*models.User, 0, len(items))
	for i := range items {
		users = append(users, &items[i].User)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// Update overwrites the editable profile fields
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	pk, sk := userKey(user.ID)
	_, err := r.s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.s.table),
		Key:                 key(pk, sk),
		UpdateExpression:    aws.String("SET #name = :name, phone = :phone, gender = :gender, city = :city, bio = :bio"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeNames: map[string]string{
			"#name": "name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":   str(user.Name),
			":phone":  str(user.Phone),
			":gender": str(user.Gender),
			":city":   str(user.City),
			":bio":    str(user.Bio),
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("user %s: %w", user.ID, repository.ErrNotFound)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdatePushToken sets or clears the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, id string, pushToken *string) error {
	pk, sk := userKey(id)
	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.s.table),
		Key:                 key(pk, sk),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}
	if pushToken == nil {
		input.UpdateExpression = aws.String("REMOVE push_token")
	} else {
		input.UpdateExpression = aws.String("SET push_token = :token")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{":token": str(*pushToken)}
	}

	if _, err := r.s.client.UpdateItem(ctx, input); err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
		}
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}
