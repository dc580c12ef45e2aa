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

type photoItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	Entity string `dynamodbav:"entity"`
	models.Photo
}

func photoKey(id string) (string, string) {
	return "PHOTO#" + id, "PHOTO"
}

// PhotoRepository handles DynamoDB operations for photos
type PhotoRepository struct {
	s *Store
}

// Create creates a new photo
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	pk, sk := photoKey(photo.ID)
	item, err := attributevalue.MarshalMap(photoItem{PK: pk, SK: sk, Entity: entityPhoto, Photo: *photo})
	if err != nil {
		return fmt.Errorf("failed to marshal photo: %w", err)
	}

	_, err = r.s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	pk, sk := photoKey(id)
	raw, err := r.s.getItem(ctx, pk, sk)
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("photo %s: %w", id, repository.ErrNotFound)
	}

	var item photoItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal photo: %w", err)
	}
	return &item.Photo, nil
}

// ListByUser retrieves a user's photos, newest first
func (r *PhotoRepository) ListByUser(ctx context.Context, userID string) ([]*models.Photo, error) {
	return r.list(ctx, "user_id = :uid", map[string]types.AttributeValue{":uid": str(userID)})
}

// FirstByUsers retrieves the newest photo of each given user
func (r *PhotoRepository) FirstByUsers(ctx context.Context, userIDs []string) (map[string]*models.Photo, error) {
	first := make(map[string]*models.Photo, len(userIDs))
	if len(userIDs) == 0 {
		return first, nil
	}

	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	photos, err := r.list(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	for _, p := range photos {
		if !wanted[p.UserID] {
			continue
		}
		if _, ok := first[p.UserID]; !ok {
			first[p.UserID] = p
		}
	}
	return first, nil
}

// Delete deletes a photo by ID
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	pk, sk := photoKey(id)
	_, err := r.s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.s.table),
		Key:                 key(pk, sk),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("photo %s: %w", id, repository.ErrNotFound)
		}
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

func (r *PhotoRepository) list(ctx context.Context, filter string, values map[string]types.AttributeValue) ([]*models.Photo, error) {
	raw, err := r.s.scan(ctx, entityPhoto, filter, nil, values)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}

	var items []photoItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal photos: %w", err)
	}

	photos := make([]*models.Photo, 0, len(items))
	for i := range items {
		photos = append(photos, &items[i].Photo)
	}
	sort.Slice(photos, func(i, j int) bool {
		if !photos[i].CreatedAt.Equal(photos[j].CreatedAt) {
			return photos[i].CreatedAt.After(photos[j].CreatedAt)
		}
		return photos[i].ID < photos[j].ID
	})
	return photos, nil
}
