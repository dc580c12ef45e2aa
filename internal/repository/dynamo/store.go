// Package dynamo implements the repository interfaces on a single DynamoDB
// table. Items carry a PK/SK key pair and an entity attribute:
//
//	USER#<id>            PROFILE
//	PHOTO#<id>           PHOTO
//	DECISION#<origin>    TO#<dest>#<unix nanos>#<id>
//	MATCH#<a>#<b>        MATCH
//
// The match key is derived from the canonical pair, so a conditional put on
// attribute_not_exists(PK) guarantees one match per pair.
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"swipe-match-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API is the subset of the DynamoDB client used by the store
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Options configures the DynamoDB connection
type Options struct {
	Table     string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

const (
	entityUser     = "user"
	entityPhoto    = "photo"
	entityDecision = "decision"
	entityMatch    = "match"
)

// Store provides DynamoDB-backed repositories
type Store struct {
	client API
	table  string
}

// Open builds a DynamoDB client from opts
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Table == "" {
		return nil, errors.New("dynamodb table name is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return New(client, opts.Table), nil
}

// New creates a store on top of an existing client
func New(client API, table string) *Store {
	return &Store{client: client, table: table}
}

func (s *Store) Users() repository.UserRepository         { return &UserRepository{s} }
func (s *Store) Photos() repository.PhotoRepository       { return &PhotoRepository{s} }
func (s *Store) Decisions() repository.DecisionRepository { return &DecisionRepository{s} }
func (s *Store) Matches() repository.MatchRepository      { return &MatchRepository{s} }

// Ping checks that the table is reachable
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err != nil {
		return fmt.Errorf("failed to describe table '%s': %w", s.table, err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing
func (s *Store) Close() error { return nil }

func key(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func str(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// getItem returns nil without error when the item does not exist
func (s *Store) getItem(ctx context.Context, pk, sk string) (map[string]types.AttributeValue, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            key(pk, sk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from table '%s': %w", s.table, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

// scan reads every item of one entity, optionally narrowed by an extra filter expression
func (s *Store) scan(ctx context.Context, entity, filter string, names map[string]string, values map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	expr := "#entity = :entity"
	if filter != "" {
		expr += " AND " + filter
	}
	allNames := map[string]string{"#entity": "entity"}
	for k, v := range names {
		allNames[k] = v
	}
	allValues := map[string]types.AttributeValue{":entity": str(entity)}
	for k, v := range values {
		allValues[k] = v
	}

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          aws.String(expr),
		ExpressionAttributeNames:  allNames,
		ExpressionAttributeValues: allValues,
		ConsistentRead:            aws.Bool(true),
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s items: %w", entity, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// query reads every item under one partition key
func (s *Store) query(ctx context.Context, pk, skPrefix string) ([]map[string]types.AttributeValue, error) {
	cond := "PK = :pk"
	values := map[string]types.AttributeValue{":pk": str(pk)}
	if skPrefix != "" {
		cond += " AND begins_with(SK, :sk)"
		values[":sk"] = str(skPrefix)
	}

	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    aws.String(cond),
		ExpressionAttributeValues: values,
		ConsistentRead:            aws.Bool(true),
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query partition %s: %w", pk, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}
