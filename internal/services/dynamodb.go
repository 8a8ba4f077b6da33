package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"yovibe-events-scraper/internal/models"
)

// GSI names on the events and venues tables
const (
	PermalinkIndex    = "permalink-index"
	DedupIndex        = "dedup-index"
	VenueNaturalIndex = "natural-key-index"
)

// DynamoDBService provides the event/venue document-store operations the
// pipeline needs: dedup lookups, venue natural-key lookup, and inserts.
// It implements pipeline.EventStore.
type DynamoDBService struct {
	client      *dynamodb.Client
	eventsTable string
	venuesTable string
}

// NewDynamoDBService creates a new DynamoDB service instance
func NewDynamoDBService(client *dynamodb.Client, eventsTable, venuesTable string) *DynamoDBService {
	return &DynamoDBService{
		client:      client,
		eventsTable: eventsTable,
		venuesTable: venuesTable,
	}
}

// NewDynamoDBServiceFromEnv creates a service using table names from the
// environment, with defaults matching the deployed stack
func NewDynamoDBServiceFromEnv(client *dynamodb.Client) *DynamoDBService {
	eventsTable := os.Getenv("EVENTS_TABLE")
	if eventsTable == "" {
		eventsTable = "yovibe-events"
	}
	venuesTable := os.Getenv("VENUES_TABLE")
	if venuesTable == "" {
		venuesTable = "yovibe-venues"
	}
	return NewDynamoDBService(client, eventsTable, venuesTable)
}

// FindEventByPermalink looks up an existing event by its source permalink.
// Returns (nil, nil) when no event carries the permalink.
func (s *DynamoDBService) FindEventByPermalink(ctx context.Context, permalink string) (*models.Event, error) {
	key := models.GeneratePermalinkKey(permalink)

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.eventsTable),
		IndexName:              aws.String(PermalinkIndex),
		KeyConditionExpression: aws.String("PermalinkKey = :permalinkKey"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":permalinkKey": &types.AttributeValueMemberS{Value: key},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query event by permalink: %w", err)
	}

	return firstEvent(result.Items)
}

// FindEventByDedupKey looks up an existing event by its normalized
// (name, venue, start) dedup key. Returns (nil, nil) when absent.
func (s *DynamoDBService) FindEventByDedupKey(ctx context.Context, dedupKey string) (*models.Event, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.eventsTable),
		IndexName:              aws.String(DedupIndex),
		KeyConditionExpression: aws.String("DedupKey = :dedupKey"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":dedupKey": &types.AttributeValueMemberS{Value: dedupKey},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query event by dedup key: %w", err)
	}

	return firstEvent(result.Items)
}

// CreateEvent stores a new event document. Timestamps and keys are expected
// to be populated by the caller; CreatedAt is stamped here when missing.
func (s *DynamoDBService) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	item, err := attributevalue.MarshalMap(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.eventsTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// FindVenueByNaturalKey looks up a venue by its normalized (name, location)
// natural key. Returns (nil, nil) when absent.
func (s *DynamoDBService) FindVenueByNaturalKey(ctx context.Context, naturalKey string) (*models.Venue, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.venuesTable),
		IndexName:              aws.String(VenueNaturalIndex),
		KeyConditionExpression: aws.String("NaturalKey = :naturalKey"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":naturalKey": &types.AttributeValueMemberS{Value: naturalKey},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query venue by natural key: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, nil
	}

	var venue models.Venue
	if err := attributevalue.UnmarshalMap(result.Items[0], &venue); err != nil {
		return nil, fmt.Errorf("failed to unmarshal venue: %w", err)
	}

	return &venue, nil
}

// CreateVenue stores a new venue document
func (s *DynamoDBService) CreateVenue(ctx context.Context, venue *models.Venue) error {
	if venue.CreatedAt.IsZero() {
		venue.CreatedAt = time.Now().UTC()
	}

	item, err := attributevalue.MarshalMap(venue)
	if err != nil {
		return fmt.Errorf("failed to marshal venue: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.venuesTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("failed to create venue: %w", err)
	}

	return nil
}

// firstEvent unmarshals the first queried item, or returns (nil, nil) for an
// empty result
func firstEvent(items []map[string]types.AttributeValue) (*models.Event, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var event models.Event
	if err := attributevalue.UnmarshalMap(items[0], &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &event, nil
}
