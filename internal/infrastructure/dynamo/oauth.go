package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/crm-mobile-api/internal/domain"
)

// OAuthRepo stores the mobile OAuth settings singleton and registered clients.
type OAuthRepo struct {
	client        API
	settingsTable string
	clientsTable  string
}

func NewOAuthRepo(client API, settingsTable, clientsTable string) *OAuthRepo {
	return &OAuthRepo{client: client, settingsTable: settingsTable, clientsTable: clientsTable}
}

// GetSettings loads the singleton. A missing record yields domain.ErrNotFound.
func (r *OAuthRepo) GetSettings(ctx context.Context) (*domain.OAuthSettings, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.settingsTable),
		Key:            strKey(fieldName, domain.OAuthSettingsKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get oauth settings: %w", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("oauth settings: %w", domain.ErrNotFound)
	}
	var s domain.OAuthSettings
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, fmt.Errorf("unmarshal oauth settings: %w", err)
	}
	return &s, nil
}

func (r *OAuthRepo) PutSettings(ctx context.Context, s *domain.OAuthSettings) error {
	s.Name = domain.OAuthSettingsKey
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal oauth settings: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.settingsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put oauth settings: %w", err)
	}
	return nil
}

// PutClient registers c. An existing client id yields domain.ErrConflict.
func (r *OAuthRepo) PutClient(ctx context.Context, c *domain.OAuthClient) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal oauth client: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.clientsTable),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": fieldClientID},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("oauth client %s: %w", c.ClientID, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("put oauth client: %w", err)
	}
	return nil
}
