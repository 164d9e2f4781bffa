package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/crm-mobile-api/internal/domain"
)

// NotificationLogRepo provides typed DynamoDB operations for the notification
// log table. The seen flag attribute and from_user support vary per install and
// come from the schema descriptor.
type NotificationLogRepo struct {
	client      API
	tableName   string
	seenAttr    string
	hasFromUser bool
}

func NewNotificationLogRepo(client API, tableName string, schema domain.Schema) *NotificationLogRepo {
	return &NotificationLogRepo{
		client:      client,
		tableName:   tableName,
		seenAttr:    schema.LogSeenAttribute,
		hasFromUser: schema.LogHasFromUser,
	}
}

// Put writes e as a new unseen entry.
func (r *NotificationLogRepo) Put(ctx context.Context, e *domain.LogEntry) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal notification log: %w", err)
	}
	item[fieldCreation] = &types.AttributeValueMemberS{Value: formatCreation(e.Creation)}
	if r.seenAttr != "" {
		item[r.seenAttr] = &types.AttributeValueMemberN{Value: "0"}
	}
	if !r.hasFromUser {
		delete(item, fieldFromUser)
	}
	dropEmptyKeys(item, fieldForUser, fieldOwner, fieldFromUser)

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put notification log %s: %w", e.Name, err)
	}
	return nil
}

// ListForUser returns up to limit entries where user is the recipient, the
// owner or (when supported) the sender, newest first.
func (r *NotificationLogRepo) ListForUser(ctx context.Context, user string, limit int) ([]domain.LogEntry, error) {
	limit = min(max(limit, 1), maxQueryLimit)
	indexes := []struct{ index, attr string }{
		{indexForUserCreation, fieldForUser},
		{indexOwnerCreation, fieldOwner},
	}
	if r.hasFromUser {
		indexes = append(indexes, struct{ index, attr string }{indexFromUserCreation, fieldFromUser})
	}

	seen := make(map[string]bool)
	var out []domain.LogEntry
	for _, ix := range indexes {
		items, err := r.queryIndex(ctx, ix.index, ix.attr, user, limit)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			e, err := r.decode(item)
			if err != nil {
				return nil, err
			}
			if seen[e.Name] {
				continue
			}
			seen[e.Name] = true
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Creation.Equal(out[j].Creation) {
			return out[i].Creation.After(out[j].Creation)
		}
		return out[i].Name > out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkSeen sets the seen flag on a single entry.
func (r *NotificationLogRepo) MarkSeen(ctx context.Context, name string) error {
	attr := r.seenAttr
	if attr == "" {
		attr = fallbackSeenField
	}
	ue, err := buildUpdateExpr(map[string]interface{}{attr: 1})
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldName

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldName, name),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("notification log %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("mark notification log %s seen: %w", name, err)
	}
	return nil
}

func (r *NotificationLogRepo) queryIndex(ctx context.Context, index, attr, user string, limit int) ([]map[string]types.AttributeValue, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(index),
		KeyConditionExpression:   aws.String("#k = :u"),
		ExpressionAttributeNames: map[string]string{"#k": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: user},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", index, err)
	}
	return out.Items, nil
}

func (r *NotificationLogRepo) decode(item map[string]types.AttributeValue) (domain.LogEntry, error) {
	var e domain.LogEntry
	if err := attributevalue.UnmarshalMap(item, &e); err != nil {
		return e, fmt.Errorf("unmarshal notification log: %w", err)
	}
	e.Creation = parseCreation(item)
	e.Seen = boolAttr(item, r.seenAttr)
	if !r.hasFromUser {
		e.FromUser = ""
	}
	return e, nil
}
