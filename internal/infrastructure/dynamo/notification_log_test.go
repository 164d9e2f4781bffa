package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/crm-mobile-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func logItem(name, forUser, owner string, creation time.Time, extra map[string]types.AttributeValue) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		fieldName:     &types.AttributeValueMemberS{Value: name},
		"subject":     &types.AttributeValueMemberS{Value: "Subject " + name},
		fieldCreation: &types.AttributeValueMemberS{Value: formatCreation(creation)},
		fieldOwner:    &types.AttributeValueMemberS{Value: owner},
	}
	if forUser != "" {
		item[fieldForUser] = &types.AttributeValueMemberS{Value: forUser}
	}
	for k, v := range extra {
		item[k] = v
	}
	return item
}

func onIndex(index string) interface{} {
	return mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.IndexName != nil && *in.IndexName == index
	})
}

func TestNotificationLogRepo_ListForUser_UnionDedupSorted(t *testing.T) {
	api := new(mockAPI)
	repo := NewNotificationLogRepo(api, "notification_log", domain.Schema{LogSeenAttribute: "read", LogHasFromUser: true})
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	user := "a@example.com"

	shared := logItem("L2", user, user, base.Add(2*time.Hour), map[string]types.AttributeValue{
		"read": &types.AttributeValueMemberN{Value: "1"},
	})
	api.On("Query", mock.Anything, onIndex(indexForUserCreation)).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{shared, logItem("L1", user, "sys@example.com", base, nil)},
	}, nil)
	api.On("Query", mock.Anything, onIndex(indexOwnerCreation)).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{shared},
	}, nil)
	api.On("Query", mock.Anything, onIndex(indexFromUserCreation)).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{logItem("L3", "b@example.com", "b@example.com", base.Add(time.Hour),
			map[string]types.AttributeValue{fieldFromUser: &types.AttributeValueMemberS{Value: user}})},
	}, nil)

	got, err := repo.ListForUser(context.Background(), user, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"L2", "L3", "L1"}, []string{got[0].Name, got[1].Name, got[2].Name})
	assert.True(t, got[0].Seen)
	assert.False(t, got[1].Seen)
	assert.Equal(t, user, got[1].FromUser)
	api.AssertExpectations(t)
}

func TestNotificationLogRepo_ListForUser_NoFromUserIndex(t *testing.T) {
	api := new(mockAPI)
	repo := NewNotificationLogRepo(api, "notification_log", domain.Schema{})
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	api.On("Query", mock.Anything, onIndex(indexForUserCreation)).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{
			logItem("L1", "a@example.com", "x", base, nil),
			logItem("L2", "a@example.com", "x", base.Add(time.Minute), nil),
		},
	}, nil)
	api.On("Query", mock.Anything, onIndex(indexOwnerCreation)).Return(&dynamodb.QueryOutput{}, nil)

	got, err := repo.ListForUser(context.Background(), "a@example.com", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "L2", got[0].Name)
	assert.False(t, got[0].Seen)
	api.AssertNotCalled(t, "Query", mock.Anything, onIndex(indexFromUserCreation))
}

func TestNotificationLogRepo_ListForUser_QueryError(t *testing.T) {
	api := new(mockAPI)
	repo := NewNotificationLogRepo(api, "notification_log", domain.Schema{})
	boom := errors.New("throttled")
	api.On("Query", mock.Anything, mock.Anything).Return(nil, boom)

	_, err := repo.ListForUser(context.Background(), "a@example.com", 5)
	require.ErrorIs(t, err, boom)
}

func TestNotificationLogRepo_ListForUser_BoundsQueryLimit(t *testing.T) {
	for _, tc := range []struct {
		name  string
		limit int
		want  int32
	}{
		{"overflowing int32", 1 << 31, maxQueryLimit},
		{"huge", 1 << 40, maxQueryLimit},
		{"negative", -5, 1},
		{"in range", 25, 25},
	} {
		t.Run(tc.name, func(t *testing.T) {
			api := new(mockAPI)
			repo := NewNotificationLogRepo(api, "notification_log", domain.Schema{})
			api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
				return in.Limit != nil && *in.Limit == tc.want
			})).Return(&dynamodb.QueryOutput{}, nil).Twice()

			got, err := repo.ListForUser(context.Background(), "a@example.com", tc.limit)
			require.NoError(t, err)
			assert.Empty(t, got)
			api.AssertExpectations(t)
		})
	}
}

func TestNotificationLogRepo_MarkSeen(t *testing.T) {
	api := new(mockAPI)
	repo := NewNotificationLogRepo(api, "notification_log", domain.Schema{LogSeenAttribute: "read"})

	api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		return in.ExpressionAttributeNames["#f0"] == "read" && *in.ConditionExpression == "attribute_exists(#pk)"
	})).Return(&dynamodb.UpdateItemOutput{}, nil).Once()

	require.NoError(t, repo.MarkSeen(context.Background(), "L1"))
	api.AssertExpectations(t)
}

func TestNotificationLogRepo_MarkSeen_FallbackAttributeAndNotFound(t *testing.T) {
	api := new(mockAPI)
	repo := NewNotificationLogRepo(api, "notification_log", domain.Schema{})

	api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		return in.ExpressionAttributeNames["#f0"] == fallbackSeenField
	})).Return(nil, &types.ConditionalCheckFailedException{})

	err := repo.MarkSeen(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNotificationLogRepo_Put(t *testing.T) {
	api := new(mockAPI)
	repo := NewNotificationLogRepo(api, "notification_log", domain.Schema{LogSeenAttribute: "seen", LogHasFromUser: false})
	created := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		_, hasFor := in.Item[fieldForUser]
		_, hasFrom := in.Item[fieldFromUser]
		seen, ok := in.Item["seen"].(*types.AttributeValueMemberN)
		creation := in.Item[fieldCreation].(*types.AttributeValueMemberS)
		return !hasFor && !hasFrom && ok && seen.Value == "0" && creation.Value == formatCreation(created)
	})).Return(&dynamodb.PutItemOutput{}, nil)

	err := repo.Put(context.Background(), &domain.LogEntry{
		Name: "L9", Subject: "Assigned", Owner: "mgr@example.com", FromUser: "mgr@example.com", Creation: created,
	})
	require.NoError(t, err)
	api.AssertExpectations(t)
}
