package dynamo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// creationLayout is fixed-width so lexical order on the sort key equals
// chronological order.
const creationLayout = "2006-01-02T15:04:05.000000Z"

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET
// expression. Fields are emitted in sorted order.
func buildUpdateExpr(updates map[string]interface{}) (updateExpr, error) {
	if len(updates) == 0 {
		return updateExpr{}, fmt.Errorf("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ue := updateExpr{
		Names:  make(map[string]string, len(keys)),
		Values: make(map[string]types.AttributeValue, len(keys)),
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return updateExpr{}, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		parts[i] = nameKey + " = " + valueKey
	}
	ue.Expr = "SET " + strings.Join(parts, ", ")
	return ue, nil
}

func formatCreation(t time.Time) string {
	return t.UTC().Format(creationLayout)
}

func parseCreation(item map[string]types.AttributeValue) time.Time {
	s, ok := item[fieldCreation].(*types.AttributeValueMemberS)
	if !ok {
		return time.Time{}
	}
	if t, err := time.Parse(creationLayout, s.Value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s.Value); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// boolAttr reads a flag stored as BOOL, as a 0/1 number or as a string.
// A missing attribute or empty name reads as false.
func boolAttr(item map[string]types.AttributeValue, name string) bool {
	if name == "" {
		return false
	}
	switch v := item[name].(type) {
	case *types.AttributeValueMemberBOOL:
		return v.Value
	case *types.AttributeValueMemberN:
		n, err := strconv.ParseFloat(v.Value, 64)
		return err == nil && n != 0
	case *types.AttributeValueMemberS:
		b, err := strconv.ParseBool(v.Value)
		return err == nil && b
	default:
		return false
	}
}

// dropEmptyKeys removes empty string attributes that back secondary index
// keys, which DynamoDB rejects.
func dropEmptyKeys(item map[string]types.AttributeValue, names ...string) {
	for _, n := range names {
		if s, ok := item[n].(*types.AttributeValueMemberS); ok && s.Value == "" {
			delete(item, n)
		}
	}
}
