package store

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// IsExpired checks if an item has a TTL attribute at or before now.
func IsExpired(item map[string]types.AttributeValue, ttlAttr string, now time.Time) bool {
	attr, exists := item[ttlAttr]
	if !exists {
		return false // No TTL = active
	}
	ttlNum, ok := attr.(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	ttl, err := strconv.ParseInt(ttlNum.Value, 10, 64)
	if err != nil {
		return false
	}
	return ttl <= now.Unix()
}
