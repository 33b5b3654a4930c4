package stream

import (
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// IsExpired reports whether image carries a TTL attribute at or before now.
// A missing or non-numeric TTL means the item is live.
func IsExpired(image map[string]events.DynamoDBAttributeValue, ttlAttribute string, now time.Time) bool {
	if ttlAttribute == "" {
		return false
	}
	ttl := getNumberAttr(image, ttlAttribute)
	if ttl == 0 {
		return false
	}
	return ttl <= now.Unix()
}
