// Package stream mirrors DynamoDB Streams records into SimpleDB domains.
//
// It keeps a SimpleDB domain in step with a DynamoDB table while readers are
// moved over from one store to the other.
package stream

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/simpledb/internal/shard"
	"github.com/jacentio/simpledb/sdb"
)

// Stream event names.
const (
	EventInsert = "INSERT"
	EventModify = "MODIFY"
	EventRemove = "REMOVE"
)

// Writer is the subset of *sdb.Client the mirror writes through.
type Writer interface {
	PutAttributes(ctx context.Context, domainName, itemName string, attrs sdb.Attributes, replace []string) (*sdb.Response, error)
	DeleteAttributes(ctx context.Context, domainName, itemName string, attrs sdb.Attributes) (*sdb.Response, error)
}

// Handler processes DynamoDB stream events into SimpleDB writes.
type Handler struct {
	client   Writer
	registry *Registry
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates a new stream handler.
func NewHandler(client Writer, registry *Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Handler{
		client:   client,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleMirror applies every record of event to its mapped domain.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleMirror(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Lambda retries the batch
		}
	}
	return nil
}

func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	table := TableFromARN(record.EventSourceArn)
	mapping, ok := h.registry.Lookup(table)
	if !ok {
		h.logger.Warn("skipping record for unmapped table",
			"eventID", record.EventID,
			"table", table,
		)
		return nil
	}

	itemName := keyString(record.Change.Keys, mapping.KeyAttribute)
	if itemName == "" {
		itemName = keyString(record.Change.NewImage, mapping.KeyAttribute)
	}
	if itemName == "" {
		itemName = keyString(record.Change.OldImage, mapping.KeyAttribute)
	}
	if itemName == "" {
		return fmt.Errorf("record %s: key attribute %q not found", record.EventID, mapping.KeyAttribute)
	}

	domain := shard.Domain(mapping.Domain, itemName, mapping.Shards)

	switch record.EventName {
	case EventRemove:
		return h.deleteItem(ctx, domain, itemName)
	case EventInsert, EventModify:
		if IsExpired(record.Change.NewImage, mapping.TTLAttribute, h.now()) {
			return h.deleteItem(ctx, domain, itemName)
		}
		attrs := ImageAttributes(record.Change.NewImage, mapping.KeyAttribute)
		previous := ImageAttributes(record.Change.OldImage, mapping.KeyAttribute)
		return h.putItem(ctx, domain, itemName, previous, attrs)
	default:
		h.logger.Warn("skipping record with unknown event name",
			"eventID", record.EventID,
			"eventName", record.EventName,
		)
		return nil
	}
}

func (h *Handler) putItem(ctx context.Context, domain, itemName string, previous, attrs sdb.Attributes) error {
	// 1. Overwrite every attribute present in the new image
	if len(attrs) > 0 {
		if _, err := h.client.PutAttributes(ctx, domain, itemName, attrs, attrs.Names()); err != nil {
			return fmt.Errorf("put %s/%s: %w", domain, itemName, err)
		}
	}

	// 2. Drop attributes that disappeared from the image
	removed := sdb.Attributes{}
	for name := range previous {
		if _, ok := attrs[name]; !ok {
			removed[name] = nil
		}
	}
	if len(removed) > 0 {
		if _, err := h.client.DeleteAttributes(ctx, domain, itemName, removed); err != nil {
			return fmt.Errorf("delete attributes %s/%s: %w", domain, itemName, err)
		}
	}

	h.logger.Info("mirrored item",
		"domain", domain,
		"item", itemName,
		"attributes", len(attrs),
		"removed", len(removed),
	)
	return nil
}

func (h *Handler) deleteItem(ctx context.Context, domain, itemName string) error {
	if _, err := h.client.DeleteAttributes(ctx, domain, itemName, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", domain, itemName, err)
	}
	h.logger.Info("deleted mirrored item",
		"domain", domain,
		"item", itemName,
	)
	return nil
}

// TableFromARN extracts the table name from a stream or table ARN
// (arn:aws:dynamodb:region:account:table/NAME/stream/LABEL).
func TableFromARN(arn string) string {
	_, rest, ok := strings.Cut(arn, ":table/")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, "/")
	return name
}

// ImageAttributes converts a stream image into SimpleDB attributes, leaving
// out keyAttribute. Sets and lists become multi-valued attributes; maps and
// nested lists are skipped.
func ImageAttributes(image map[string]events.DynamoDBAttributeValue, keyAttribute string) sdb.Attributes {
	attrs := make(sdb.Attributes, len(image))
	for name, v := range image {
		if name == keyAttribute {
			continue
		}
		if values, ok := streamValues(v); ok {
			attrs[name] = values
		}
	}
	return attrs
}

func streamValues(v events.DynamoDBAttributeValue) ([]sdb.Value, bool) {
	switch v.DataType() {
	case events.DataTypeNull:
		return []sdb.Value{sdb.Null()}, true
	case events.DataTypeStringSet:
		return sortedStrings(v.StringSet()), true
	case events.DataTypeNumberSet:
		return sortedStrings(v.NumberSet()), true
	case events.DataTypeBinarySet:
		encoded := make([]string, 0, len(v.BinarySet()))
		for _, b := range v.BinarySet() {
			encoded = append(encoded, base64.StdEncoding.EncodeToString(b))
		}
		return sortedStrings(encoded), true
	case events.DataTypeList:
		var values []sdb.Value
		for _, elem := range v.List() {
			s, ok := scalarString(elem)
			if !ok {
				return nil, false
			}
			values = append(values, s)
		}
		return values, len(values) > 0
	}
	s, ok := scalarString(v)
	if !ok {
		return nil, false
	}
	return []sdb.Value{s}, true
}

func scalarString(v events.DynamoDBAttributeValue) (sdb.Value, bool) {
	switch v.DataType() {
	case events.DataTypeString:
		return sdb.String(v.String()), true
	case events.DataTypeNumber:
		return sdb.String(v.Number()), true
	case events.DataTypeBoolean:
		return sdb.String(strconv.FormatBool(v.Boolean())), true
	case events.DataTypeBinary:
		return sdb.String(base64.StdEncoding.EncodeToString(v.Binary())), true
	case events.DataTypeNull:
		return sdb.Null(), true
	}
	return sdb.Value{}, false
}

func sortedStrings(in []string) []sdb.Value {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return sdb.Strings(out...)
}

// keyString renders a key attribute as an item name.
func keyString(image map[string]events.DynamoDBAttributeValue, key string) string {
	v, ok := image[key]
	if !ok {
		return ""
	}
	switch v.DataType() {
	case events.DataTypeString:
		return v.String()
	case events.DataTypeNumber:
		return v.Number()
	case events.DataTypeBinary:
		return base64.StdEncoding.EncodeToString(v.Binary())
	}
	return ""
}

// getNumberAttr extracts a number attribute from a DynamoDB stream image.
func getNumberAttr(image map[string]events.DynamoDBAttributeValue, key string) int64 {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeNumber {
			n, _ := strconv.ParseInt(v.Number(), 10, 64)
			return n
		}
	}
	return 0
}
