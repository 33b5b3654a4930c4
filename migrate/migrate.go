// Package migrate copies the items of a SimpleDB domain into a DynamoDB table.
//
// Items are read page by page with Select and written with BatchWriteItem in
// batches of up to 25. The item name becomes the table's partition key:
//
//	m := migrate.New(client, dynamodb.NewFromConfig(awsCfg), migrate.Config{Table: "users"})
//	stats, err := m.Run(ctx, "users")
//
// A single-valued attribute is written as a string, a multi-valued one as a
// list, and a null value as NULL.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/time/rate"

	"github.com/jacentio/simpledb/sdb"
)

// MaxBatchSize is the BatchWriteItem request limit.
const MaxBatchSize = 25

var (
	// ErrUnprocessed is returned when DynamoDB keeps items unprocessed after every retry round.
	ErrUnprocessed = errors.New("migrate: items left unprocessed")

	// ErrKeyConflict is returned when an item has an attribute named like the key attribute.
	ErrKeyConflict = errors.New("migrate: attribute collides with key attribute")
)

// DynamoDBAPI is the subset of the DynamoDB client used by the Migrator.
type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Source pages through a select expression. *sdb.Client implements it.
type Source interface {
	Select(ctx context.Context, expression string, nextToken *string) (*sdb.SelectResult, error)
}

// Config holds configuration for the Migrator.
type Config struct {
	// Table is the destination DynamoDB table. Required.
	Table string

	// KeyAttribute receives the item name.
	// Default: "id"
	KeyAttribute string

	// Limiter paces BatchWriteItem calls, one token per call. Nil means unpaced.
	Limiter *rate.Limiter

	// MaxBatchRounds bounds how often unprocessed items are resubmitted.
	// Default: 5
	MaxBatchRounds int

	// Logger receives progress records.
	// Default: slog.Default()
	Logger *slog.Logger
}

// validate fills defaults.
func (c *Config) validate() {
	if c.KeyAttribute == "" {
		c.KeyAttribute = "id"
	}
	if c.MaxBatchRounds < 1 {
		c.MaxBatchRounds = 5
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Stats summarizes a run.
type Stats struct {
	Pages   int
	Items   int
	Batches int
}

// Migrator copies SimpleDB domains into a DynamoDB table.
type Migrator struct {
	source Source
	dest   DynamoDBAPI
	config Config
}

// New creates a Migrator.
func New(source Source, dest DynamoDBAPI, config Config) *Migrator {
	config.validate()
	return &Migrator{source: source, dest: dest, config: config}
}

// Run copies every item of domainName. Items already written stay written
// when Run fails part way; running again overwrites them.
func (m *Migrator) Run(ctx context.Context, domainName string) (Stats, error) {
	var stats Stats
	if m.config.Table == "" {
		return stats, errors.New("migrate: destination table is required")
	}

	expr := "select * from " + QuoteName(domainName)
	var (
		token   *string
		pending []types.WriteRequest
	)
	for {
		page, err := m.source.Select(ctx, expr, token)
		if err != nil {
			return stats, fmt.Errorf("migrate: select page %d: %w", stats.Pages+1, err)
		}
		stats.Pages++

		for _, item := range page.Items {
			av, err := ToDynamoItem(item, m.config.KeyAttribute)
			if err != nil {
				return stats, err
			}
			pending = append(pending, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
			stats.Items++

			if len(pending) == MaxBatchSize {
				if err := m.flush(ctx, pending, &stats); err != nil {
					return stats, err
				}
				pending = pending[:0]
			}
		}

		m.config.Logger.Info("migrated page",
			"domain", domainName,
			"table", m.config.Table,
			"page", stats.Pages,
			"items", stats.Items,
		)

		if page.NextToken == "" {
			break
		}
		token = aws.String(page.NextToken)
	}

	if len(pending) > 0 {
		if err := m.flush(ctx, pending, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// flush writes one batch, resubmitting unprocessed items up to MaxBatchRounds times.
func (m *Migrator) flush(ctx context.Context, batch []types.WriteRequest, stats *Stats) error {
	requests := map[string][]types.WriteRequest{
		m.config.Table: append([]types.WriteRequest(nil), batch...),
	}
	for round := 1; round <= m.config.MaxBatchRounds; round++ {
		if m.config.Limiter != nil {
			if err := m.config.Limiter.Wait(ctx); err != nil {
				return fmt.Errorf("migrate: wait for rate limiter: %w", err)
			}
		}

		out, err := m.dest.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: requests})
		stats.Batches++
		if err != nil {
			return fmt.Errorf("migrate: batch write: %w", err)
		}

		left := out.UnprocessedItems[m.config.Table]
		if len(left) == 0 {
			return nil
		}
		m.config.Logger.Warn("unprocessed items",
			"table", m.config.Table,
			"count", len(left),
			"round", round,
		)
		requests = map[string][]types.WriteRequest{m.config.Table: left}
	}
	return fmt.Errorf("%w: %d items after %d rounds", ErrUnprocessed, len(requests[m.config.Table]), m.config.MaxBatchRounds)
}

// ToDynamoItem converts a SimpleDB item into a DynamoDB item keyed by keyAttribute.
func ToDynamoItem(item sdb.Item, keyAttribute string) (map[string]types.AttributeValue, error) {
	doc := make(map[string]any, len(item.Attributes)+1)
	doc[keyAttribute] = item.Name
	for name, values := range item.Attributes {
		if name == keyAttribute {
			return nil, fmt.Errorf("%w: item %q attribute %q", ErrKeyConflict, item.Name, name)
		}
		switch len(values) {
		case 0:
		case 1:
			doc[name] = values[0].Ptr()
		default:
			list := make([]*string, len(values))
			for i, v := range values {
				list[i] = v.Ptr()
			}
			doc[name] = list
		}
	}

	av, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return nil, fmt.Errorf("migrate: marshal item %q: %w", item.Name, err)
	}
	return av, nil
}

// QuoteName quotes a domain or attribute name for a select expression.
func QuoteName(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
