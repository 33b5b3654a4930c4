package cli

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jacentio/simpledb/internal/shard"
	"github.com/jacentio/simpledb/migrate"
)

func newMigrateCommand(opts *options) *cobra.Command {
	var (
		table       string
		key         string
		perSecond   float64
		maxRounds   int
		endpointURL string
		shards      int
	)
	cmd := &cobra.Command{
		Use:   "migrate <domain>",
		Short: "Copy every item of a domain into a DynamoDB table",
		Long: `Copy every item of a domain into a DynamoDB table. The item name is
written to the key attribute; single values become strings, multiple values
lists, and null values NULL.

Examples:
  sdb migrate users --table users
  sdb migrate users --table users --key user_id --rate 10
  sdb migrate users --table users --shards 4`,
		Args: args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			if table == "" {
				return &usageError{fmt.Errorf("--table is required")}
			}
			client, awsCfg, err := opts.client(cmd)
			if err != nil {
				return err
			}
			dest := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
				if endpointURL != "" {
					o.BaseEndpoint = aws.String(endpointURL)
				}
			})

			cfg := migrate.Config{
				Table:          table,
				KeyAttribute:   key,
				MaxBatchRounds: maxRounds,
				Logger:         opts.logger(cmd),
			}
			if perSecond > 0 {
				cfg.Limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
			}

			m := migrate.New(client, dest, cfg)
			var total migrate.Stats
			for _, domain := range shard.Domains(a[0], shards) {
				stats, err := m.Run(cmd.Context(), domain)
				if err != nil {
					return fmt.Errorf("migrate %s: %w", domain, err)
				}
				total.Pages += stats.Pages
				total.Items += stats.Items
				total.Batches += stats.Batches
			}
			return writeYAML(cmd.OutOrStdout(), total)
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "destination DynamoDB table (required)")
	cmd.Flags().StringVar(&key, "key", "id", "attribute receiving the item name")
	cmd.Flags().Float64Var(&perSecond, "rate", 0, "maximum BatchWriteItem calls per second (0 is unpaced)")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 5, "resubmissions of unprocessed items before giving up")
	cmd.Flags().IntVar(&shards, "shards", 1, "read from <domain>-00 ... when the domain is split by item name hash")
	cmd.Flags().StringVar(&endpointURL, "endpoint-url", "", "DynamoDB endpoint override, e.g. a local emulator")
	return cmd
}
