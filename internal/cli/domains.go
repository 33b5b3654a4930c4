package cli

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"

	"github.com/jacentio/simpledb/sdb"
)

func newDomainsCommand(opts *options) *cobra.Command {
	var (
		maxDomains int32
		nextToken  string
		all        bool
	)
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List domains",
		Long: `List the domains of the account, one per line.

Examples:
  sdb domains
  sdb domains --max 10
  sdb domains --all`,
		Args: args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := opts.client(cmd)
			if err != nil {
				return err
			}
			input := &sdb.ListDomainsInput{}
			if cmd.Flags().Changed("max") {
				input.MaxNumberOfDomains = aws.Int32(maxDomains)
			}
			if nextToken != "" {
				input.NextToken = aws.String(nextToken)
			}

			out := cmd.OutOrStdout()
			for {
				page, err := client.ListDomains(cmd.Context(), input)
				if err != nil {
					return err
				}
				for _, d := range page.Domains {
					fmt.Fprintln(out, d)
				}
				if page.NextToken == "" {
					return nil
				}
				if !all {
					fmt.Fprintf(cmd.ErrOrStderr(), "next token: %s\n", page.NextToken)
					return nil
				}
				input.NextToken = aws.String(page.NextToken)
			}
		},
	}
	cmd.Flags().Int32Var(&maxDomains, "max", 0, "maximum number of domains per page (1-100)")
	cmd.Flags().StringVar(&nextToken, "next-token", "", "continue a previous listing")
	cmd.Flags().BoolVar(&all, "all", false, "follow next tokens until every domain is listed")
	return cmd
}

func newCreateDomainCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create-domain <domain>",
		Short: "Create a domain",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			client, _, err := opts.client(cmd)
			if err != nil {
				return err
			}
			resp, err := client.CreateDomain(cmd.Context(), a[0])
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), metaView(resp.ResponseMetadata))
		},
	}
}

func newDeleteDomainCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-domain <domain>",
		Short: "Delete a domain and every item in it",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			client, _, err := opts.client(cmd)
			if err != nil {
				return err
			}
			resp, err := client.DeleteDomain(cmd.Context(), a[0])
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), metaView(resp.ResponseMetadata))
		},
	}
}

func newMetadataCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <domain>",
		Short: "Show item and attribute counts of a domain",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			client, _, err := opts.client(cmd)
			if err != nil {
				return err
			}
			md, err := client.DomainMetadata(cmd.Context(), a[0])
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), struct {
				Timestamp                string       `yaml:"timestamp"`
				ItemCount                int64        `yaml:"itemCount"`
				ItemNamesSizeBytes       int64        `yaml:"itemNamesSizeBytes"`
				AttributeNameCount       int64        `yaml:"attributeNameCount"`
				AttributeNamesSizeBytes  int64        `yaml:"attributeNamesSizeBytes"`
				AttributeValueCount      int64        `yaml:"attributeValueCount"`
				AttributeValuesSizeBytes int64        `yaml:"attributeValuesSizeBytes"`
				Metadata                 metadataView `yaml:"metadata"`
			}{
				Timestamp:                md.Timestamp.Format(time.RFC3339),
				ItemCount:                md.ItemCount,
				ItemNamesSizeBytes:       md.ItemNamesSizeBytes,
				AttributeNameCount:       md.AttributeNameCount,
				AttributeNamesSizeBytes:  md.AttributeNamesSizeBytes,
				AttributeValueCount:      md.AttributeValueCount,
				AttributeValuesSizeBytes: md.AttributeValuesSizeBytes,
				Metadata:                 metaView(md.ResponseMetadata),
			})
		},
	}
}
