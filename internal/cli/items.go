package cli

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"
)

func newPutCommand(opts *options) *cobra.Command {
	var replace []string
	cmd := &cobra.Command{
		Use:   "put <domain> <item> <name=value>...",
		Short: "Add attribute values to an item",
		Long: `Add attribute values to an item. Repeat a name to add several values.
A value equal to the nil string is stored as null.

Examples:
  sdb put users u1 name=ada tag=admin tag=ops
  sdb put users u1 name=lovelace --replace name`,
		Args: args(cobra.MinimumNArgs(3)),
		RunE: func(cmd *cobra.Command, a []string) error {
			client, _, err := opts.client(cmd)
			if err != nil {
				return err
			}
			attrs, err := parseAssignments(a[2:], client.NilString(), false)
			if err != nil {
				return err
			}
			resp, err := client.PutAttributes(cmd.Context(), a[0], a[1], attrs, replace)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), metaView(resp.ResponseMetadata))
		},
	}
	cmd.Flags().StringSliceVar(&replace, "replace", nil, "attributes whose stored values are replaced")
	return cmd
}

func newGetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <domain> <item> [attribute]...",
		Short: "Show the attributes of an item",
		Args:  args(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			client, _, err := opts.client(cmd)
			if err != nil {
				return err
			}
			res, err := client.GetAttributes(cmd.Context(), a[0], a[1], a[2:]...)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), itemView{Name: a[1], Attributes: attributesView(res.Attributes)})
		},
	}
}

func newDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <domain> <item> [name[=value]]...",
		Short: "Delete an item, some of its attributes, or single values",
		Long: `Delete attributes of an item. Without attributes the whole item is
deleted; a bare name removes every value of that attribute; name=value
removes only that value.

Examples:
  sdb delete users u1
  sdb delete users u1 email
  sdb delete users u1 tag=ops`,
		Args: args(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			client, _, err := opts.client(cmd)
			if err != nil {
				return err
			}
			attrs, err := parseAssignments(a[2:], client.NilString(), true)
			if err != nil {
				return err
			}
			resp, err := client.DeleteAttributes(cmd.Context(), a[0], a[1], attrs)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), metaView(resp.ResponseMetadata))
		},
	}
}

func newSelectCommand(opts *options) *cobra.Command {
	var (
		nextToken string
		all       bool
	)
	cmd := &cobra.Command{
		Use:   "select <expression>",
		Short: "Run a select expression",
		Long: `Run a select expression and print the matching items as YAML.

Examples:
  sdb select "select * from users where name = 'ada'"
  sdb select "select count(*) from users"
  sdb select --all "select * from users"`,
		Args: args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			client, _, err := opts.client(cmd)
			if err != nil {
				return err
			}

			var (
				items []itemView
				next  string
			)
			if all {
				res, err := client.SelectAll(cmd.Context(), a[0])
				if err != nil {
					return err
				}
				for _, it := range res.Items {
					items = append(items, itemView{Name: it.Name, Attributes: attributesView(it.Attributes)})
				}
			} else {
				var token *string
				if nextToken != "" {
					token = aws.String(nextToken)
				}
				res, err := client.Select(cmd.Context(), a[0], token)
				if err != nil {
					return err
				}
				for _, it := range res.Items {
					items = append(items, itemView{Name: it.Name, Attributes: attributesView(it.Attributes)})
				}
				next = res.NextToken
			}

			return writeYAML(cmd.OutOrStdout(), struct {
				Items     []itemView `yaml:"items"`
				NextToken string     `yaml:"nextToken,omitempty"`
			}{Items: items, NextToken: next})
		},
	}
	cmd.Flags().StringVar(&nextToken, "next-token", "", "continue a previous query")
	cmd.Flags().BoolVar(&all, "all", false, "follow next tokens until the result is complete")
	return cmd
}
