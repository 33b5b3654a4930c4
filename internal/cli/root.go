// Package cli implements the sdb command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jacentio/simpledb/sdb"
)

// App runs the sdb command tree.
type App struct {
	Version   string
	BuildTime string
	Stdout    io.Writer
	Stderr    io.Writer
}

// options holds the global flags shared by every subcommand.
type options struct {
	host            string
	port            int
	scheme          string
	nilString       string
	signatureMethod string
	profile         string
	region          string
	verbose         bool
	skipValidation  bool
}

// Run executes the command line args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		printError(a.Stderr, err)
	}
	return ExitCode(err)
}

func (a *App) newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "sdb",
		Short: "Work with SimpleDB domains and items",
		Long: `sdb talks to the SimpleDB query API. Credentials come from the
standard AWS chain (environment, shared profile, SSO, instance role).
The endpoint can be set with flags or SDB_HOST, SDB_PORT and SDB_SCHEME.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.host, "host", "", "endpoint host (default derived from the region)")
	flags.IntVar(&opts.port, "port", 0, "endpoint port (default follows the scheme)")
	flags.StringVar(&opts.scheme, "scheme", "", "endpoint scheme, http or https (default https)")
	flags.StringVar(&opts.nilString, "nil-string", "", "sentinel sent in place of null values (default \"nil\")")
	flags.StringVar(&opts.signatureMethod, "signature-method", "", "HmacSHA256 or HmacSHA1 (default HmacSHA256)")
	flags.StringVar(&opts.profile, "profile", "", "AWS shared config profile")
	flags.StringVar(&opts.region, "region", "", "AWS region")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every request to stderr")
	flags.BoolVar(&opts.skipValidation, "skip-validation", false, "leave name and value checks to the service")

	root.AddCommand(
		newDomainsCommand(opts),
		newCreateDomainCommand(opts),
		newDeleteDomainCommand(opts),
		newMetadataCommand(opts),
		newPutCommand(opts),
		newGetCommand(opts),
		newDeleteCommand(opts),
		newSelectCommand(opts),
		newMigrateCommand(opts),
		newMockCommand(opts),
		a.newVersionCommand(),
	)
	return root
}

// logger returns a debug logger on stderr with --verbose, or a discarding one.
func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// awsConfig resolves the AWS configuration for --profile and --region.
func (o *options) awsConfig(ctx context.Context) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, &sdb.ConfigError{Field: "AWS", Reason: err.Error()}
	}
	return cfg, nil
}

// client builds a SimpleDB client from the environment and the global flags.
func (o *options) client(cmd *cobra.Command) (*sdb.Client, aws.Config, error) {
	ctx := cmd.Context()
	awsCfg, err := o.awsConfig(ctx)
	if err != nil {
		return nil, aws.Config{}, err
	}

	cfg, err := sdb.ConfigFromEnv()
	if err != nil {
		return nil, aws.Config{}, err
	}
	flags := cmd.Flags()
	switch {
	case o.host != "":
		cfg.Host = o.host
	case cfg.Host == sdb.DefaultHost:
		cfg.Host = ""
	}
	if flags.Changed("scheme") {
		cfg.Scheme = o.scheme
		if !flags.Changed("port") {
			cfg.Port = 0
		}
	}
	if flags.Changed("port") {
		cfg.Port = o.port
	}
	if o.nilString != "" {
		cfg.NilString = o.nilString
	}
	if o.signatureMethod != "" {
		cfg.SignatureMethod = o.signatureMethod
	}
	cfg.SkipValidation = o.skipValidation
	cfg.Logger = o.logger(cmd)

	client, err := sdb.NewFromAWSConfig(ctx, awsCfg, cfg)
	if err != nil {
		return nil, aws.Config{}, err
	}
	return client, awsCfg, nil
}

func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s %v\n", red("error:"), err)
}

// args wraps a cobra positional argument check so failures exit with ExitUsageError.
func args(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := check(cmd, a); err != nil {
			return &usageError{err}
		}
		return nil
	}
}
