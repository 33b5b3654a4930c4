package sdb

import (
	"context"
	"hash"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/jacentio/simpledb/internal/sigv2"
)

// Client signs and sends SimpleDB query API requests. A Client is immutable
// and safe for concurrent use; each call computes its own timestamp and
// signature.
type Client struct {
	config  Config
	newHash func() hash.Hash
	now     func() time.Time
}

// New creates a Client. It fails with a ConfigError when the credentials
// are missing or a setting is invalid.
func New(config Config) (*Client, error) {
	config.applyDefaults()
	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	newHash, ok := sigv2.HashFor(config.SignatureMethod)
	if !ok {
		return nil, &ConfigError{Field: "SignatureMethod", Reason: "unsupported method " + config.SignatureMethod}
	}
	return &Client{
		config:  config,
		newHash: newHash,
		now:     time.Now,
	}, nil
}

// NewFromAWSConfig creates a Client using credentials resolved from an
// aws.Config (environment, shared profile, SSO, instance role...). The
// credentials are retrieved once; temporary credentials are not refreshed.
// When config.Host is empty the host is derived from the aws.Config region.
func NewFromAWSConfig(ctx context.Context, awsCfg aws.Config, config Config) (*Client, error) {
	if awsCfg.Credentials == nil {
		return nil, &ConfigError{Field: "Credentials", Reason: "aws config has no credentials provider"}
	}
	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil {
		return nil, &ConfigError{Field: "Credentials", Reason: err.Error()}
	}

	config.AccessKeyID = creds.AccessKeyID
	config.SecretAccessKey = creds.SecretAccessKey
	config.SessionToken = creds.SessionToken
	if config.Host == "" {
		config.Host = HostForRegion(awsCfg.Region)
	}
	return New(config)
}

// HostForRegion returns the SimpleDB endpoint host for an AWS region.
func HostForRegion(region string) string {
	if region == "" || region == "us-east-1" {
		return DefaultHost
	}
	return "sdb." + region + ".amazonaws.com"
}

// Config returns a copy of the client configuration without the secret.
func (c *Client) Config() Config {
	cfg := c.config
	cfg.SecretAccessKey = ""
	cfg.SessionToken = ""
	return cfg
}

// NilString returns the null sentinel in use.
func (c *Client) NilString() string {
	return c.config.NilString
}
