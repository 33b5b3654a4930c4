package sdb

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jacentio/simpledb/internal/sigv2"
)

const (
	// DefaultHost is the public SimpleDB endpoint.
	DefaultHost = "sdb.amazonaws.com"

	// DefaultNamespace is the XML namespace of API version 2007-11-07.
	DefaultNamespace = "http://sdb.amazonaws.com/doc/2007-11-07/"

	// DefaultNilString is the sentinel sent in place of a null attribute value.
	DefaultNilString = "nil"

	// DefaultPort is the HTTPS port.
	DefaultPort = 443

	// DefaultScheme is the URL scheme used to reach the endpoint.
	DefaultScheme = "https"

	// DefaultTimeout bounds a single request when no HTTPClient is supplied.
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Client.
type Config struct {
	// AccessKeyID identifies the signing credential. Required.
	AccessKeyID string `validate:"required"`

	// SecretAccessKey signs every request. Required.
	SecretAccessKey string `validate:"required"`

	// SessionToken is sent as SecurityToken when using temporary credentials.
	SessionToken string

	// Host is the service endpoint host name.
	// Default: "sdb.amazonaws.com"
	Host string

	// Port is the endpoint port. The port is left out of the signed host
	// when it is the scheme's default.
	// Default: 443
	Port int `validate:"min=1,max=65535"`

	// Scheme is "https" or "http".
	// Default: "https"
	Scheme string `validate:"oneof=http https"`

	// Namespace is the XML namespace of the API version in use.
	// Default: "http://sdb.amazonaws.com/doc/2007-11-07/"
	Namespace string

	// NilString is written in place of null attribute values and decoded
	// back to null when reading.
	// Default: "nil"
	NilString string

	// SignatureMethod selects the HMAC hash: "HmacSHA256" or "HmacSHA1".
	// Default: "HmacSHA256"
	SignatureMethod string `validate:"oneof=HmacSHA256 HmacSHA1"`

	// HTTPClient carries the requests. The client performs no retries.
	// Default: &http.Client{Timeout: 30s}
	HTTPClient *http.Client `validate:"-"`

	// Logger receives one debug record per request.
	// Default: slog.Default()
	Logger *slog.Logger `validate:"-"`

	// SkipValidation disables local checks of domain names, item names,
	// attribute names and values, leaving them to the service.
	SkipValidation bool
}

// DefaultConfig returns a Config pointing at the public endpoint.
// Credentials still have to be filled in.
func DefaultConfig() Config {
	return Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		Scheme:          DefaultScheme,
		Namespace:       DefaultNamespace,
		NilString:       DefaultNilString,
		SignatureMethod: sigv2.MethodHmacSHA256,
	}
}

// applyDefaults fills unset fields with their defaults.
func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Scheme == "" {
		c.Scheme = DefaultScheme
	}
	c.Scheme = strings.ToLower(c.Scheme)
	if c.Port == 0 {
		if p := sigv2.DefaultPort(c.Scheme); p != 0 {
			c.Port = p
		} else {
			c.Port = DefaultPort
		}
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.NilString == "" {
		c.NilString = DefaultNilString
	}
	if c.SignatureMethod == "" {
		c.SignatureMethod = sigv2.MethodHmacSHA256
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// hostHeader returns the host as signed and sent, with the port appended
// unless it is the scheme's default.
func (c *Config) hostHeader() string {
	if c.Port == sigv2.DefaultPort(c.Scheme) {
		return c.Host
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}
