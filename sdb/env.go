package sdb

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	envHost      = "SDB_HOST"
	envPort      = "SDB_PORT"
	envScheme    = "SDB_SCHEME"
	envNilString = "SDB_NIL_STRING"
	envNamespace = "SDB_NAMESPACE"

	envAccessKeyID     = "AWS_ACCESS_KEY_ID"
	envSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	envSessionToken    = "AWS_SESSION_TOKEN"
)

// ConfigFromEnv returns DefaultConfig overridden by the SDB_* variables and
// the standard AWS credential variables. Unset variables keep their default.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.AccessKeyID = env(envAccessKeyID)
	cfg.SecretAccessKey = env(envSecretAccessKey)
	cfg.SessionToken = env(envSessionToken)

	if v := env(envHost); v != "" {
		cfg.Host = v
	}
	if v := env(envScheme); v != "" {
		cfg.Scheme = strings.ToLower(v)
		if env(envPort) == "" {
			cfg.Port = 0
		}
	}
	if v := env(envPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, &ConfigError{Field: "Port", Reason: fmt.Sprintf("%s=%q is not a number", envPort, v)}
		}
		cfg.Port = port
	}
	if v := env(envNilString); v != "" {
		cfg.NilString = v
	}
	if v := env(envNamespace); v != "" {
		cfg.Namespace = v
	}
	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
