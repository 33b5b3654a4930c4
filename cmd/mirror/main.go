// Command mirror is a Lambda function applying DynamoDB Streams records to
// SimpleDB domains.
//
// Environment:
//
//	MIRROR_MAPPINGS  YAML list of table/domain/key/ttl mappings (required)
//	SDB_HOST         endpoint override; default derived from AWS_REGION
//	SDB_NIL_STRING   null sentinel; default "nil"
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/jacentio/simpledb/sdb"
	"github.com/jacentio/simpledb/stream"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	registry, err := stream.LoadRegistry([]byte(os.Getenv("MIRROR_MAPPINGS")))
	if err != nil {
		log.Fatalf("Failed to load mappings: %v", err)
	}
	if len(registry.Mappings()) == 0 {
		log.Fatal("MIRROR_MAPPINGS has no mappings")
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	cfg, err := sdb.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to read SimpleDB settings: %v", err)
	}
	if os.Getenv("SDB_HOST") == "" {
		cfg.Host = ""
	}
	cfg.Logger = logger

	client, err := sdb.NewFromAWSConfig(ctx, awsCfg, cfg)
	if err != nil {
		log.Fatalf("Failed to create SimpleDB client: %v", err)
	}

	handler := stream.NewHandler(client, registry, logger)
	lambda.Start(handler.HandleMirror)
}
