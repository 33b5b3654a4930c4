//go:build e2e

// Package e2e contains end-to-end integration tests against the real SimpleDB
// endpoint and DynamoDB.
// Run with: go test -tags=e2e -v ./e2e/...
//
// Credentials come from the default AWS chain; set SDB_E2E_PROFILE to use a
// named profile and SDB_E2E_REGION to pick a region other than us-east-1.
package e2e

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jacentio/simpledb/migrate"
	"github.com/jacentio/simpledb/sdb"
)

// Domain and table names are unique per test run to avoid conflicts
const namePrefix = "simpledb-e2e-test"

var (
	testID        string
	itemsDomain   string
	emptyDomain   string
	migrateDomain string
	targetTable   string

	client    *sdb.Client
	ddbClient *dynamodb.Client
)

func TestMain(m *testing.M) {
	testID = uuid.New().String()[:8]
	itemsDomain = fmt.Sprintf("%s-%s-items", namePrefix, testID)
	emptyDomain = fmt.Sprintf("%s-%s-empty", namePrefix, testID)
	migrateDomain = fmt.Sprintf("%s-%s-migrate", namePrefix, testID)
	targetTable = fmt.Sprintf("%s-%s-target", namePrefix, testID)

	fmt.Printf("Test ID: %s\n", testID)
	fmt.Printf("Domains: %s, %s, %s\n", itemsDomain, emptyDomain, migrateDomain)
	fmt.Printf("Table: %s\n", targetTable)

	ctx := context.Background()
	var loadOpts []func(*config.LoadOptions) error
	if p := os.Getenv("SDB_E2E_PROFILE"); p != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(p))
	}
	region := os.Getenv("SDB_E2E_REGION")
	if region == "" {
		region = "us-east-1"
	}
	loadOpts = append(loadOpts, config.WithRegion(region))

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		fmt.Printf("Failed to load AWS config: %v\n", err)
		os.Exit(1)
	}

	client, err = sdb.NewFromAWSConfig(ctx, cfg, sdb.Config{})
	if err != nil {
		fmt.Printf("Failed to create SimpleDB client: %v\n", err)
		os.Exit(1)
	}
	ddbClient = dynamodb.NewFromConfig(cfg)

	if err := setup(ctx); err != nil {
		fmt.Printf("Failed to set up: %v\n", err)
		teardown(ctx)
		os.Exit(1)
	}

	code := m.Run()

	teardown(ctx)
	os.Exit(code)
}

func setup(ctx context.Context) error {
	fmt.Println("Creating test domains and table...")
	for _, d := range []string{itemsDomain, emptyDomain, migrateDomain} {
		if _, err := client.CreateDomain(ctx, d); err != nil {
			return fmt.Errorf("create domain %s: %w", d, err)
		}
	}

	_, err := ddbClient.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(targetTable),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", targetTable, err)
	}
	waiter := dynamodb.NewTableExistsWaiter(ddbClient)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(targetTable)}, 2*time.Minute); err != nil {
		return fmt.Errorf("wait for table %s: %w", targetTable, err)
	}
	fmt.Println("Setup complete")
	return nil
}

func teardown(ctx context.Context) {
	fmt.Println("Deleting test domains and table...")
	for _, d := range []string{itemsDomain, emptyDomain, migrateDomain} {
		if _, err := client.DeleteDomain(ctx, d); err != nil {
			fmt.Printf("Failed to delete domain %s: %v\n", d, err)
		}
	}
	if _, err := ddbClient.DeleteTable(ctx, &dynamodb.DeleteTableInput{TableName: aws.String(targetTable)}); err != nil {
		fmt.Printf("Failed to delete table %s: %v\n", targetTable, err)
	}
}

// eventually polls check until it succeeds; reads are eventually consistent.
func eventually(t *testing.T, check func() error) {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for {
		err := check()
		if err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met: %v", err)
		}
		time.Sleep(time.Second)
	}
}

// --- Domain Tests ---

func TestListDomains_ContainsTestDomains(t *testing.T) {
	ctx := context.Background()

	found := map[string]bool{}
	input := &sdb.ListDomainsInput{MaxNumberOfDomains: aws.Int32(100)}
	for {
		res, err := client.ListDomains(ctx, input)
		if err != nil {
			t.Fatalf("ListDomains failed: %v", err)
		}
		for _, d := range res.Domains {
			found[d] = true
		}
		if res.NextToken == "" {
			break
		}
		input.NextToken = aws.String(res.NextToken)
	}

	for _, d := range []string{itemsDomain, emptyDomain, migrateDomain} {
		if !found[d] {
			t.Errorf("expected domain %s to be listed", d)
		}
	}
}

func TestCreateDomain_Idempotent(t *testing.T) {
	if _, err := client.CreateDomain(context.Background(), emptyDomain); err != nil {
		t.Errorf("expected second create to succeed, got %v", err)
	}
}

func TestDomainMetadata_EmptyDomain(t *testing.T) {
	md, err := client.DomainMetadata(context.Background(), emptyDomain)
	if err != nil {
		t.Fatalf("DomainMetadata failed: %v", err)
	}
	if md.ItemCount != 0 {
		t.Errorf("expected 0 items, got %d", md.ItemCount)
	}
	if md.RequestID == "" {
		t.Error("expected a request id")
	}
}

func TestDomainMetadata_NoSuchDomain(t *testing.T) {
	_, err := client.DomainMetadata(context.Background(), namePrefix+"-missing-"+testID)
	if !sdb.IsNotFound(err) {
		t.Fatalf("expected NoSuchDomain, got %v", err)
	}
	var se *sdb.ServiceError
	if !errors.As(err, &se) || se.RequestID == "" {
		t.Errorf("expected service error with request id, got %v", err)
	}
}

// --- Item Tests ---

func TestPutGet_RoundTrip(t *testing.T) {
	ctx := context.Background()
	item := "roundtrip-" + uuid.New().String()[:8]

	attrs := sdb.Attributes{}.Add("name", "ada").Add("tag", "a", "b")
	attrs["gone"] = []sdb.Value{sdb.Null()}
	if _, err := client.PutAttributes(ctx, itemsDomain, item, attrs, nil); err != nil {
		t.Fatalf("PutAttributes failed: %v", err)
	}

	eventually(t, func() error {
		res, err := client.GetAttributes(ctx, itemsDomain, item)
		if err != nil {
			return err
		}
		if len(res.Attributes["tag"]) != 2 {
			return fmt.Errorf("expected 2 tag values, got %v", res.Attributes["tag"])
		}
		if v, ok := res.Attributes.First("gone"); !ok || !v.IsNull() {
			return fmt.Errorf("expected gone to be null, got %v", res.Attributes["gone"])
		}
		return nil
	})
}

func TestPut_Replace(t *testing.T) {
	ctx := context.Background()
	item := "replace-" + uuid.New().String()[:8]

	if _, err := client.PutAttributes(ctx, itemsDomain, item, sdb.Attributes{}.Add("v", "1"), nil); err != nil {
		t.Fatalf("first put failed: %v", err)
	}
	if _, err := client.PutAttributes(ctx, itemsDomain, item, sdb.Attributes{}.Add("v", "2"), []string{"v"}); err != nil {
		t.Fatalf("replace put failed: %v", err)
	}

	eventually(t, func() error {
		res, err := client.GetAttributes(ctx, itemsDomain, item, "v")
		if err != nil {
			return err
		}
		if len(res.Attributes["v"]) != 1 || res.Attributes["v"][0].String() != "2" {
			return fmt.Errorf("expected v=[2], got %v", res.Attributes["v"])
		}
		return nil
	})
}

func TestDeleteAttributes_WholeItem(t *testing.T) {
	ctx := context.Background()
	item := "delete-" + uuid.New().String()[:8]

	if _, err := client.PutAttributes(ctx, itemsDomain, item, sdb.Attributes{}.Add("x", "1"), nil); err != nil {
		t.Fatalf("PutAttributes failed: %v", err)
	}
	if _, err := client.DeleteAttributes(ctx, itemsDomain, item, nil); err != nil {
		t.Fatalf("DeleteAttributes failed: %v", err)
	}

	eventually(t, func() error {
		res, err := client.GetAttributes(ctx, itemsDomain, item)
		if err != nil {
			return err
		}
		if len(res.Attributes) != 0 {
			return fmt.Errorf("expected no attributes, got %v", res.Attributes)
		}
		return nil
	})
}

func TestBatchPut_SelectAll(t *testing.T) {
	ctx := context.Background()
	group := "batch-" + uuid.New().String()[:8]

	items := sdb.Items{}
	for i := 0; i < 10; i++ {
		items[fmt.Sprintf("%s-%02d", group, i)] = sdb.Attributes{}.Add("group", group).Add("n", strconv.Itoa(i))
	}
	if _, err := client.BatchPutAttributes(ctx, itemsDomain, items, nil); err != nil {
		t.Fatalf("BatchPutAttributes failed: %v", err)
	}

	expr := fmt.Sprintf("select * from `%s` where `group` = '%s' limit 3", itemsDomain, group)
	eventually(t, func() error {
		res, err := client.SelectAll(ctx, expr)
		if err != nil {
			return err
		}
		if len(res.Items) != 10 {
			return fmt.Errorf("expected 10 items, got %d", len(res.Items))
		}
		return nil
	})
}

// --- Migration Tests ---

func TestMigrate_IntoDynamoDB(t *testing.T) {
	ctx := context.Background()
	domain := migrateDomain

	for i := 0; i < 5; i++ {
		attrs := sdb.Attributes{}.Add("n", strconv.Itoa(i))
		if _, err := client.PutAttributes(ctx, domain, fmt.Sprintf("m%d", i), attrs, nil); err != nil {
			t.Fatalf("PutAttributes failed: %v", err)
		}
	}
	eventually(t, func() error {
		res, err := client.SelectAll(ctx, "select itemName() from "+migrate.QuoteName(domain))
		if err != nil {
			return err
		}
		if len(res.Items) != 5 {
			return fmt.Errorf("expected 5 items, got %d", len(res.Items))
		}
		return nil
	})

	stats, err := migrate.New(client, ddbClient, migrate.Config{Table: targetTable}).Run(ctx, domain)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Items != 5 {
		t.Errorf("expected 5 items migrated, got %d", stats.Items)
	}

	out, err := ddbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(targetTable),
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "m3"}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if v, ok := out.Item["n"].(*types.AttributeValueMemberS); !ok || v.Value != "3" {
		t.Errorf("expected n=3, got %#v", out.Item["n"])
	}
}
