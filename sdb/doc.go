// Package sdb is a client for the Amazon SimpleDB query API (version 2007-11-07).
//
// The client builds signed GET requests (signature version 2), flattens
// item/attribute/value structures into the service's indexed parameters,
// sends the request and decodes the XML response into typed results.
//
// # Configuration
//
// Only the credential pair is required:
//
//	client, err := sdb.New(sdb.Config{
//	    AccessKeyID:     "AKID",
//	    SecretAccessKey: "secret",
//	})
//
// Use [NewFromAWSConfig] to resolve credentials through the aws-sdk-go-v2
// provider chain, or [ConfigFromEnv] to read SDB_* variables.
//
// # Null values
//
// SimpleDB has no null. A null [Value] is written as Config.NilString
// (default "nil") and values equal to it decode back to null.
//
// # Operations
//
//	client.CreateDomain(ctx, "users")
//	client.PutAttributes(ctx, "users", "u1", sdb.Attributes{}.Add("name", "ada"), nil)
//	client.GetAttributes(ctx, "users", "u1")
//	client.Select(ctx, "select * from users", nil)
//
// Every operation goes through [Do], which callers can use directly with their
// own [Parser].
//
// # Errors
//
//   - [ErrConfiguration] - missing credentials or invalid settings
//   - [ErrEncoding] - a name or value was rejected before sending
//   - [ErrTransport] - no response was received
//   - [ErrDecoding] - the response body had an unexpected shape
//   - [ErrService] - the service returned an error document ([ServiceError])
//
// The client never retries.
package sdb
