package ddbmap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Config controls how the mapping connects to DynamoDB. The zero value uses
// the default AWS credential chain (environment, shared config files, IMDS).
//
// Resolution happens once in New, in order of precedence:
//
//  1. Client, if set, is used directly.
//  2. AWSConfig, if set, constructs a DynamoDB client.
//  3. AccessKeyID/SecretAccessKey, Region and Profile are applied on top of
//     the default credential chain.
//
// There is no ambient or global state; everything the mapping needs is
// captured at construction.
type Config struct {
	// Client is a preconfigured DynamoDB client. When set, all other
	// connection fields are ignored.
	Client DynamoDBClient

	// AWSConfig is a preconfigured AWS configuration to build the client
	// from, for callers that already resolved their session elsewhere.
	AWSConfig *aws.Config

	// Region overrides the AWS region from the default chain.
	Region string

	// Profile selects a named profile from the shared config files.
	Profile string

	// AccessKeyID and SecretAccessKey configure static credentials.
	// Both must be set together; SessionToken is optional.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Logger receives debug records for each remote operation.
	// Defaults to slog.Default.
	Logger *slog.Logger
}

// resolveClient builds the DynamoDB client described by the configuration.
func (c Config) resolveClient(ctx context.Context) (DynamoDBClient, error) {
	if c.Client != nil {
		return c.Client, nil
	}
	if c.AWSConfig != nil {
		return dynamodb.NewFromConfig(*c.AWSConfig), nil
	}

	var opts []func(*config.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	if c.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(c.Profile))
	}
	if c.AccessKeyID != "" || c.SecretAccessKey != "" {
		if c.AccessKeyID == "" || c.SecretAccessKey == "" {
			return nil, fmt.Errorf("ddbmap: both AccessKeyID and SecretAccessKey must be set for static credentials")
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ddbmap: failed to load AWS configuration: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
