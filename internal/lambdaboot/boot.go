// Package lambdaboot provides the shared cold-start bootstrap for the
// ingestion Lambdas. Each entry point's init() composes these helpers:
// load AWS config, build the clients it needs, resolve identifiers from
// the environment, and emit one startup log event.
//
// Required configuration is fatal when missing: a misconfigured Lambda
// should fail at cold start, not on its first notification.
package lambdaboot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpineda/storage-ingest/internal/docstore"
	"github.com/fpineda/storage-ingest/internal/logging"
	"github.com/fpineda/storage-ingest/internal/warehouse"
)

// AWSClients holds the core AWS SDK handles shared across entry points.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// S3Clients bundles the S3 client with its presigner. The bucket is not
// resolved here: it arrives in every notification envelope.
type S3Clients struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
}

// InitAWS loads the default AWS config and the SSM client.
func InitAWS() AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{Config: cfg, SSM: ssm.NewFromConfig(cfg)}
}

// InitS3 creates the S3 client and presigner.
func InitS3(cfg aws.Config) S3Clients {
	client := s3.NewFromConfig(cfg)
	return S3Clients{Client: client, Presigner: s3.NewPresignClient(client)}
}

// InitDocStore creates the document store from DOCSTORE_TABLE_NAME.
// Fatals if the table is not configured.
func InitDocStore(cfg aws.Config) *docstore.DynamoStore {
	tableName := os.Getenv("DOCSTORE_TABLE_NAME")
	if tableName == "" {
		log.Fatal().Str("envVar", "DOCSTORE_TABLE_NAME").Msg("Document store table is required")
	}
	return docstore.NewDynamoStore(dynamodb.NewFromConfig(cfg), tableName)
}

// Collection returns the document collection name, DOCSTORE_COLLECTION or
// the default.
func Collection() string {
	return envOrDefault("DOCSTORE_COLLECTION", "users")
}

// InitWarehouse creates the warehouse client from the WAREHOUSE_* variables.
// Cluster and secret ARNs and the database are required; dataset and table
// have defaults matching the fixed ingestion schema.
func InitWarehouse(cfg aws.Config) *warehouse.DataAPIClient {
	whCfg := warehouse.Config{
		ClusterARN: mustEnv("WAREHOUSE_CLUSTER_ARN"),
		SecretARN:  mustEnv("WAREHOUSE_SECRET_ARN"),
		Database:   mustEnv("WAREHOUSE_DATABASE"),
		Dataset:    envOrDefault("WAREHOUSE_DATASET", "users"),
		Table:      envOrDefault("WAREHOUSE_TABLE", "personal_information_of_users"),
	}
	return warehouse.NewDataAPIClient(rdsdata.NewFromConfig(cfg), whCfg)
}

// GeminiKeyParam is the default SSM parameter holding the Gemini API key.
const GeminiKeyParam = "/storage-ingest/prod/gemini-api-key"

// LoadGeminiKey fetches the Gemini API key from SSM Parameter Store unless
// GEMINI_API_KEY is already set.
func LoadGeminiKey(ssmClient *ssm.Client) error {
	if os.Getenv("GEMINI_API_KEY") != "" {
		return nil
	}
	paramName := envOrDefault("SSM_API_KEY_PARAM", GeminiKeyParam)

	start := time.Now()
	result, err := ssmClient.GetParameter(context.Background(), &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("read Gemini API key from SSM parameter %s: %w", paramName, err)
	}
	os.Setenv("GEMINI_API_KEY", *result.Parameter.Value)
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(start)).Msg("Gemini API key loaded from SSM")
	return nil
}

// StartupLog begins the cold-start summary for an entry point.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}

func mustEnv(name string) string {
	v := os.Getenv(name)
	if v == "" {
		log.Fatal().Str("envVar", name).Msg("Required environment variable is not set")
	}
	return v
}

func envOrDefault(name, defaultVal string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return defaultVal
}
