// Package main provides a command-line driver for the ingestion pipelines.
//
// It synthesizes the notification a storage event would deliver for the
// given bucket and key and dispatches it through the same code path the
// Lambdas run, with all three pipelines registered. Useful for reprocessing
// an object after a failed delivery or for exercising a deployment without
// publishing a real notification.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/fpineda/storage-ingest/internal/ingest"
	"github.com/fpineda/storage-ingest/internal/lambdaboot"
	"github.com/fpineda/storage-ingest/internal/logging"
	"github.com/fpineda/storage-ingest/internal/notification"
	"github.com/fpineda/storage-ingest/internal/ocr"
	"github.com/fpineda/storage-ingest/internal/storage"
)

// CLI flags
var (
	bucketFlag string
	keyFlag    string
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "ingest-cli",
	Short: "Dispatch a storage object through the ingestion pipelines",
	Long: `ingest-cli runs one object through the same dispatch path the ingestion
Lambdas use. The pipeline is picked from the object key suffix: images go
through text detection, .json objects into the document store, .csv objects
into the warehouse.

Configuration comes from the same environment variables the Lambdas read
(DOCSTORE_TABLE_NAME, WAREHOUSE_CLUSTER_ARN, ...). Pipelines whose
configuration is absent are skipped, so detecting text in an image needs no
warehouse credentials.

Examples:
  ingest-cli --bucket uploads --key scans/receipt.jpg
  ingest-cli -b uploads -k exports/users.json
  ingest-cli -b uploads -k exports/users.csv`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&bucketFlag, "bucket", "b", "", "Bucket holding the object (required)")
	rootCmd.Flags().StringVarP(&keyFlag, "key", "k", "", "Object key to ingest (required)")
	rootCmd.MarkFlagRequired("bucket")
	rootCmd.MarkFlagRequired("key")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	aws := lambdaboot.InitAWS()
	s3c := lambdaboot.InitS3(aws.Config)
	reader := storage.NewS3Reader(s3c.Client)

	dispatcher := ingest.NewDispatcher()
	registerImage(dispatcher, aws, s3c)
	registerStructured(dispatcher, aws, reader)
	registerTabular(dispatcher, aws, reader)

	body, err := json.Marshal(notification.Envelope{
		Message: &notification.Message{
			Attributes: map[string]string{
				"bucketId": bucketFlag,
				"objectId": keyFlag,
			},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build notification envelope")
	}

	start := time.Now()
	result := dispatcher.Dispatch(context.Background(), body)
	if result.Status != ingest.StatusOK {
		log.Fatal().
			Str("status", result.Status.Text()).
			Str("detail", result.Detail).
			Msg("Ingestion failed")
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("Ingestion complete")
	fmt.Println(result.Detail)
}

// registerImage wires the OCR pipeline when a Gemini key is reachable.
func registerImage(d *ingest.Dispatcher, aws lambdaboot.AWSClients, s3c lambdaboot.S3Clients) {
	if err := lambdaboot.LoadGeminiKey(aws.SSM); err != nil {
		log.Debug().Err(err).Msg("Gemini API key unavailable — image pipeline disabled")
		return
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	d.Register(notification.Image, ingest.NewImagePipeline(ocr.NewGeminiService(client, s3c.Presigner)))
}

// registerStructured wires the document pipeline when the table is
// configured.
func registerStructured(d *ingest.Dispatcher, aws lambdaboot.AWSClients, reader storage.Reader) {
	if os.Getenv("DOCSTORE_TABLE_NAME") == "" {
		log.Debug().Msg("DOCSTORE_TABLE_NAME not set — structured pipeline disabled")
		return
	}
	store := lambdaboot.InitDocStore(aws.Config)
	d.Register(notification.StructuredRecord, ingest.NewStructuredPipeline(reader, store, lambdaboot.Collection()))
}

// registerTabular wires the warehouse pipeline when the cluster is
// configured.
func registerTabular(d *ingest.Dispatcher, aws lambdaboot.AWSClients, reader storage.Reader) {
	if os.Getenv("WAREHOUSE_CLUSTER_ARN") == "" {
		log.Debug().Msg("WAREHOUSE_CLUSTER_ARN not set — tabular pipeline disabled")
		return
	}
	wh := lambdaboot.InitWarehouse(aws.Config)
	d.Register(notification.TabularRecord, ingest.NewTabularPipeline(reader, wh))
}
