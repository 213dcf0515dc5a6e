// Package main provides the Lambda entry point for structured-record
// ingestion.
//
// It receives storage notifications over HTTP (API Gateway push) and loads
// JSON record arrays into the document store as one atomic batch per
// object. Non-structured objects are acknowledged and ignored so the three
// ingestion endpoints can share one notification topic.
package main

import (
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/fpineda/storage-ingest/internal/ingest"
	"github.com/fpineda/storage-ingest/internal/lambdaboot"
	"github.com/fpineda/storage-ingest/internal/logging"
	"github.com/fpineda/storage-ingest/internal/notification"
	"github.com/fpineda/storage-ingest/internal/storage"
)

var dispatcher *ingest.Dispatcher

func init() {
	initStart := time.Now()
	logging.Init()

	aws := lambdaboot.InitAWS()
	s3c := lambdaboot.InitS3(aws.Config)
	store := lambdaboot.InitDocStore(aws.Config)
	collection := lambdaboot.Collection()

	reader := storage.NewS3Reader(s3c.Client)
	dispatcher = ingest.NewDispatcher()
	dispatcher.Register(notification.StructuredRecord, ingest.NewStructuredPipeline(reader, store, collection))

	lambdaboot.StartupLog("document-ingest-lambda", initStart).
		Table("docstore", store.TableName()).
		Config("collection", collection).
		Log()
}

func main() {
	mux := http.NewServeMux()
	mux.Handle("/", ingest.Handler(dispatcher))

	adapter := httpadapter.NewV2(mux)
	lambda.Start(adapter.ProxyWithContext)
}
