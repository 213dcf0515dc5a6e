// Package main provides the Lambda entry point for tabular ingestion.
//
// It receives storage notifications over HTTP (API Gateway push) and loads
// CSV objects into the warehouse through the RDS Data API, provisioning
// the dataset and table on first use. Non-tabular objects are acknowledged
// and ignored so the three ingestion endpoints can share one notification
// topic.
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
	wh := lambdaboot.InitWarehouse(aws.Config)

	reader := storage.NewS3Reader(s3c.Client)
	dispatcher = ingest.NewDispatcher()
	dispatcher.Register(notification.TabularRecord, ingest.NewTabularPipeline(reader, wh))

	lambdaboot.StartupLog("tabular-ingest-lambda", initStart).
		Config("warehouseTable", wh.Table()).
		Log()
}

func main() {
	mux := http.NewServeMux()
	mux.Handle("/", ingest.Handler(dispatcher))

	adapter := httpadapter.NewV2(mux)
	lambda.Start(adapter.ProxyWithContext)
}
