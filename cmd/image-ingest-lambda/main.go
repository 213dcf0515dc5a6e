// Package main provides the Lambda entry point for image ingestion.
//
// It receives storage notifications over HTTP (API Gateway push), and for
// image objects runs text detection via Gemini, passing the object by
// reference as a presigned S3 URL. Non-image objects are acknowledged and
// ignored so the three ingestion endpoints can share one notification
// topic.
//
// The Gemini API key is loaded from SSM Parameter Store at cold start
// unless GEMINI_API_KEY is already set.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpineda/storage-ingest/internal/ingest"
	"github.com/fpineda/storage-ingest/internal/lambdaboot"
	"github.com/fpineda/storage-ingest/internal/logging"
	"github.com/fpineda/storage-ingest/internal/notification"
	"github.com/fpineda/storage-ingest/internal/ocr"
)

var dispatcher *ingest.Dispatcher

func init() {
	initStart := time.Now()
	logging.Init()

	aws := lambdaboot.InitAWS()
	s3c := lambdaboot.InitS3(aws.Config)
	if err := lambdaboot.LoadGeminiKey(aws.SSM); err != nil {
		log.Fatal().Err(err).Msg("Failed to load Gemini API key")
	}

	geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	ocrService := ocr.NewGeminiService(geminiClient, s3c.Presigner)
	dispatcher = ingest.NewDispatcher()
	dispatcher.Register(notification.Image, ingest.NewImagePipeline(ocrService))

	lambdaboot.StartupLog("image-ingest-lambda", initStart).
		SSMParam("geminiApiKey", lambdaboot.GeminiKeyParam).
		Config("model", ocr.DefaultModel).
		Log()
}

func main() {
	mux := http.NewServeMux()
	mux.Handle("/", ingest.Handler(dispatcher))

	adapter := httpadapter.NewV2(mux)
	lambda.Start(adapter.ProxyWithContext)
}
