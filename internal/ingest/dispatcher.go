// Package ingest routes storage notifications to the pipeline matching the
// object's file class and normalizes the outcome.
//
// One invocation is one sequential unit of work: parse envelope → classify
// → run the registered pipeline → done. There are no loops and no retries;
// redelivery is the notification transport's job, so every pipeline must
// tolerate being re-run for the same object.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpineda/storage-ingest/internal/metrics"
	"github.com/fpineda/storage-ingest/internal/notification"
)

// metricsNamespace is the CloudWatch EMF namespace for all pipelines.
const metricsNamespace = "StorageIngest"

// Pipeline processes one classified object and returns a human-readable
// detail for the result.
type Pipeline interface {
	Process(ctx context.Context, ref notification.ObjectRef) (string, error)
}

// Dispatcher owns the class → pipeline routing table. Each entry point
// registers only the pipeline it serves; classes without a registered
// pipeline are acknowledged and ignored.
type Dispatcher struct {
	pipelines map[notification.FileClass]Pipeline
}

// NewDispatcher creates a dispatcher with no registered pipelines.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{pipelines: make(map[notification.FileClass]Pipeline)}
}

// Register routes objects of the given class to p.
func (d *Dispatcher) Register(class notification.FileClass, p Pipeline) {
	d.pipelines[class] = p
}

// Dispatch handles one raw notification body end to end.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) Result {
	start := time.Now()

	ref, err := notification.ParseEnvelope(body)
	if err != nil {
		// Short-circuit: no classification, no downstream call.
		return Result{Status: StatusBadRequest, Detail: err.Error()}
	}

	class := notification.Classify(ref.Key)
	rec := metrics.New(metricsNamespace).
		Dimension("Pipeline", class.String()).
		Property("bucket", ref.Bucket).
		Property("key", ref.Key)

	pipeline, ok := d.pipelines[class]
	if !ok {
		log.Info().Str("key", ref.Key).Str("class", class.String()).Msg("Object not handled by this endpoint — ignored")
		rec.Count("ObjectsIgnored").Flush()
		return Result{Status: StatusOK, Detail: fmt.Sprintf("ignored %s object: %s", class, ref.Key)}
	}

	log.Info().Str("bucket", ref.Bucket).Str("key", ref.Key).Str("class", class.String()).Msg("Processing object")

	detail, err := pipeline.Process(ctx, ref)
	elapsed := time.Since(start)
	rec.Metric("ProcessingMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds)

	if err != nil {
		result := classifyFailure(err)
		log.Error().Err(err).Str("key", ref.Key).Str("status", result.Status.Text()).Msg("Pipeline failed")
		rec.Count("ObjectsFailed").Property("error", err.Error()).Flush()
		return result
	}

	log.Info().Str("key", ref.Key).Dur("elapsed", elapsed).Str("detail", detail).Msg("Object processed")
	rec.Count("ObjectsProcessed").Flush()
	return Result{Status: StatusOK, Detail: detail}
}

// classifyFailure maps pipeline errors onto the response taxonomy: payload
// problems are the client's fault, everything else is a downstream failure
// reported loudly so the transport redelivers.
func classifyFailure(err error) Result {
	var malformed *MalformedPayloadError
	if errors.As(err, &malformed) {
		return Result{Status: StatusBadRequest, Detail: err.Error()}
	}
	return Result{Status: StatusError, Detail: err.Error()}
}
