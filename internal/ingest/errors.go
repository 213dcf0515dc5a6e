package ingest

import "fmt"

// MalformedPayloadError reports structured content that is not a valid
// array-of-objects document. It is the only parse failure surfaced to the
// notifying client as a bad request; the tabular pipeline deliberately
// skips unparseable rows instead.
type MalformedPayloadError struct {
	Key    string
	Reason string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload %s: %s", e.Key, e.Reason)
}

// FetchError reports a failure reading the notified object from storage.
type FetchError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch object %s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UpstreamError reports a downstream capability failure (OCR, document
// store, warehouse). The invocation fails loudly so the notification
// transport redelivers; no internal retry is attempted.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
