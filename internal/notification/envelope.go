// Package notification parses inbound object-storage notification envelopes
// and classifies the named object by file extension.
//
// The notification transport POSTs a JSON envelope for every object created
// in the watched bucket:
//
//	{"message": {"attributes": {"objectId": "...", "bucketId": "..."}}}
//
// A body without a message field is a malformed request, not a valid
// "no object" event. Missing attributes default to the empty string.
package notification

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
)

// ErrMalformedRequest is returned when the request body is empty, is not
// valid JSON, or lacks the message field.
var ErrMalformedRequest = errors.New("malformed notification request")

// Envelope is the wire shape of an inbound notification.
type Envelope struct {
	Message *Message `json:"message"`
}

// Message carries the object metadata attributes of a notification.
type Message struct {
	Attributes map[string]string `json:"attributes"`
}

// ObjectRef identifies one object in the storage bucket. It is constructed
// once per invocation and never persisted.
type ObjectRef struct {
	Bucket string
	Key    string
}

// ParseEnvelope extracts the object reference from a raw notification body.
// Absent attributes are not an error — only a missing envelope or missing
// message field is.
func ParseEnvelope(body []byte) (ObjectRef, error) {
	if len(body) == 0 {
		log.Warn().Msg("No notification message received")
		return ObjectRef{}, ErrMalformedRequest
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Warn().Err(err).Msg("Notification body is not valid JSON")
		return ObjectRef{}, ErrMalformedRequest
	}
	if env.Message == nil {
		log.Warn().Msg("No message field in notification")
		return ObjectRef{}, ErrMalformedRequest
	}

	ref := ObjectRef{
		Bucket: env.Message.Attributes["bucketId"],
		Key:    env.Message.Attributes["objectId"],
	}
	log.Debug().Str("bucket", ref.Bucket).Str("key", ref.Key).Msg("Notification envelope parsed")
	return ref, nil
}
