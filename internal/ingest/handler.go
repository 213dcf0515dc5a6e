package ingest

import (
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Handler adapts a dispatcher to the HTTP push endpoint contract: POST one
// notification envelope, get 200 "OK", 400 "Bad Request", or 500
// "Internal Server Error" back as plain text.
func Handler(d *Dispatcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Warn().Err(err).Msg("Could not read request body")
			body = nil
		}

		result := d.Dispatch(r.Context(), body)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(result.Status.HTTPStatus())
		fmt.Fprint(w, result.Status.Text())
	})
}
