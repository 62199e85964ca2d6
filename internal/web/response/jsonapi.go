// Package response writes JSON:API documents to HTTP responses.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/jobhunt-app/jobhunt/internal/jsonapi"
)

// MediaType is the official JSON:API media type.
const MediaType = "application/vnd.api+json"

// Write marshals payload and writes it with the JSON:API media type. The
// payload is marshaled before any headers go out, so a marshaling failure
// leaves the response untouched for the caller to handle.
func Write(w http.ResponseWriter, status int, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", MediaType)
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

// Error writes a JSON:API error envelope with a single detail string.
func Error(w http.ResponseWriter, status int, detail string) {
	// Marshaling a flat error document cannot fail.
	_ = Write(w, status, jsonapi.NewErrorDocument(detail))
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
