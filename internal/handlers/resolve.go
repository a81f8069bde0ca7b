package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"media-resolver/internal/logging"
	"media-resolver/internal/resolver"
)

// maxRequestBody caps resolve/validate request bodies at 1 MB.
const maxRequestBody = 1 << 20

// ResolveResponse is the resolve endpoint's payload.
type ResolveResponse struct {
	Candidates []resolver.Candidate `json:"candidates"`
	Count      int                  `json:"count"`
}

// Resolve runs the resolution pipeline for a query posted as JSON.
// With ?validate=1 the candidates are post-filtered so stale references
// never reach the caller.
func (h *Handlers) Resolve(w http.ResponseWriter, r *http.Request) {
	var query resolver.Query
	if err := decodeBody(r, &query); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	candidates, err := h.resolver.Resolve(r.Context(), query)
	if err != nil {
		logging.Error("resolve failed: %v", err)
		writeJSONError(w, "resolution failed", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("validate") == "1" {
		candidates = h.resolver.FilterValid(r.Context(), candidates)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ResolveResponse{
		Candidates: candidates,
		Count:      len(candidates),
	})
}

// ValidateRequest is the validate endpoint's input.
type ValidateRequest struct {
	URI string `json:"uri"`
}

// Validate checks a previously recorded file URI and reports whether it
// still resolves, where it resolves to now, or why it failed.
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.URI == "" {
		writeJSONError(w, "uri is required", http.StatusBadRequest)
		return
	}

	result := h.resolver.Validate(r.Context(), req.URI)
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, result)
}

// decodeBody strictly decodes a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	// Reject trailing garbage after the JSON document.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
