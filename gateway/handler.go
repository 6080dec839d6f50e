package gateway

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/goliatone/go-chatrelay/core"
)

// maxBodyBytes bounds inbound webhook bodies; anything larger is rejected
// before decoding.
const maxBodyBytes = 4 << 20

type webhookResponse struct {
	OK    bool   `json:"ok"`
	Event string `json:"event,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewHTTPHandler wraps the processor in the webhook endpoint contract:
// POST only, JSON body, 200 {"ok":true} on acceptance and 500 {"ok":false}
// when the pipeline aborts before dispatch.
func NewHTTPHandler(processor *Processor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, webhookResponse{
				OK:    false,
				Error: "method not allowed",
			})
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, webhookResponse{
				OK:    false,
				Error: "unable to read request body",
			})
			return
		}
		if len(body) > maxBodyBytes {
			writeJSON(w, http.StatusRequestEntityTooLarge, webhookResponse{
				OK:    false,
				Error: "request body too large",
			})
			return
		}

		result, err := processor.Process(r.Context(), body)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, webhookResponse{
				OK:    false,
				Error: err.Error(),
			})
			return
		}
		response := webhookResponse{OK: true}
		if result.Kind != core.KindNone {
			response.Event = string(result.Kind)
		}
		writeJSON(w, http.StatusOK, response)
	})
}

func writeJSON(w http.ResponseWriter, status int, body webhookResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
