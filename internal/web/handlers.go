package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	maxRequestBody = 1 << 20         // 1MB max request body
	maxQueryRunes  = 2000            // max user query length in runes
	requestTimeout = 3 * time.Minute // global timeout per streaming request
)

// decodeJSONRequest enforces method, body size and query limits shared by
// all POST endpoints. The target must have a Query() accessor via the
// queryCarrier interface.
func decodeJSONRequest(w http.ResponseWriter, r *http.Request, target queryCarrier) error {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return fmt.Errorf("method %s not allowed", r.Method)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return fmt.Errorf("decode request: %w", err)
	}

	query := strings.TrimSpace(target.UserQuery())
	if query == "" {
		http.Error(w, "Empty query", http.StatusBadRequest)
		return fmt.Errorf("empty query")
	}
	if len([]rune(query)) > maxQueryRunes {
		http.Error(w, "Query too long", http.StatusRequestEntityTooLarge)
		return fmt.Errorf("query too long: %d runes", len([]rune(query)))
	}
	return nil
}

// queryCarrier lets decodeJSONRequest validate the user query regardless of
// the concrete request shape.
type queryCarrier interface {
	UserQuery() string
}

// writeJSON renders v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing left to do but log.
		log.Printf("[Web] JSON encode error: %v", err)
	}
}
