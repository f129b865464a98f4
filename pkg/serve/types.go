package serve

import (
	"encoding/json"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "match" | "match_record" | "match_batch" | "close"
	Payload json.RawMessage `json:"payload"`
}

// MatchPayload is the payload for "match" requests. Context is the razor
// format and only affects blades.
type MatchPayload struct {
	Field   string `json:"field"`
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}

// MatchBatchPayload is the payload for "match_batch" requests
type MatchBatchPayload struct {
	Records []types.Record `json:"records"`
}

// BatchData is the data field for "match_batch" responses
type BatchData struct {
	Results []*types.RecordResult `json:"results"`
	Total   int                   `json:"total"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready" | "match" | "match_record" | "match_batch" | "decode" | "unknown"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version string        `json:"version"`
	Fields  []types.Field `json:"fields"`
}
