// Package serve runs the NDJSON match protocol over a reader/writer pair,
// typically stdin and stdout.
package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/engine"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// Version is the server protocol version
const Version = "1.0.0"

// Server answers match requests until its input closes
type Server struct {
	engine  *engine.Engine
	encoder *json.Encoder
	decoder *json.Decoder
	logger  *slog.Logger
}

// NewServer creates a new streaming server
func NewServer(e *engine.Engine, in io.Reader, out io.Writer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:  e,
		encoder: json.NewEncoder(out),
		decoder: json.NewDecoder(bufio.NewReader(in)),
		logger:  logger,
	}
}

// Run starts the server main loop
func (s *Server) Run(ctx context.Context) error {
	s.sendReady()

	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Process requests until input closes or context cancels
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// Drain any pending requests before handling EOF
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(ctx, req) {
						return nil
					}
				default:
					if err == io.EOF {
						return nil
					}
					s.sendError("decode", err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(ctx, req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(ctx context.Context, req Request) bool {
	switch req.Type {
	case "match":
		s.handleMatch(req.Payload)
	case "match_record":
		s.handleMatchRecord(req.Payload)
	case "match_batch":
		s.handleMatchBatch(ctx, req.Payload)
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	s.send("ready", ReadyData{Version: Version, Fields: types.Fields})
}

func (s *Server) handleMatch(payload json.RawMessage) {
	var p MatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("match", err.Error())
		return
	}
	field, ok := types.ParseField(p.Field)
	if !ok {
		s.sendError("match", fmt.Sprintf("%v: %q", engine.ErrUnknownField, p.Field))
		return
	}

	result, err := s.engine.MatchWithContext(field, p.Text, p.Context)
	if err != nil {
		s.sendError("match", err.Error())
		return
	}
	s.send("match", result)
}

func (s *Server) handleMatchRecord(payload json.RawMessage) {
	var rec types.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		s.sendError("match_record", err.Error())
		return
	}
	s.send("match_record", s.engine.MatchRecord(&rec))
}

func (s *Server) handleMatchBatch(ctx context.Context, payload json.RawMessage) {
	var p MatchBatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("match_batch", err.Error())
		return
	}

	results, err := s.engine.MatchBatch(ctx, p.Records)
	if err != nil {
		s.sendError("match_batch", err.Error())
		return
	}
	s.send("match_batch", BatchData{Results: results, Total: len(results)})
}

func (s *Server) send(respType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendError(respType, err.Error())
		return
	}
	if err := s.encoder.Encode(Response{Success: true, Type: respType, Data: data}); err != nil {
		s.logger.Error("writing response", "type", respType, "error", err)
	}
}

func (s *Server) sendError(reqType, msg string) {
	s.logger.Debug("request failed", "type", reqType, "error", msg)
	if err := s.encoder.Encode(Response{Success: false, Type: reqType, Error: msg}); err != nil {
		s.logger.Error("writing response", "type", reqType, "error", err)
	}
}
