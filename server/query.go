package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gigapi/gigapi-metastore/core"
	"github.com/gigapi/gigapi-metastore/etl"
)

// QueryRequest is either raw SQL or a table scan between two dates.
type QueryRequest struct {
	Query  string `json:"query,omitempty"`
	Table  string `json:"table,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Format string `json:"format,omitempty"`
}

// QueryResponse represents a query API response
type QueryResponse struct {
	Query   string                   `json:"query,omitempty"`
	Results []map[string]interface{} `json:"results"`
}

// HandleQuery handles the /query endpoint
func (s *Server) HandleQuery(w http.ResponseWriter, r *http.Request) {
	r = requestContext(r)
	ctx := r.Context()
	addCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if s.Query == nil {
		sendErrorResponse(w, "no warehouse configured", http.StatusNotImplemented)
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	format := req.Format
	if f := r.URL.Query().Get("format"); f != "" {
		format = f
	}
	if format == "" {
		format = "json"
	}
	formatter, ok := formatters[format]
	if !ok {
		sendErrorResponse(w, "Unknown format "+format, http.StatusBadRequest)
		return
	}

	query := req.Query
	if query == "" {
		if req.Table == "" {
			sendErrorResponse(w, "Missing query parameter", http.StatusBadRequest)
			return
		}
		q, err := s.scanQuery(r, req)
		if err != nil {
			s.sendError(w, r, err)
			return
		}
		query = q
	}

	start := time.Now()
	results, err := s.Query.Query(ctx, query)
	if err != nil {
		sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	core.Infof(ctx, "query returned %d rows in %v", len(results), time.Since(start))
	if err := formatter(results, w); err != nil {
		core.Errorf(ctx, "failed to write results: %v", err)
	}
}

// scanQuery builds the query for a {"table": "db.table", "from", "to"} request.
// A missing bound defaults to the current day.
func (s *Server) scanQuery(r *http.Request, req QueryRequest) (string, error) {
	db, table, ok := strings.Cut(req.Table, ".")
	if !ok {
		return "", etl.NewTaskError("table must be db.table", map[string]any{"table": req.Table})
	}
	now := time.Now().UTC()
	from, to := now, now
	var err error
	if req.From != "" {
		if from, err = etl.ParseDate(req.From); err != nil {
			return "", err
		}
	}
	if req.To != "" {
		if to, err = etl.ParseDate(req.To); err != nil {
			return "", err
		}
	}
	return s.Lake.ScanQuery(r.Context(), db, table, from, to)
}
