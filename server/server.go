package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/gigapi/gigapi-metastore/core"
	"github.com/gigapi/gigapi-metastore/etl"
	"github.com/gigapi/gigapi-metastore/lake"
	"github.com/gigapi/gigapi-metastore/metastore"
)

const apiPrefix = "/catalog/v1"

// Server exposes the catalog and the query client over HTTP.
type Server struct {
	Lake  *lake.Lake
	Query core.QueryClient
}

func NewServer(l *lake.Lake, q core.QueryClient) *Server {
	return &Server{Lake: l, Query: q}
}

// Route is one endpoint of the server.
type Route struct {
	Path    string
	Methods []string
	Handler http.HandlerFunc
}

func (s *Server) Routes() []Route {
	table := apiPrefix + "/databases/{db}/tables/{table}"
	return []Route{
		{Path: "/health", Methods: []string{"GET", "OPTIONS"}, Handler: s.HandleHealth},
		{Path: apiPrefix + "/databases", Methods: []string{"GET"}, Handler: s.HandleDatabases},
		{Path: apiPrefix + "/databases/{db}/tables", Methods: []string{"GET"}, Handler: s.HandleTables},
		{Path: table, Methods: []string{"GET"}, Handler: s.HandleTable},
		{Path: table + "/files", Methods: []string{"GET"}, Handler: s.HandleFiles},
		{Path: table + "/files", Methods: []string{"DELETE"}, Handler: s.HandleDeleteFiles},
		{Path: table + "/columns", Methods: []string{"GET"}, Handler: s.HandleColumns},
		{Path: "/query", Methods: []string{"POST", "OPTIONS"}, Handler: s.HandleQuery},
	}
}

// RegisterRoutes adds the server routes to r.
func (s *Server) RegisterRoutes(r *mux.Router) {
	for _, route := range s.Routes() {
		r.HandleFunc(route.Path, route.Handler).Methods(route.Methods...)
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}

func (s *Server) Close() error {
	if s.Query != nil {
		return s.Query.Close()
	}
	return nil
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

var reqId int32

func requestContext(r *http.Request) *http.Request {
	ctx := core.WithDefaultLogger(r.Context(), fmt.Sprintf("req-%d", atomic.AddInt32(&reqId, 1)))
	return r.WithContext(ctx)
}

func addCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, metastore.ErrDatabaseNotFound),
		errors.Is(err, metastore.ErrTableNotFound),
		errors.Is(err, metastore.ErrSchemaUnavailable):
		return http.StatusNotFound
	case errors.Is(err, metastore.ErrPartitionArityMismatch),
		errors.Is(err, etl.ErrTask):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		core.Errorf(r.Context(), "%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	sendErrorResponse(w, err.Error(), status)
}

// location reads ?date= and ?values= into a lake.Location.
func location(r *http.Request) (lake.Location, error) {
	var loc lake.Location
	q := r.URL.Query()
	if d := q.Get("date"); d != "" {
		t, err := etl.ParseDate(d)
		if err != nil {
			return loc, err
		}
		loc.At = &t
	}
	if v, ok := q["values"]; ok {
		loc.Values = []string{}
		if len(v) > 0 && v[0] != "" {
			loc.Values = strings.Split(v[0], ",")
		}
	}
	return loc, nil
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	addCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"metastore": s.Lake.Metastore.Name(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
