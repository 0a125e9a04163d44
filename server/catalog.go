package server

import (
	"net/http"
	"slices"

	"github.com/gorilla/mux"

	"github.com/gigapi/gigapi-metastore/blobstore"
	"github.com/gigapi/gigapi-metastore/lake"
)

type DatabaseInfo struct {
	Name        string `json:"name"`
	Root        string `json:"root"`
	SchemaStore string `json:"schema_store,omitempty"`
	Granularity string `json:"granularity"`
	Tables      int    `json:"tables"`
}

type TableInfo struct {
	Database      string   `json:"database"`
	Name          string   `json:"name"`
	Path          string   `json:"path"`
	Location      string   `json:"location"`
	Bucket        string   `json:"bucket"`
	Key           string   `json:"key"`
	Schema        string   `json:"schema,omitempty"`
	Granularity   string   `json:"granularity"`
	Dialect       string   `json:"dialect"`
	PartitionKeys []string `json:"partition_keys,omitempty"`
}

func (s *Server) HandleDatabases(w http.ResponseWriter, r *http.Request) {
	addCORSHeaders(w)
	res := []DatabaseInfo{}
	for name, db := range s.Lake.Metastore.Databases() {
		res = append(res, DatabaseInfo{
			Name:        name,
			Root:        db.RootPath(),
			SchemaStore: db.SchemaStore(),
			Granularity: db.DefaultGranularity().String(),
			Tables:      db.Len(),
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) HandleTables(w http.ResponseWriter, r *http.Request) {
	r = requestContext(r)
	addCORSHeaders(w)
	db, err := s.Lake.Metastore.Database(mux.Vars(r)["db"])
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	names := slices.Collect(db.TableNames())
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) HandleTable(w http.ResponseWriter, r *http.Request) {
	r = requestContext(r)
	addCORSHeaders(w)
	vars := mux.Vars(r)
	t, err := s.Lake.Metastore.Table(vars["db"], vars["table"])
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	loc, err := location(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	info := TableInfo{
		Database:      vars["db"],
		Name:          t.Name(),
		Path:          t.Path(),
		Location:      t.Path(),
		Granularity:   t.Granularity().String(),
		Dialect:       t.Dialect().String(),
		PartitionKeys: t.PartitionKeys(),
	}
	if !t.Schema().IsZero() {
		info.Schema = t.Schema().String()
	}
	switch {
	case loc.Values != nil:
		p, err := t.Attach(loc.Values)
		if err != nil {
			s.sendError(w, r, err)
			return
		}
		info.Location = p.Path()
	case loc.At != nil:
		info.Location = t.PathAt(*loc.At)
	}
	info.Bucket, info.Key = blobstore.ParsePath(info.Location)
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) HandleFiles(w http.ResponseWriter, r *http.Request) {
	r = requestContext(r)
	addCORSHeaders(w)
	vars := mux.Vars(r)
	loc, err := location(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	meta, err := s.Lake.TableMetadata(r.Context(), vars["db"], vars["table"], loc)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if meta.Files == nil {
		meta.Files = []lake.FileInfo{}
	}
	writeJSON(w, http.StatusOK, meta)
}

// HandleDeleteFiles removes one partition. A date or partition values are required.
func (s *Server) HandleDeleteFiles(w http.ResponseWriter, r *http.Request) {
	r = requestContext(r)
	addCORSHeaders(w)
	vars := mux.Vars(r)
	loc, err := location(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if loc.At == nil && len(loc.Values) == 0 {
		sendErrorResponse(w, "date or values parameter is required", http.StatusBadRequest)
		return
	}
	if err := s.Lake.DeletePartition(r.Context(), vars["db"], vars["table"], loc); err != nil {
		s.sendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleColumns(w http.ResponseWriter, r *http.Request) {
	r = requestContext(r)
	addCORSHeaders(w)
	vars := mux.Vars(r)
	cols, err := s.Lake.Columns(r.Context(), vars["db"], vars["table"])
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}
