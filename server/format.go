package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

type formatterFn func(data []map[string]any, w http.ResponseWriter) error

var formatters = map[string]formatterFn{
	"json":   JsonFormatter,
	"ndjson": NDJsonFormatter,
}

func JsonFormatter(data []map[string]any, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(QueryResponse{
		Results: ProcessResultsForJSON(data),
	})
}

func NDJsonFormatter(data []map[string]any, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)
	for _, row := range ProcessResultsForJSON(data) {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

// ProcessResultsForJSON renders int64 as strings and times as RFC3339.
func ProcessResultsForJSON(results []map[string]interface{}) []map[string]interface{} {
	processed := make([]map[string]interface{}, len(results))
	for i, row := range results {
		out := make(map[string]interface{}, len(row))
		for key, value := range row {
			switch v := value.(type) {
			case int64:
				out[key] = strconv.FormatInt(v, 10)
			case time.Time:
				out[key] = v.Format(time.RFC3339Nano)
			case []byte:
				out[key] = string(v)
			default:
				out[key] = v
			}
		}
		processed[i] = out
	}
	return processed
}
