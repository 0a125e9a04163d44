package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/gigapi/gigapi-metastore/config"
	"github.com/gigapi/gigapi-metastore/core"
	"github.com/gigapi/gigapi-metastore/etl"
	"github.com/gigapi/gigapi-metastore/kvstore"
	"github.com/gigapi/gigapi-metastore/metastore"
	"github.com/gigapi/gigapi-metastore/server"
)

func main() {
	configFlag := flag.String("config", os.Getenv("METASTORE_CONFIG"), "Path to the metastore config file")
	dumpFlag := flag.Bool("dump", false, "Print the registered tables and exit")
	pathFlag := flag.String("path", "", "Print the path of db.table and exit")
	dateFlag := flag.String("date", "", "Date used by -dump and -path (default now)")
	valuesFlag := flag.String("values", "", "Comma separated partition values used by -path")
	queryFlag := flag.String("query", "", "Execute a single warehouse query and exit")
	kvTablesFlag := flag.Bool("kv-tables", false, "List the DynamoDB tables and exit")
	kvScanFlag := flag.String("kv-scan", "", "Scan a DynamoDB table and exit")
	flag.Parse()

	if err := config.InitConfig(*configFlag); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Config
	logger, err := core.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	core.SetLogger(logger)
	ctx := core.WithDefaultLogger(context.Background(), "main")

	at := time.Now().UTC()
	if *dateFlag != "" {
		if at, err = etl.ParseDate(*dateFlag); err != nil {
			fatal(ctx, "invalid -date: %v", err)
		}
	}

	switch {
	case *dumpFlag || *pathFlag != "":
		m, err := metastore.FromConfig(cfg.Metastore)
		if err != nil {
			fatal(ctx, "failed to load metastore: %v", err)
		}
		if *dumpFlag {
			if err := m.Dump(os.Stdout, at); err != nil {
				fatal(ctx, "dump failed: %v", err)
			}
			return
		}
		p, err := tablePath(m, *pathFlag, *valuesFlag, at)
		if err != nil {
			fatal(ctx, "%v", err)
		}
		fmt.Println(p)
		return
	case *kvTablesFlag || *kvScanFlag != "":
		kv, err := kvstore.NewFromConfig(ctx, cfg.DynamoDB.Region, cfg.DynamoDB.Endpoint)
		if err != nil {
			fatal(ctx, "failed to create DynamoDB client: %v", err)
		}
		var out any
		if *kvTablesFlag {
			out, err = kv.ListTables(ctx)
		} else {
			out, err = kv.ScanAll(ctx, *kvScanFlag, nil)
		}
		if err != nil {
			fatal(ctx, "DynamoDB error: %v", err)
		}
		printJSON(ctx, out)
		return
	}

	srv, err := server.FromConfig(ctx, cfg, afero.NewOsFs())
	if err != nil {
		fatal(ctx, "failed to initialize server: %v", err)
	}
	defer srv.Close()

	if *queryFlag != "" {
		results, err := srv.Query.Query(ctx, *queryFlag)
		if err != nil {
			fatal(ctx, "query error: %v", err)
		}
		printJSON(ctx, server.ProcessResultsForJSON(results))
		return
	}

	core.Infof(ctx, "metastore server running at http://localhost:%d", cfg.Port)
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), srv.Handler()); err != nil {
			fatal(ctx, "failed to start main server: %v", err)
		}
	}()

	location := fmt.Sprintf("grpc://localhost:%d", cfg.FlightPort)
	flightSrv := server.NewFlightServer(srv.Lake, srv.Query, location)
	if err := server.StartFlightServer(cfg.FlightPort, flightSrv); err != nil {
		fatal(ctx, "failed to start flight server: %v", err)
	}
}

func tablePath(m *metastore.Metastore, name, values string, at time.Time) (string, error) {
	dbName, tableName, ok := strings.Cut(name, ".")
	if !ok {
		return "", fmt.Errorf("-path wants db.table, got %q", name)
	}
	t, err := m.Table(dbName, tableName)
	if err != nil {
		return "", err
	}
	if values != "" {
		return t.PathByValues(strings.Split(values, ","))
	}
	return t.PathAt(at), nil
}

func printJSON(ctx context.Context, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal(ctx, "failed to marshal results: %v", err)
	}
	fmt.Println(string(data))
}

func fatal(ctx context.Context, tpl string, args ...any) {
	core.Errorf(ctx, tpl, args...)
	fmt.Fprintf(os.Stderr, tpl+"\n", args...)
	os.Exit(1)
}
