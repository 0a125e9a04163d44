package server

import (
	"context"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/flight"
	flightgen "github.com/apache/arrow/go/v14/arrow/flight/gen/flight"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/gigapi/gigapi-metastore/core"
	"github.com/gigapi/gigapi-metastore/lake"
)

// catalogPath is the descriptor path listing every registered table.
const catalogPath = "catalog"

var timestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

// FlightServer serves catalog listings and warehouse queries as Arrow Flight streams.
//
// Descriptors:
//   - PATH ["catalog"]: one row per table.
//   - PATH [db, table]: the files stored for the table.
//   - CMD: a CommandStatementQuery (or plain SQL text) run on the query client.
type FlightServer struct {
	flightgen.UnimplementedFlightServiceServer
	lake     *lake.Lake
	query    core.QueryClient
	location string
	mem      memory.Allocator

	mu      sync.Mutex
	results map[string]arrow.Record
}

func NewFlightServer(l *lake.Lake, q core.QueryClient, location string) *FlightServer {
	return &FlightServer{
		lake:     l,
		query:    q,
		location: location,
		mem:      memory.DefaultAllocator,
		results:  make(map[string]arrow.Record),
	}
}

func (s *FlightServer) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	rec, err := s.record(ctx, desc)
	if err != nil {
		core.Errorf(ctx, "flight info for %v failed: %v", desc.Path, err)
		return nil, err
	}
	ticket := s.store(rec)
	return &flight.FlightInfo{
		Schema:           flight.SerializeSchema(rec.Schema(), s.mem),
		FlightDescriptor: desc,
		Endpoint: []*flight.FlightEndpoint{{
			Ticket:   &flight.Ticket{Ticket: []byte(ticket)},
			Location: []*flight.Location{{Uri: s.location}},
		}},
		TotalRecords: rec.NumRows(),
		TotalBytes:   -1,
	}, nil
}

func (s *FlightServer) record(ctx context.Context, desc *flight.FlightDescriptor) (arrow.Record, error) {
	switch desc.Type {
	case flight.DescriptorPATH:
		switch {
		case len(desc.Path) == 1 && desc.Path[0] == catalogPath:
			return s.catalogRecord()
		case len(desc.Path) == 2:
			return s.filesRecord(ctx, desc.Path[0], desc.Path[1])
		}
		return nil, status.Errorf(codes.InvalidArgument, "unknown path %v", desc.Path)
	case flight.DescriptorCMD:
		if s.query == nil {
			return nil, status.Error(codes.FailedPrecondition, "no warehouse configured")
		}
		query, err := statementQuery(desc.Cmd)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "failed to decode command: %v", err)
		}
		core.Infof(ctx, "executing flight query: %s", query)
		rows, err := s.query.Query(ctx, query)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "failed to execute query: %v", err)
		}
		return recordFromRows(s.mem, columnsOf(rows), rows), nil
	}
	return nil, status.Errorf(codes.InvalidArgument, "unsupported flight descriptor type: %v", desc.Type)
}

func (s *FlightServer) catalogRecord() (arrow.Record, error) {
	var rows []map[string]any
	for dbName, db := range s.lake.Metastore.Databases() {
		for _, t := range db.Tables() {
			rows = append(rows, map[string]any{
				"database":       dbName,
				"table":          t.Name(),
				"path":           t.Path(),
				"schema":         t.Schema().String(),
				"granularity":    t.Granularity().String(),
				"dialect":        t.Dialect().String(),
				"partition_keys": strings.Join(t.PartitionKeys(), ","),
			})
		}
	}
	cols := []string{"database", "table", "path", "schema", "granularity", "dialect", "partition_keys"}
	return recordFromRows(s.mem, cols, rows), nil
}

func (s *FlightServer) filesRecord(ctx context.Context, db, table string) (arrow.Record, error) {
	files, err := s.lake.ListFiles(ctx, db, table, lake.Location{})
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	rows := make([]map[string]any, len(files))
	for i, f := range files {
		rows[i] = map[string]any{
			"uri":           f.URI,
			"size_bytes":    f.SizeBytes,
			"last_modified": f.LastModified,
		}
	}
	cols := []string{"uri", "size_bytes", "last_modified"}
	return recordFromRows(s.mem, cols, rows), nil
}

// statementQuery extracts SQL from a packed CommandStatementQuery, or takes
// the command bytes as SQL text.
func statementQuery(cmd []byte) (string, error) {
	var msg anypb.Any
	if err := proto.Unmarshal(cmd, &msg); err == nil && msg.TypeUrl != "" {
		var q flightgen.CommandStatementQuery
		if err := msg.UnmarshalTo(&q); err != nil {
			return "", err
		}
		return q.GetQuery(), nil
	}
	query := strings.Join(strings.Fields(string(cmd)), " ")
	if query == "" {
		return "", fmt.Errorf("empty query")
	}
	return query, nil
}

func (s *FlightServer) store(rec arrow.Record) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.results[id] = rec
	s.mu.Unlock()
	return id
}

func (s *FlightServer) take(id string) (arrow.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.results[id]
	delete(s.results, id)
	return rec, ok
}

// DoGet streams the record stored for ticket. Tickets are single use.
func (s *FlightServer) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	rec, ok := s.take(string(ticket.Ticket))
	if !ok {
		return status.Errorf(codes.NotFound, "no results found for ticket: %s", ticket.Ticket)
	}
	defer rec.Release()

	w := flight.NewRecordWriter(stream, ipc.WithSchema(rec.Schema()))
	if err := w.Write(rec); err != nil {
		return fmt.Errorf("failed to write record batch: %w", err)
	}
	return w.Close()
}

// ListFlights announces one flight per registered table.
func (s *FlightServer) ListFlights(_ *flight.Criteria, stream flight.FlightService_ListFlightsServer) error {
	for dbName, db := range s.lake.Metastore.Databases() {
		for name := range db.TableNames() {
			err := stream.Send(&flight.FlightInfo{
				FlightDescriptor: &flight.FlightDescriptor{
					Type: flight.DescriptorPATH,
					Path: []string{dbName, name},
				},
				TotalRecords: -1,
				TotalBytes:   -1,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func columnsOf(rows []map[string]any) []string {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	slices.Sort(cols)
	return cols
}

// inferType picks the arrow type of a column from its first non-null value.
func inferType(col string, rows []map[string]any) arrow.DataType {
	for _, row := range rows {
		switch row[col].(type) {
		case nil:
			continue
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			return arrow.PrimitiveTypes.Int64
		case float32, float64:
			return arrow.PrimitiveTypes.Float64
		case bool:
			return arrow.FixedWidthTypes.Boolean
		case time.Time:
			return timestampType
		}
		return arrow.BinaryTypes.String
	}
	return arrow.BinaryTypes.String
}

func recordFromRows(mem memory.Allocator, columns []string, rows []map[string]any) arrow.Record {
	fields := make([]arrow.Field, len(columns))
	for i, col := range columns {
		fields[i] = arrow.Field{Name: col, Type: inferType(col, rows), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	arrays := make([]arrow.Array, len(fields))
	for i, field := range fields {
		b := array.NewBuilder(mem, field.Type)
		for _, row := range rows {
			appendValue(b, row[field.Name])
		}
		arrays[i] = b.NewArray()
		b.Release()
	}
	rec := array.NewRecord(schema, arrays, int64(len(rows)))
	for _, a := range arrays {
		a.Release()
	}
	return rec
}

func appendValue(b array.Builder, v any) {
	if v == nil {
		b.AppendNull()
		return
	}
	switch b := b.(type) {
	case *array.Int64Builder:
		if n, ok := toInt64(v); ok {
			b.Append(n)
			return
		}
	case *array.Float64Builder:
		if f, ok := toFloat64(v); ok {
			b.Append(f)
			return
		}
	case *array.BooleanBuilder:
		if x, ok := v.(bool); ok {
			b.Append(x)
			return
		}
	case *array.TimestampBuilder:
		if t, ok := v.(time.Time); ok {
			b.Append(arrow.Timestamp(t.UTC().UnixMicro()))
			return
		}
	case *array.StringBuilder:
		if s, ok := v.([]byte); ok {
			b.Append(string(s))
		} else {
			b.Append(fmt.Sprint(v))
		}
		return
	}
	b.AppendNull()
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// StartFlightServer serves srv on port until the listener fails.
func StartFlightServer(port int, srv *FlightServer) error {
	s := grpc.NewServer()
	flightgen.RegisterFlightServiceServer(s, srv)
	reflection.Register(s)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	core.Infof(context.Background(), "Flight server listening on port %d", port)
	return s.Serve(lis)
}
