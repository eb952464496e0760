package backup

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
	"github.com/samber/lo"

	"github.com/VastSea0/italiano-sub000/internal/infrastructure/database"
)

const (
	defaultBatchSize = 512
	formatVersion    = 1
	metaType         = "meta"
)

var (
	errNoTablesSelected = errors.New("backup: no tables selected")
	// ErrSchemaMismatch is returned when a backup was written against different tables.
	ErrSchemaMismatch = errors.New("backup: schema hash mismatch")
)

type ProgressReporter interface {
	StartTable(table string, total int)
	Increment(table string, delta int)
	FinishTable(table string)
}

type noopProgress struct{}

func (noopProgress) StartTable(string, int) {}
func (noopProgress) Increment(string, int)  {}
func (noopProgress) FinishTable(string)     {}

type Service struct {
	drv        dialect.Driver
	batchSize  int
	tables     []*schema.Table
	tableIndex map[string]*schema.Table
	schemaHash string
	clock      func() time.Time
}

type Option func(*Service)

func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// NewService constructs a backup service over the progress and session tables.
func NewService(drv dialect.Driver, opts ...Option) (*Service, error) {
	if drv == nil {
		return nil, errors.New("backup: driver is required")
	}
	tables, err := schema.CopyTables(database.Tables)
	if err != nil {
		return nil, fmt.Errorf("copy schema tables: %w", err)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })

	svc := &Service{
		drv:        drv,
		batchSize:  defaultBatchSize,
		tables:     tables,
		tableIndex: lo.KeyBy(tables, func(t *schema.Table) string { return t.Name }),
		schemaHash: computeSchemaHash(tables),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// TableNames lists the tables a backup can contain.
func (s *Service) TableNames() []string {
	return tableNames(s.tables)
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	tables   []string
	reporter ProgressReporter
}

// WithTables restricts export to the provided table names.
func WithTables(tables []string) ExportOption {
	return func(cfg *exportConfig) {
		cfg.tables = append(cfg.tables, tables...)
	}
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	tables   []string
	reporter ProgressReporter
}

// WithImportTables restricts import to the provided table names.
func WithImportTables(tables []string) ImportOption {
	return func(cfg *importConfig) {
		cfg.tables = append(cfg.tables, tables...)
	}
}

// WithImportProgressReporter receives one Increment per restored row.
func WithImportProgressReporter(reporter ProgressReporter) ImportOption {
	return func(cfg *importConfig) {
		cfg.reporter = reporter
	}
}

type record struct {
	Type       string         `json:"type"`
	Version    int            `json:"version,omitempty"`
	ExportedAt *time.Time     `json:"exported_at,omitempty"`
	SchemaHash string         `json:"schema_hash,omitempty"`
	Tables     []string       `json:"tables,omitempty"`
	RowCounts  map[string]int `json:"row_counts,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	SchemaHash string          `json:"schema_hash"`
	Tables     []string        `json:"tables"`
	RowCounts  map[string]int  `json:"row_counts"`
	Payload    json.RawMessage `json:"payload"`
}

// Export writes a meta record followed by one record per row, each table in
// primary key order.
func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := s.selectTables(cfg.tables)
	if err != nil {
		return err
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	counts := make(map[string]int, len(tables))
	for _, tbl := range tables {
		count, err := s.countRows(ctx, tbl)
		if err != nil {
			return fmt.Errorf("count table %s: %w", tbl.Name, err)
		}
		counts[tbl.Name] = count
	}

	writer := bufio.NewWriter(w)
	now := s.clock().UTC()
	meta := record{
		Type:       metaType,
		Version:    formatVersion,
		ExportedAt: &now,
		SchemaHash: s.schemaHash,
		Tables:     tableNames(tables),
		RowCounts:  counts,
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	for _, tbl := range tables {
		reporter.StartTable(tbl.Name, counts[tbl.Name])
		if err := s.exportTable(ctx, tbl, reporter, writer); err != nil {
			return err
		}
		reporter.FinishTable(tbl.Name)
	}
	return writer.Flush()
}

func (s *Service) exportTable(ctx context.Context, table *schema.Table, reporter ProgressReporter, w io.Writer) error {
	columns := database.ColumnNames(table)
	order := lo.Map(table.PrimaryKey, func(c *schema.Column, _ int) string { return entsql.Asc(c.Name) })

	for offset := 0; ; offset += s.batchSize {
		query, args := entsql.Dialect(s.drv.Dialect()).
			Select(columns...).
			From(entsql.Table(table.Name)).
			OrderBy(order...).
			Limit(s.batchSize).
			Offset(offset).
			Query()

		rowCount, err := s.exportBatch(ctx, table, columns, query, args, func(row map[string]any) error {
			if err := writeRecord(w, record{Type: table.Name, Payload: row}); err != nil {
				return err
			}
			reporter.Increment(table.Name, 1)
			return nil
		})
		if err != nil {
			return err
		}
		if rowCount < s.batchSize {
			return nil
		}
	}
}

func (s *Service) exportBatch(ctx context.Context, table *schema.Table, columns []string, query string, args []any, emit func(map[string]any) error) (int, error) {
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("query %s: %w", table.Name, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range dest {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return count, fmt.Errorf("scan %s: %w", table.Name, err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range table.Columns {
			val, err := convertDBValue(col, values[i])
			if err != nil {
				return count, fmt.Errorf("convert %s.%s: %w", table.Name, col.Name, err)
			}
			row[col.Name] = val
		}
		if err := emit(row); err != nil {
			return count, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("iterate %s: %w", table.Name, err)
	}
	return count, nil
}

// Import restores a backup in a single transaction. Existing rows with the
// same primary key are overwritten; rows of tables outside the filter are skipped.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) (err error) {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := s.selectTables(cfg.tables)
	if err != nil {
		return err
	}
	selected := lo.KeyBy(tables, func(t *schema.Table) string { return t.Name })
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	metaSeen := false
	started := map[string]bool{}
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec rawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("decode record: %w", err)
		}

		if !metaSeen {
			if err := s.checkMeta(rec); err != nil {
				return err
			}
			metaSeen = true
			continue
		}

		tbl, ok := selected[rec.Type]
		if !ok {
			continue
		}
		if len(rec.Payload) == 0 {
			return fmt.Errorf("backup: missing payload for table %s", rec.Type)
		}
		if !started[tbl.Name] {
			reporter.StartTable(tbl.Name, 0)
			started[tbl.Name] = true
		}
		if err := s.importRow(ctx, tx, tbl, rec.Payload); err != nil {
			return err
		}
		reporter.Increment(tbl.Name, 1)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	if !metaSeen {
		return errors.New("backup: missing meta record")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	for name := range started {
		reporter.FinishTable(name)
	}
	return nil
}

func (s *Service) checkMeta(rec rawRecord) error {
	if rec.Type != metaType {
		return errors.New("backup: missing meta record")
	}
	if rec.Version != formatVersion {
		return fmt.Errorf("backup: unsupported format version %d", rec.Version)
	}
	if rec.SchemaHash != "" && rec.SchemaHash != s.schemaHash {
		return ErrSchemaMismatch
	}
	return nil
}

func (s *Service) importRow(ctx context.Context, tx dialect.Tx, table *schema.Table, payload json.RawMessage) error {
	values, err := decodePayload(table, payload)
	if err != nil {
		return fmt.Errorf("decode payload for %s: %w", table.Name, err)
	}

	cols := make([]string, 0, len(table.Columns))
	args := make([]any, 0, len(table.Columns))
	for _, col := range table.Columns {
		val, ok := values[col.Name]
		if !ok || val == nil {
			switch {
			case col.Nullable:
				val = nil
			case col.Default != nil:
				val = col.Default
			default:
				return fmt.Errorf("backup: missing required value for %s.%s", table.Name, col.Name)
			}
		}
		cols = append(cols, col.Name)
		args = append(args, val)
	}

	query, queryArgs := entsql.Dialect(s.drv.Dialect()).
		Insert(table.Name).
		Columns(cols...).
		Values(args...).
		OnConflict(
			entsql.ConflictColumns(lo.Map(table.PrimaryKey, func(c *schema.Column, _ int) string { return c.Name })...),
			entsql.ResolveWithNewValues(),
		).
		Query()

	var res sql.Result
	if err := tx.Exec(ctx, query, queryArgs, &res); err != nil {
		return fmt.Errorf("insert into %s: %w", table.Name, err)
	}
	return nil
}

func (s *Service) selectTables(requested []string) ([]*schema.Table, error) {
	if len(requested) == 0 {
		return s.tables, nil
	}
	set := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		n := strings.TrimSpace(strings.ToLower(name))
		if n == "" {
			continue
		}
		if _, ok := s.tableIndex[n]; !ok {
			return nil, fmt.Errorf("backup: unsupported table %q", name)
		}
		set[n] = struct{}{}
	}
	if len(set) == 0 {
		return nil, errNoTablesSelected
	}
	return lo.Filter(s.tables, func(t *schema.Table, _ int) bool {
		_, ok := set[t.Name]
		return ok
	}), nil
}

func (s *Service) countRows(ctx context.Context, table *schema.Table) (int, error) {
	query, args := entsql.Dialect(s.drv.Dialect()).
		Select(entsql.Count("*")).
		From(entsql.Table(table.Name)).
		Query()
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, err
		}
	}
	return count, rows.Err()
}

func convertDBValue(col *schema.Column, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		value = string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), nil
	}

	switch col.Type {
	case field.TypeInt, field.TypeInt32, field.TypeInt64:
		return toInt64(value)
	case field.TypeFloat32, field.TypeFloat64:
		return toFloat64(value)
	case field.TypeTime:
		// Drivers without a native time type hand back text.
		str, err := toString(value)
		if err != nil {
			return nil, err
		}
		t, err := parseTime(str)
		if err != nil {
			return nil, err
		}
		return t.Format(time.RFC3339Nano), nil
	default:
		return value, nil
	}
}

func decodePayload(table *schema.Table, payload json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	result := make(map[string]any, len(raw))
	for key, val := range raw {
		col, ok := lo.Find(table.Columns, func(c *schema.Column) bool { return c.Name == key })
		if !ok {
			return nil, fmt.Errorf("column %s not found in table %s", key, table.Name)
		}
		converted, err := convertJSONValue(col, val)
		if err != nil {
			return nil, fmt.Errorf("convert %s.%s: %w", table.Name, key, err)
		}
		result[key] = converted
	}
	return result, nil
}

func convertJSONValue(col *schema.Column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch col.Type {
	case field.TypeInt, field.TypeInt32, field.TypeInt64:
		return toInt64(value)
	case field.TypeFloat32, field.TypeFloat64:
		return toFloat64(value)
	case field.TypeTime:
		str, err := toString(value)
		if err != nil {
			return nil, err
		}
		if str == "" {
			return nil, nil
		}
		return parseTime(str)
	default:
		return toString(value)
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time value %q", s)
}

func tableNames(tables []*schema.Table) []string {
	return lo.Map(tables, func(t *schema.Table, _ int) string { return t.Name })
}

func computeSchemaHash(tables []*schema.Table) string {
	var b strings.Builder
	for _, tbl := range tables {
		b.WriteString(tbl.Name)
		b.WriteString("|cols:")
		for _, col := range tbl.Columns {
			fmt.Fprintf(&b, "%s:%s:%t;", col.Name, col.Type, col.Nullable)
		}
		b.WriteString("|pk:")
		for _, pk := range tbl.PrimaryKey {
			b.WriteString(pk.Name)
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum[:])
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported int type %T", value)
	}
}

func toFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported float type %T", value)
	}
}

func toString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case []byte:
		return string(v), nil
	default:
		return fmt.Sprintf("%v", value), nil
	}
}
