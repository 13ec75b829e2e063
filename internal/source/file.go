package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/rusq/legalspend/types"
)

// file formats.
const (
	formatCSV   = "csv"
	formatExcel = "excel"
)

const defSheet = "Sheet1"

// File is the adapter for flat-file spend extracts.  Parsed rows are cached
// keyed by the file's modification time, so repeated queries re-read the
// file only after it changes on disk.
type File struct {
	name   string
	path   string
	format string
	comma  rune
	sheet  string
	lg     *slog.Logger

	mu       sync.Mutex
	parsedAt time.Time // mtime of the file at last successful parse
	records  []types.LegalSpendRecord
}

var _ Sourcer = (*File)(nil)

// NewFile creates the file adapter.  Required connection parameters:
// file_path.  Optional: file_type ("csv" or "excel", inferred from the
// extension when absent), delimiter (CSV), sheet_name (Excel).
func NewFile(cfg Config, _ Options) (Sourcer, error) {
	path := cfg.Param("file_path", "")
	if path == "" {
		return nil, fmt.Errorf("source %q: file_path is required", cfg.Name)
	}
	format := cfg.Param("file_type", "")
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			format = formatCSV
		case ".xlsx", ".xlsm":
			format = formatExcel
		}
	}
	if format != formatCSV && format != formatExcel {
		return nil, fmt.Errorf("source %q: unsupported file type: %q", cfg.Name, format)
	}
	comma := ','
	if d := cfg.Param("delimiter", ""); d != "" {
		r := []rune(d)
		if len(r) != 1 {
			return nil, fmt.Errorf("source %q: delimiter must be a single character, got %q", cfg.Name, d)
		}
		comma = r[0]
	}
	return &File{
		name:   cfg.Name,
		path:   path,
		format: format,
		comma:  comma,
		sheet:  cfg.Param("sheet_name", defSheet),
		lg:     slog.With("source", cfg.Name),
	}, nil
}

func (f *File) Name() string { return f.name }
func (f *File) Type() Type   { return TypeFile }

// sourceSystem is the provenance tag, e.g. "File-csv".
func (f *File) sourceSystem() string {
	return "File-" + f.format
}

// load returns the parsed records, re-reading the file if it changed on disk
// since the last parse.
func (f *File) load(ctx context.Context) ([]types.LegalSpendRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fi, err := os.Stat(f.path)
	if err != nil {
		return nil, err
	}
	if f.records != nil && fi.ModTime().Equal(f.parsedAt) {
		return f.records, nil
	}

	var rows [][]string
	switch f.format {
	case formatCSV:
		rows, err = f.readCSV()
	case formatExcel:
		rows, err = f.readExcel()
	}
	if err != nil {
		return nil, err
	}

	f.records = f.parseRows(ctx, rows)
	f.parsedAt = fi.ModTime()
	return f.records, nil
}

func (f *File) readCSV() ([][]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	r := csv.NewReader(file)
	r.Comma = f.comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (f *File) readExcel() ([][]string, error) {
	wb, err := excelize.OpenFile(f.path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return wb.GetRows(f.sheet)
}

// parseRows converts raw rows (header first) into records.  A malformed row
// is logged and skipped, it never aborts the rest of the batch.
func (f *File) parseRows(ctx context.Context, rows [][]string) []types.LegalSpendRecord {
	if len(rows) == 0 {
		return nil
	}
	head := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		head[strings.ToLower(strings.TrimSpace(col))] = i
	}
	records := make([]types.LegalSpendRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rec, err := f.parseRow(head, row)
		if err != nil {
			f.lg.WarnContext(ctx, "skipping malformed row", "row", n+2, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (f *File) parseRow(head map[string]int, row []string) (types.LegalSpendRecord, error) {
	cell := func(keys ...string) string {
		for _, key := range keys {
			if i, ok := head[key]; ok && i < len(row) {
				if v := strings.TrimSpace(row[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}
	invoiceDate, err := parseDate(cell("invoice_date", "date"))
	if err != nil {
		return types.LegalSpendRecord{}, fmt.Errorf("invoice_date: %w", err)
	}
	amount, err := decimal.NewFromString(cell("amount"))
	if err != nil {
		return types.LegalSpendRecord{}, fmt.Errorf("amount: %w", err)
	}
	if amount.IsNegative() {
		return types.LegalSpendRecord{}, fmt.Errorf("negative amount: %s", amount)
	}

	rec := types.LegalSpendRecord{
		InvoiceID:       orDefault(cell("invoice_id", "id"), "N/A"),
		VendorName:      orDefault(cell("vendor_name", "vendor"), "Unknown"),
		VendorType:      types.ParseVendorType(cell("vendor_type")),
		MatterID:        cell("matter_id"),
		MatterName:      cell("matter_name"),
		Department:      orDefault(cell("department"), "Legal"),
		PracticeArea:    types.ParsePracticeArea(cell("practice_area")),
		InvoiceDate:     invoiceDate,
		Amount:          amount,
		Currency:        orDefault(cell("currency"), "USD"),
		ExpenseCategory: orDefault(cell("expense_category"), "Legal Services"),
		Description:     cell("description"),
		Status:          orDefault(cell("status"), "approved"),
		BudgetCode:      cell("budget_code"),
		SourceSystem:    f.sourceSystem(),
	}
	if v := cell("billing_period_start"); v != "" {
		if d, err := parseDate(v); err == nil {
			rec.BillingPeriodStart = &d
		}
	}
	if v := cell("billing_period_end"); v != "" {
		if d, err := parseDate(v); err == nil {
			rec.BillingPeriodEnd = &d
		}
	}
	// metadata travels as an embedded JSON object, one per row.
	if v := cell("metadata"); v != "" {
		var meta map[string]any
		if err := json.Unmarshal([]byte(v), &meta); err != nil {
			return types.LegalSpendRecord{}, fmt.Errorf("metadata: %w", err)
		}
		rec.Metadata = meta
	}
	return rec, nil
}

var dateLayouts = []string{types.DateLayout, "2006-01-02 15:04:05", "01/02/2006", "2006/01/02"}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %q", s)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// SpendData returns records within the inclusive date range that pass the
// filters.  A missing or unreadable file yields an empty result.
func (f *File) SpendData(ctx context.Context, start, end time.Time, filters Filters) ([]types.LegalSpendRecord, error) {
	records, err := f.load(ctx)
	if err != nil {
		f.lg.ErrorContext(ctx, "loading file failed", "path", f.path, "error", err)
		return nil, nil
	}
	var out []types.LegalSpendRecord
	for _, r := range records {
		if r.InvoiceDate.Before(start) || r.InvoiceDate.After(end) {
			continue
		}
		if filters.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Vendors lists the distinct vendors present in the file, sorted by name.
func (f *File) Vendors(ctx context.Context) ([]types.Vendor, error) {
	records, err := f.load(ctx)
	if err != nil {
		f.lg.ErrorContext(ctx, "loading file failed", "path", f.path, "error", err)
		return nil, nil
	}
	seen := make(map[string]types.VendorType)
	for _, r := range records {
		if _, ok := seen[r.VendorName]; !ok {
			seen[r.VendorName] = r.VendorType
		}
	}
	vendors := make([]types.Vendor, 0, len(seen))
	for name, vt := range seen {
		vendors = append(vendors, types.Vendor{
			ID:     types.VendorID(name),
			Name:   name,
			Type:   vt,
			Source: f.sourceSystem(),
		})
	}
	sort.Slice(vendors, func(i, j int) bool { return vendors[i].Name < vendors[j].Name })
	return vendors, nil
}

// TestConnection reports whether the file exists and is readable.
func (f *File) TestConnection(ctx context.Context) bool {
	file, err := os.Open(f.path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}
