package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	// database drivers for the supported engines.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"

	"github.com/rusq/legalspend/types"
)

func init() {
	// drivers that sqlx does not know the placeholder style for.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	sqlx.BindDriver("oracle", sqlx.NAMED)
}

const defTable = "legal_invoices"

// identifier guards the configurable table name against injection: it is the
// one query fragment that cannot be a bind parameter.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

const probeTimeout = 5 * time.Second

// Database is the adapter for relational spend stores (ERP extracts,
// reporting marts).  All user-supplied filter values travel as bind
// parameters, never by string interpolation.
type Database struct {
	name  string
	db    *sqlx.DB
	table string
	lg    *slog.Logger
}

var _ SourceCloser = (*Database)(nil)

// NewDatabase creates the database adapter.  Required connection parameters
// depend on the driver:
//
//	postgres:  host, port, database, username, password
//	mssql:     host, port, database, username, password
//	oracle:    host, port, service_name, username, password
//	sqlite:    file
//
// An unknown driver is a configuration error reported at construction time.
// No connection is made here; reachability is probed via TestConnection.
func NewDatabase(cfg Config, _ Options) (Sourcer, error) {
	driver, dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}
	table := cfg.Param("table", defTable)
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("source %q: invalid table name %q", cfg.Name, table)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("source %q: open %s: %w", cfg.Name, driver, err)
	}
	return &Database{
		name:  cfg.Name,
		db:    db,
		table: table,
		lg:    slog.With("source", cfg.Name),
	}, nil
}

// buildDSN constructs the driver name and connection string for cfg.
func buildDSN(cfg Config) (driver, dsn string, err error) {
	p := func(key string) string { return cfg.Param(key, "") }
	switch d := p("driver"); d {
	case "postgres", "postgresql":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(p("username"), p("password")),
			Host:   p("host") + ":" + cfg.Param("port", "5432"),
			Path:   "/" + p("database"),
		}
		return "pgx", u.String(), nil
	case "mssql", "sqlserver":
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(p("username"), p("password")),
			Host:     p("host") + ":" + cfg.Param("port", "1433"),
			RawQuery: url.Values{"database": {p("database")}}.Encode(),
		}
		return "sqlserver", u.String(), nil
	case "oracle":
		u := url.URL{
			Scheme: "oracle",
			User:   url.UserPassword(p("username"), p("password")),
			Host:   p("host") + ":" + cfg.Param("port", "1521"),
			Path:   "/" + p("service_name"),
		}
		return "oracle", u.String(), nil
	case "sqlite":
		file := p("file")
		if file == "" {
			return "", "", fmt.Errorf("source %q: sqlite driver requires the file parameter", cfg.Name)
		}
		return "sqlite", file, nil
	case "":
		return "", "", fmt.Errorf("source %q: driver is required", cfg.Name)
	default:
		return "", "", fmt.Errorf("source %q: unsupported database driver: %s", cfg.Name, d)
	}
}

func (d *Database) Name() string { return d.name }
func (d *Database) Type() Type   { return TypeDatabase }

// dbRecord is the row shape of the spend table.
type dbRecord struct {
	InvoiceID          string          `db:"invoice_id"`
	VendorName         string          `db:"vendor_name"`
	VendorType         string          `db:"vendor_type"`
	MatterID           *string         `db:"matter_id"`
	MatterName         *string         `db:"matter_name"`
	Department         string          `db:"department"`
	PracticeArea       string          `db:"practice_area"`
	InvoiceDate        time.Time       `db:"invoice_date"`
	Amount             decimal.Decimal `db:"amount"`
	Currency           string          `db:"currency"`
	ExpenseCategory    *string         `db:"expense_category"`
	Description        *string         `db:"description"`
	BillingPeriodStart *time.Time      `db:"billing_period_start"`
	BillingPeriodEnd   *time.Time      `db:"billing_period_end"`
	Status             string          `db:"status"`
	BudgetCode         *string         `db:"budget_code"`
}

// SpendData queries approved invoices in the date range, translating the
// generic filters to parameterised predicates.  Query failures are logged
// and yield an empty result, keeping the fan-out alive.
func (d *Database) SpendData(ctx context.Context, start, end time.Time, filters Filters) ([]types.LegalSpendRecord, error) {
	var (
		sb    strings.Builder
		binds []any
	)
	fmt.Fprintf(&sb, "SELECT invoice_id, vendor_name, vendor_type, matter_id, matter_name, "+
		"department, practice_area, invoice_date, amount, currency, expense_category, "+
		"description, billing_period_start, billing_period_end, status, budget_code "+
		"FROM %s WHERE status = ? AND invoice_date >= ? AND invoice_date <= ?", d.table)
	binds = append(binds, "approved", start, end)

	addBind := func(cond bool, expr string, vals ...any) {
		if !cond {
			return
		}
		sb.WriteString(expr)
		binds = append(binds, vals...)
	}
	addBind(filters[FltVendor] != "", " AND LOWER(vendor_name) LIKE ?", "%"+strings.ToLower(filters[FltVendor])+"%")
	addBind(filters[FltMatter] != "", " AND LOWER(matter_name) LIKE ?", "%"+strings.ToLower(filters[FltMatter])+"%")
	addBind(filters[FltDepartment] != "", " AND department = ?", filters[FltDepartment])
	addBind(filters[FltPracticeArea] != "", " AND practice_area = ?", filters[FltPracticeArea])
	addBind(filters[FltMinAmount] != "", " AND amount >= ?", filters[FltMinAmount])
	addBind(filters[FltMaxAmount] != "", " AND amount <= ?", filters[FltMaxAmount])
	sb.WriteString(" ORDER BY invoice_date")

	var rows []dbRecord
	if err := d.db.SelectContext(ctx, &rows, d.db.Rebind(sb.String()), binds...); err != nil {
		d.lg.ErrorContext(ctx, "spend query failed", "error", err)
		return nil, nil
	}

	records := make([]types.LegalSpendRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record(d.name))
	}
	return records, nil
}

func (r dbRecord) record(source string) types.LegalSpendRecord {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	category := deref(r.ExpenseCategory)
	if category == "" {
		category = "Legal Services"
	}
	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}
	return types.LegalSpendRecord{
		InvoiceID:          r.InvoiceID,
		VendorName:         r.VendorName,
		VendorType:         types.ParseVendorType(r.VendorType),
		MatterID:           deref(r.MatterID),
		MatterName:         deref(r.MatterName),
		Department:         r.Department,
		PracticeArea:       types.ParsePracticeArea(r.PracticeArea),
		InvoiceDate:        r.InvoiceDate,
		Amount:             r.Amount,
		Currency:           currency,
		ExpenseCategory:    category,
		Description:        deref(r.Description),
		BillingPeriodStart: r.BillingPeriodStart,
		BillingPeriodEnd:   r.BillingPeriodEnd,
		Status:             r.Status,
		BudgetCode:         deref(r.BudgetCode),
		SourceSystem:       source,
	}
}

// Vendors lists distinct vendors from the spend table with stable ids.
func (d *Database) Vendors(ctx context.Context) ([]types.Vendor, error) {
	type row struct {
		Name string `db:"vendor_name"`
		Type string `db:"vendor_type"`
	}
	var rows []row
	q := fmt.Sprintf("SELECT DISTINCT vendor_name, vendor_type FROM %s ORDER BY vendor_name", d.table)
	if err := d.db.SelectContext(ctx, &rows, q); err != nil {
		d.lg.ErrorContext(ctx, "vendor query failed", "error", err)
		return nil, nil
	}
	vendors := make([]types.Vendor, 0, len(rows))
	for _, r := range rows {
		vendors = append(vendors, types.Vendor{
			ID:     types.VendorID(r.Name),
			Name:   r.Name,
			Type:   types.ParseVendorType(r.Type),
			Source: d.name,
		})
	}
	return vendors, nil
}

// TestConnection pings the database with a bounded timeout.
func (d *Database) TestConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := d.db.PingContext(ctx); err != nil {
		d.lg.DebugContext(ctx, "connection probe failed", "error", err)
		return false
	}
	return true
}

// Close releases the connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}
