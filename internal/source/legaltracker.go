package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rusq/legalspend/internal/network"
	"github.com/rusq/legalspend/types"
)

const (
	defAPITimeout      = 30 * time.Second
	healthTimeout      = 10 * time.Second // probe is lightweight, keep it short.
	defLegalTrackerURL = "https://api.legaltracker.com"
)

// LegalTracker is the adapter for the LegalTracker spend management API.
type LegalTracker struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *network.KeyedLimiter
	lg      *slog.Logger
}

var _ Sourcer = (*LegalTracker)(nil)

// NewLegalTracker creates the LegalTracker adapter.  Required connection
// parameters: api_key.  Optional: base_url, timeout (Go duration string).
func NewLegalTracker(cfg Config, opts Options) (Sourcer, error) {
	apiKey := cfg.Param("api_key", "")
	if apiKey == "" {
		return nil, fmt.Errorf("source %q: api_key is required", cfg.Name)
	}
	timeout := defAPITimeout
	if s := cfg.Param("timeout", ""); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("source %q: invalid timeout %q: %w", cfg.Name, s, err)
		}
		timeout = d
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = network.NewKeyedLimiter(network.DefMaxRequests, network.DefWindow)
	}
	return &LegalTracker{
		name:    cfg.Name,
		baseURL: cfg.Param("base_url", defLegalTrackerURL),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		lg:      slog.With("source", cfg.Name),
	}, nil
}

func (lt *LegalTracker) Name() string { return lt.name }
func (lt *LegalTracker) Type() Type   { return TypeAPI }

// ltInvoice is the upstream invoice payload.
type ltInvoice struct {
	ID     string `json:"id"`
	Vendor struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"vendor"`
	Matter struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"matter"`
	Department   string      `json:"department"`
	PracticeArea string      `json:"practice_area"`
	InvoiceDate  string      `json:"invoice_date"`
	Amount       json.Number `json:"amount"`
	Currency     string      `json:"currency"`
	Description  string      `json:"description"`
	Status       string      `json:"status"`
	BudgetCode   string      `json:"budget_code"`
}

type ltVendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// get performs a rate-limited, authenticated GET and decodes the JSON
// response into out.
func (lt *LegalTracker) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := lt.limiter.Wait(ctx, lt.apiKey); err != nil {
		return err
	}
	u := lt.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+lt.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := lt.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s for %s", resp.Status, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// SpendData fetches approved invoices for the period.  Filters are forwarded
// to the API as query parameters and re-checked locally, since upstream
// filter support varies by plan.  Upstream failures are logged and yield an
// empty result.
func (lt *LegalTracker) SpendData(ctx context.Context, start, end time.Time, filters Filters) ([]types.LegalSpendRecord, error) {
	query := url.Values{
		"start_date": {start.Format(types.DateLayout)},
		"end_date":   {end.Format(types.DateLayout)},
		"status":     {"approved"},
	}
	for k, v := range filters {
		query.Set(k, v)
	}

	var payload struct {
		Invoices []ltInvoice `json:"invoices"`
	}
	if err := lt.get(ctx, "/api/v1/invoices", query, &payload); err != nil {
		lt.lg.ErrorContext(ctx, "fetching invoices failed", "error", err)
		return nil, nil
	}

	records := make([]types.LegalSpendRecord, 0, len(payload.Invoices))
	for _, inv := range payload.Invoices {
		rec, err := lt.record(inv)
		if err != nil {
			lt.lg.WarnContext(ctx, "skipping malformed invoice", "invoice_id", inv.ID, "error", err)
			continue
		}
		if filters.Match(rec) {
			records = append(records, rec)
		}
	}
	return records, nil
}

// record translates one upstream invoice into the normalised model,
// defaulting the attributes LegalTracker omits.
func (lt *LegalTracker) record(inv ltInvoice) (types.LegalSpendRecord, error) {
	invoiceDate, err := time.Parse(types.DateLayout, inv.InvoiceDate)
	if err != nil {
		return types.LegalSpendRecord{}, fmt.Errorf("invoice_date: %w", err)
	}
	amount, err := decimal.NewFromString(inv.Amount.String())
	if err != nil {
		return types.LegalSpendRecord{}, fmt.Errorf("amount: %w", err)
	}
	department := inv.Department
	if department == "" {
		department = "Legal"
	}
	currency := inv.Currency
	if currency == "" {
		currency = "USD"
	}
	status := inv.Status
	if status == "" {
		status = "approved"
	}
	return types.LegalSpendRecord{
		InvoiceID:       inv.ID,
		VendorName:      inv.Vendor.Name,
		VendorType:      types.ParseVendorType(inv.Vendor.Type),
		MatterID:        inv.Matter.ID,
		MatterName:      inv.Matter.Name,
		Department:      department,
		PracticeArea:    types.ParsePracticeArea(inv.PracticeArea),
		InvoiceDate:     invoiceDate,
		Amount:          amount,
		Currency:        currency,
		ExpenseCategory: "Legal Services",
		Description:     inv.Description,
		Status:          status,
		BudgetCode:      inv.BudgetCode,
		SourceSystem:    "LegalTracker",
	}, nil
}

// Vendors lists the vendor directory.  Vendor ids are derived locally from
// the vendor name so they stay stable across sources; the upstream id is
// preserved in no field because nothing downstream needs it.
func (lt *LegalTracker) Vendors(ctx context.Context) ([]types.Vendor, error) {
	var payload struct {
		Vendors []ltVendor `json:"vendors"`
	}
	if err := lt.get(ctx, "/api/v1/vendors", nil, &payload); err != nil {
		lt.lg.ErrorContext(ctx, "fetching vendors failed", "error", err)
		return nil, nil
	}
	vendors := make([]types.Vendor, 0, len(payload.Vendors))
	for _, v := range payload.Vendors {
		vendors = append(vendors, types.Vendor{
			ID:     types.VendorID(v.Name),
			Name:   v.Name,
			Type:   types.ParseVendorType(v.Type),
			Source: "LegalTracker",
		})
	}
	return vendors, nil
}

// TestConnection probes the health endpoint with a short timeout, distinct
// from the main request timeout.
func (lt *LegalTracker) TestConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lt.baseURL+"/api/v1/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+lt.apiKey)
	resp, err := lt.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
