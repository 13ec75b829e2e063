package source

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/legalspend/types"
)

// newTestTracker starts a stub LegalTracker API and returns an adapter
// pointed at it.
func newTestTracker(t *testing.T, h http.HandlerFunc) *LegalTracker {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s, err := NewLegalTracker(Config{
		Name: "legaltracker",
		Type: TypeAPI,
		Connection: map[string]string{
			"api_key":  "sekrit",
			"base_url": srv.URL,
		},
	}, Options{})
	require.NoError(t, err)
	return s.(*LegalTracker)
}

func TestNewLegalTracker(t *testing.T) {
	t.Run("api_key is required", func(t *testing.T) {
		_, err := NewLegalTracker(Config{Name: "legaltracker", Type: TypeAPI}, Options{})
		assert.ErrorContains(t, err, "api_key is required")
	})
	t.Run("invalid timeout", func(t *testing.T) {
		_, err := NewLegalTracker(Config{
			Name:       "legaltracker",
			Type:       TypeAPI,
			Connection: map[string]string{"api_key": "k", "timeout": "soon"},
		}, Options{})
		assert.ErrorContains(t, err, "invalid timeout")
	})
	t.Run("defaults", func(t *testing.T) {
		s, err := NewLegalTracker(Config{
			Name:       "legaltracker",
			Type:       TypeAPI,
			Connection: map[string]string{"api_key": "k"},
		}, Options{})
		require.NoError(t, err)
		lt := s.(*LegalTracker)
		assert.Equal(t, defLegalTrackerURL, lt.baseURL)
		assert.Equal(t, defAPITimeout, lt.client.Timeout)
		assert.NotNil(t, lt.limiter, "a fallback limiter should be installed")
	})
}

func TestLegalTracker_SpendData(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("fetches and normalises invoices", func(t *testing.T) {
		var gotReq *http.Request
		lt := newTestTracker(t, func(w http.ResponseWriter, r *http.Request) {
			gotReq = r
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"invoices": [
				{
					"id": "LT-1001",
					"vendor": {"name": "Smith & Associates", "type": "Law Firm"},
					"matter": {"id": "M-1", "name": "Patent dispute"},
					"department": "IP",
					"practice_area": "Intellectual Property",
					"invoice_date": "2026-02-10",
					"amount": 2500.50,
					"currency": "EUR",
					"description": "February retainer",
					"status": "paid",
					"budget_code": "IP-2026"
				},
				{
					"id": "LT-1002",
					"vendor": {"name": "Ace Experts", "type": "Boutique"},
					"matter": {"id": "", "name": ""},
					"invoice_date": "2026-03-01",
					"amount": 750
				}
			]}`))
		})

		records, err := lt.SpendData(t.Context(), start, end, nil)
		require.NoError(t, err)
		require.Len(t, records, 2)

		require.NotNil(t, gotReq)
		assert.Equal(t, "/api/v1/invoices", gotReq.URL.Path)
		assert.Equal(t, "Bearer sekrit", gotReq.Header.Get("Authorization"))
		q := gotReq.URL.Query()
		assert.Equal(t, "2026-01-01", q.Get("start_date"))
		assert.Equal(t, "2026-03-31", q.Get("end_date"))
		assert.Equal(t, "approved", q.Get("status"))

		full := records[0]
		assert.Equal(t, "LT-1001", full.InvoiceID)
		assert.Equal(t, "Smith & Associates", full.VendorName)
		assert.Equal(t, types.VTLawFirm, full.VendorType)
		assert.Equal(t, "Patent dispute", full.MatterName)
		assert.Equal(t, "IP", full.Department)
		assert.Equal(t, types.PAIntProp, full.PracticeArea)
		assert.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), full.InvoiceDate)
		assert.True(t, full.Amount.Equal(decimal.RequireFromString("2500.50")), "amount: %s", full.Amount)
		assert.Equal(t, "EUR", full.Currency)
		assert.Equal(t, "paid", full.Status)
		assert.Equal(t, "LegalTracker", full.SourceSystem)

		sparse := records[1]
		assert.Equal(t, "Legal", sparse.Department, "omitted department should default")
		assert.Equal(t, "USD", sparse.Currency, "omitted currency should default")
		assert.Equal(t, "approved", sparse.Status, "omitted status should default")
		assert.Equal(t, types.VTOther, sparse.VendorType, "unknown vendor type should fall back")
		assert.Equal(t, types.PAGeneral, sparse.PracticeArea)
		assert.Equal(t, "Legal Services", sparse.ExpenseCategory)
	})
	t.Run("filters are forwarded and re-checked", func(t *testing.T) {
		var q string
		lt := newTestTracker(t, func(w http.ResponseWriter, r *http.Request) {
			q = r.URL.RawQuery
			// upstream ignores the filter and returns both vendors.
			w.Write([]byte(`{"invoices": [
				{"id": "1", "vendor": {"name": "Smith & Associates"}, "invoice_date": "2026-02-01", "amount": 100},
				{"id": "2", "vendor": {"name": "Jones LLP"}, "invoice_date": "2026-02-02", "amount": 200}
			]}`))
		})
		records, err := lt.SpendData(t.Context(), start, end, Filters{FltVendor: "smith"})
		require.NoError(t, err)
		assert.Contains(t, q, "vendor=smith")
		require.Len(t, records, 1, "the non-matching invoice should be dropped locally")
		assert.Equal(t, "Smith & Associates", records[0].VendorName)
	})
	t.Run("malformed invoice is skipped", func(t *testing.T) {
		lt := newTestTracker(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"invoices": [
				{"id": "bad", "vendor": {"name": "X"}, "invoice_date": "February 1st", "amount": 100},
				{"id": "ok", "vendor": {"name": "Y"}, "invoice_date": "2026-02-01", "amount": 100}
			]}`))
		})
		records, err := lt.SpendData(t.Context(), start, end, nil)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "ok", records[0].InvoiceID)
	})
	t.Run("upstream failure yields empty result, not an error", func(t *testing.T) {
		lt := newTestTracker(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		})
		records, err := lt.SpendData(t.Context(), start, end, nil)
		assert.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestLegalTracker_Vendors(t *testing.T) {
	t.Run("lists vendors with stable ids", func(t *testing.T) {
		var path string
		lt := newTestTracker(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			w.Write([]byte(`{"vendors": [
				{"id": "upstream-9", "name": "Smith & Associates", "type": "Law Firm"},
				{"id": "upstream-4", "name": "Ace Experts", "type": "Expert Witness"}
			]}`))
		})
		vendors, err := lt.Vendors(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/vendors", path)
		require.Len(t, vendors, 2)
		assert.Equal(t, types.VendorID("Smith & Associates"), vendors[0].ID, "id should derive from the name, not the upstream id")
		assert.Equal(t, types.VTExpertWitness, vendors[1].Type)
		assert.Equal(t, "LegalTracker", vendors[0].Source)
	})
	t.Run("upstream failure yields empty result", func(t *testing.T) {
		lt := newTestTracker(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		})
		vendors, err := lt.Vendors(t.Context())
		assert.NoError(t, err)
		assert.Empty(t, vendors)
	})
}

func TestLegalTracker_TestConnection(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		lt := newTestTracker(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/health", r.URL.Path)
			assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		})
		assert.True(t, lt.TestConnection(t.Context()))
	})
	t.Run("unhealthy", func(t *testing.T) {
		lt := newTestTracker(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		assert.False(t, lt.TestConnection(t.Context()))
	})
	t.Run("unreachable", func(t *testing.T) {
		s, err := NewLegalTracker(Config{
			Name:       "legaltracker",
			Type:       TypeAPI,
			Connection: map[string]string{"api_key": "k", "base_url": "http://127.0.0.1:0"},
		}, Options{})
		require.NoError(t, err)
		assert.False(t, s.TestConnection(t.Context()))
	})
}
