package legalspend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/legalspend/internal/source"
	"github.com/rusq/legalspend/types"
)

// fakeSource is an in-memory source.Sourcer for manager tests.
type fakeSource struct {
	name    string
	typ     source.Type
	records []types.LegalSpendRecord
	vendors []types.Vendor
	err     error // returned by SpendData and Vendors when set
	alive   bool
	closed  atomic.Bool
	calls   atomic.Int64 // SpendData invocations
}

var _ source.SourceCloser = (*fakeSource)(nil)

func (f *fakeSource) Name() string      { return f.name }
func (f *fakeSource) Type() source.Type { return f.typ }

func (f *fakeSource) SpendData(_ context.Context, start, end time.Time, filters source.Filters) ([]types.LegalSpendRecord, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	var out []types.LegalSpendRecord
	for _, r := range f.records {
		if r.InvoiceDate.Before(start) || r.InvoiceDate.After(end) {
			continue
		}
		if !filters.Match(r) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeSource) Vendors(context.Context) ([]types.Vendor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vendors, nil
}

func (f *fakeSource) TestConnection(context.Context) bool { return f.alive }

func (f *fakeSource) Close() error {
	f.closed.Store(true)
	return nil
}

// discard is a logger for tests.
var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestManager creates a Manager with the given sources pre-attached,
// bypassing the registry and the connectivity probe.
func newTestManager(t *testing.T, opts []Option, srcs ...source.Sourcer) *Manager {
	t.Helper()
	m := New(append([]Option{WithLogger(discard)}, opts...)...)
	for _, s := range srcs {
		m.sources[s.Name()] = s
	}
	t.Cleanup(m.Cleanup)
	return m
}

func TestSpendData(t *testing.T) {
	start, end := date("2026-01-01"), date("2026-03-31")

	t.Run("fans out and concatenates", func(t *testing.T) {
		a := &fakeSource{name: "a", typ: source.TypeFile, alive: true,
			records: []types.LegalSpendRecord{testRecord("Smith & Jones LLP", "1000.00", "2026-01-15")}}
		b := &fakeSource{name: "b", typ: source.TypeAPI, alive: true,
			records: []types.LegalSpendRecord{testRecord("Baker Legal", "2000.00", "2026-02-15")}}
		m := newTestManager(t, nil, a, b)

		records, err := m.SpendData(t.Context(), start, end, nil, "")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("one failing source does not suppress the others", func(t *testing.T) {
		good := &fakeSource{name: "good", typ: source.TypeFile, alive: true,
			records: []types.LegalSpendRecord{testRecord("Smith & Jones LLP", "1000.00", "2026-01-15")}}
		bad := &fakeSource{name: "bad", typ: source.TypeAPI, alive: true, err: errors.New("connection reset")}
		m := newTestManager(t, nil, good, bad)

		records, err := m.SpendData(t.Context(), start, end, nil, "")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Smith & Jones LLP", records[0].VendorName)
	})

	t.Run("named source queries only that source", func(t *testing.T) {
		a := &fakeSource{name: "a", typ: source.TypeFile, alive: true,
			records: []types.LegalSpendRecord{testRecord("Smith & Jones LLP", "1000.00", "2026-01-15")}}
		b := &fakeSource{name: "b", typ: source.TypeAPI, alive: true,
			records: []types.LegalSpendRecord{testRecord("Baker Legal", "2000.00", "2026-02-15")}}
		m := newTestManager(t, nil, a, b)

		records, err := m.SpendData(t.Context(), start, end, nil, "b")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Baker Legal", records[0].VendorName)
		assert.EqualValues(t, 0, a.calls.Load())
	})

	t.Run("unknown named source is an error", func(t *testing.T) {
		m := newTestManager(t, nil)
		_, err := m.SpendData(t.Context(), start, end, nil, "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown data source")
	})

	t.Run("results are cached within the TTL", func(t *testing.T) {
		src := &fakeSource{name: "a", typ: source.TypeFile, alive: true,
			records: []types.LegalSpendRecord{testRecord("Smith & Jones LLP", "1000.00", "2026-01-15")}}
		m := newTestManager(t, nil, src)

		for range 3 {
			_, err := m.SpendData(t.Context(), start, end, nil, "")
			require.NoError(t, err)
		}
		assert.EqualValues(t, 1, src.calls.Load(), "repeated identical queries must hit the cache")

		// a different filter set is a different cache key
		_, err := m.SpendData(t.Context(), start, end, source.Filters{source.FltDepartment: "Legal"}, "")
		require.NoError(t, err)
		assert.EqualValues(t, 2, src.calls.Load())
	})

	t.Run("records outside the range are excluded", func(t *testing.T) {
		src := &fakeSource{name: "a", typ: source.TypeFile, alive: true, records: []types.LegalSpendRecord{
			testRecord("Smith & Jones LLP", "1000.00", "2025-12-31"),
			testRecord("Smith & Jones LLP", "1000.00", "2026-01-01"),
			testRecord("Smith & Jones LLP", "1000.00", "2026-03-31"),
			testRecord("Smith & Jones LLP", "1000.00", "2026-04-01"),
		}}
		m := newTestManager(t, nil, src)

		records, err := m.SpendData(t.Context(), start, end, nil, "")
		require.NoError(t, err)
		assert.Len(t, records, 2, "the date range is inclusive on both ends")
	})
}

func TestAllVendors(t *testing.T) {
	t.Run("merges and deduplicates by id", func(t *testing.T) {
		shared := types.Vendor{ID: types.VendorID("Smith & Jones LLP"), Name: "Smith & Jones LLP", Type: types.VTLawFirm, Source: "a"}
		a := &fakeSource{name: "a", typ: source.TypeFile, alive: true, vendors: []types.Vendor{
			shared,
			{ID: types.VendorID("Baker Legal"), Name: "Baker Legal", Type: types.VTLawFirm, Source: "a"},
		}}
		b := &fakeSource{name: "b", typ: source.TypeAPI, alive: true, vendors: []types.Vendor{
			{ID: types.VendorID("Smith & Jones LLP"), Name: "Smith & Jones LLP", Type: types.VTLawFirm, Source: "b"},
		}}
		m := newTestManager(t, nil, a, b)

		vendors, err := m.AllVendors(t.Context())
		require.NoError(t, err)
		require.Len(t, vendors, 2)
		// sorted by name
		assert.Equal(t, "Baker Legal", vendors[0].Name)
		assert.Equal(t, "Smith & Jones LLP", vendors[1].Name)
		// first seen in source name order wins
		assert.Equal(t, "a", vendors[1].Source)
	})

	t.Run("failing source is skipped", func(t *testing.T) {
		good := &fakeSource{name: "good", typ: source.TypeFile, alive: true, vendors: []types.Vendor{
			{ID: types.VendorID("Baker Legal"), Name: "Baker Legal", Type: types.VTLawFirm, Source: "good"},
		}}
		bad := &fakeSource{name: "bad", typ: source.TypeAPI, alive: true, err: errors.New("boom")}
		m := newTestManager(t, nil, good, bad)

		vendors, err := m.AllVendors(t.Context())
		require.NoError(t, err)
		assert.Len(t, vendors, 1)
	})
}

func TestInitSources(t *testing.T) {
	t.Run("unreachable and invalid sources are skipped", func(t *testing.T) {
		m := New(WithLogger(discard))
		t.Cleanup(m.Cleanup)
		m.InitSources(t.Context(), []source.Config{
			// file source whose file does not exist: probe fails
			{Name: "missing_csv", Type: source.TypeFile, Enabled: true,
				Connection: map[string]string{"file_path": "/nonexistent/spend.csv", "file_type": "csv"}},
			// api source without api_key: construction fails
			{Name: "legaltracker", Type: source.TypeAPI, Enabled: true,
				Connection: map[string]string{}},
			// disabled entries are ignored entirely
			{Name: "disabled", Type: source.TypeFile, Enabled: false,
				Connection: map[string]string{"file_path": "x.csv"}},
		})
		assert.Empty(t, m.ActiveSources())
		// but they are still reported as configured
		statuses := m.SourcesStatus(t.Context())
		assert.Len(t, statuses, 3)
		for _, st := range statuses {
			assert.Equal(t, "disconnected", st.Status)
		}
	})
}

func TestSourcesStatus(t *testing.T) {
	alive := &fakeSource{name: "alive", typ: source.TypeFile, alive: true}
	dead := &fakeSource{name: "dead", typ: source.TypeAPI, alive: false}
	m := newTestManager(t, nil, alive, dead)
	m.configured = []source.Config{
		{Name: "alive", Type: source.TypeFile, Enabled: true},
		{Name: "dead", Type: source.TypeAPI, Enabled: true},
		{Name: "failed_init", Type: source.TypeDatabase, Enabled: true},
	}

	statuses := m.SourcesStatus(t.Context())
	require.Len(t, statuses, 3)
	byName := make(map[string]SourceStatus)
	for _, st := range statuses {
		byName[st.Name] = st
	}
	assert.Equal(t, "active", byName["alive"].Status)
	assert.Equal(t, "disconnected", byName["dead"].Status, "live re-probe must notice a dead source")
	assert.Equal(t, "disconnected", byName["failed_init"].Status)
}

func TestCleanup(t *testing.T) {
	src := &fakeSource{name: "a", typ: source.TypeDatabase, alive: true}
	m := newTestManager(t, nil, src)

	m.Cleanup()
	assert.True(t, src.closed.Load())
	assert.Empty(t, m.ActiveSources())

	// idempotent
	m.Cleanup()
}

func TestActiveSources(t *testing.T) {
	m := newTestManager(t, nil,
		&fakeSource{name: "zeta", typ: source.TypeAPI, alive: true},
		&fakeSource{name: "alpha", typ: source.TypeFile, alive: true},
	)
	assert.Equal(t, []string{"alpha", "zeta"}, m.ActiveSources())
}
