// Package source provides spend data adapters for the different upstream
// systems.
//
// Currently, the following source families are supported:
//   - remote spend-management APIs (LegalTracker)
//   - relational databases (PostgreSQL, SQL Server, Oracle, SQLite)
//   - flat files (CSV, Excel)
//
// Every adapter implements the same contract: fetch normalised spend records
// for a date range, list vendors, and probe connectivity.  Adapters recover
// from transient upstream failures locally: SpendData logs and returns an
// empty slice rather than propagating I/O or parse errors, so that one bad
// source never suppresses results from its siblings.
package source

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rusq/legalspend/types"
)

// Type is the source family of a configuration entry.
type Type string

const (
	TypeAPI      Type = "api"
	TypeDatabase Type = "database"
	TypeFile     Type = "file"
)

// Config describes one configured data source.  It is created once at
// startup from the environment and read-only afterwards.  The required
// Connection keys depend on Type and Name.
type Config struct {
	Name       string            `validate:"required"`
	Type       Type              `validate:"required,oneof=api database file"`
	Enabled    bool
	Connection map[string]string `validate:"required"`
}

// Param returns the named connection parameter, or def if it is absent or
// empty.
func (c Config) Param(key, def string) string {
	if v, ok := c.Connection[key]; ok && v != "" {
		return v
	}
	return def
}

// Sourcer is the uniform data-source contract.
//
// SpendData must return an empty slice, never an error, on any upstream or
// parse failure; the failure is logged by the adapter.  The date range is
// inclusive on both ends, and start <= end is the caller's responsibility.
//
// Vendors must assign each vendor a stable id derived from its name (see
// types.VendorID) so that cross-source deduplication works.
//
// TestConnection never panics and never returns an error: it reports
// reachability as a boolean.
type Sourcer interface {
	// Name returns the configured source name, e.g. "legaltracker".
	Name() string
	// Type returns the source family, e.g. "api".
	Type() Type
	SpendData(ctx context.Context, start, end time.Time, filters Filters) ([]types.LegalSpendRecord, error)
	Vendors(ctx context.Context) ([]types.Vendor, error)
	TestConnection(ctx context.Context) bool
}

// SourceCloser is implemented by sources that hold releasable resources,
// such as database connection pools.
type SourceCloser interface {
	Sourcer
	io.Closer
}

// Filter keys understood by the adapters.  String-valued filters match
// case-insensitively as substrings; amount bounds are decimal comparisons.
const (
	FltVendor       = "vendor"
	FltDepartment   = "department"
	FltPracticeArea = "practice_area"
	FltMatter       = "matter"
	FltStatus       = "status"
	FltMinAmount    = "min_amount"
	FltMaxAmount    = "max_amount"
)

// Filters is a field-name to match-value mapping.
type Filters map[string]string

// Match reports whether the record satisfies every filter.  Unknown filter
// keys are ignored.  This is the in-memory filter semantics used by the file
// and API adapters; the database adapter translates the same keys to
// parameterised SQL predicates.
func (f Filters) Match(r types.LegalSpendRecord) bool {
	for key, want := range f {
		if want == "" {
			continue
		}
		switch key {
		case FltVendor:
			if !containsFold(r.VendorName, want) {
				return false
			}
		case FltDepartment:
			if !strings.EqualFold(r.Department, want) {
				return false
			}
		case FltPracticeArea:
			if !strings.EqualFold(string(r.PracticeArea), want) {
				return false
			}
		case FltMatter:
			if !containsFold(r.MatterName, want) {
				return false
			}
		case FltStatus:
			if !strings.EqualFold(r.Status, want) {
				return false
			}
		case FltMinAmount:
			min, err := decimal.NewFromString(want)
			if err != nil || r.Amount.LessThan(min) {
				return false
			}
		case FltMaxAmount:
			max, err := decimal.NewFromString(want)
			if err != nil || r.Amount.GreaterThan(max) {
				return false
			}
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
