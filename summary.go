package legalspend

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rusq/legalspend/types"
)

// topN is the number of entries in the ranked vendor/matter breakdowns.
const topN = 5

// GenerateSummary computes the aggregate over the given record set and date
// range.  It is a pure function of its arguments: it does not consult the
// data sources.  Zero records yield a zero summary with the date range
// preserved, never an error.
//
// The summary currency is taken from the first record; mixed-currency sets
// are not converted.  See the design notes on this limitation.
func GenerateSummary(records []types.LegalSpendRecord, start, end time.Time) types.SpendSummary {
	summary := types.SpendSummary{
		TotalAmount:    decimal.Zero,
		Currency:       "USD",
		PeriodStart:    start,
		PeriodEnd:      end,
		RecordCount:    len(records),
		TopVendors:     []types.NamedAmount{},
		TopMatters:     []types.NamedAmount{},
		ByDepartment:   map[string]decimal.Decimal{},
		ByPracticeArea: map[string]decimal.Decimal{},
	}
	if len(records) == 0 {
		return summary
	}

	summary.Currency = records[0].Currency
	vendorTotals := make(map[string]decimal.Decimal)
	matterTotals := make(map[string]decimal.Decimal)
	for _, r := range records {
		summary.TotalAmount = summary.TotalAmount.Add(r.Amount)
		vendorTotals[r.VendorName] = vendorTotals[r.VendorName].Add(r.Amount)
		matterTotals[r.MatterBucket()] = matterTotals[r.MatterBucket()].Add(r.Amount)
		summary.ByDepartment[r.Department] = summary.ByDepartment[r.Department].Add(r.Amount)
		pa := string(r.PracticeArea)
		summary.ByPracticeArea[pa] = summary.ByPracticeArea[pa].Add(r.Amount)
	}
	summary.TopVendors = rank(vendorTotals, topN)
	summary.TopMatters = rank(matterTotals, topN)
	return summary
}

// rank converts totals to a list sorted descending by amount, truncated to
// n.  The sort is stable over the name order, so ties break
// deterministically.
func rank(totals map[string]decimal.Decimal, n int) []types.NamedAmount {
	ranked := make([]types.NamedAmount, 0, len(totals))
	for name, amount := range totals {
		ranked = append(ranked, types.NamedAmount{Name: name, Amount: amount})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if !ranked[i].Amount.Equal(ranked[j].Amount) {
			return ranked[i].Amount.GreaterThan(ranked[j].Amount)
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
