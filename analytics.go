package legalspend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rusq/legalspend/internal/source"
	"github.com/rusq/legalspend/types"
)

// trendThreshold is the fixed classification policy: month-over-period
// change beyond ±10% is reported as increasing/decreasing.
const trendThreshold = 10.0

// CalculateSpendTrend buckets record amounts by calendar month and reports
// the percentage change between the first and the last month present.  With
// fewer than two distinct months the trend is "stable" with zero change.
// This is a first-vs-last comparison, not a regression fit.
func CalculateSpendTrend(records []types.LegalSpendRecord) types.SpendTrend {
	monthly := make(map[string]decimal.Decimal)
	for _, r := range records {
		monthly[r.Month()] = monthly[r.Month()].Add(r.Amount)
	}
	trend := types.SpendTrend{
		Trend:         types.TrendStable,
		MonthlyTotals: monthly,
	}
	if len(monthly) < 2 {
		return trend
	}

	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months) // YYYY-MM sorts chronologically
	first, last := months[0], months[len(months)-1]
	trend.FirstMonth, trend.LastMonth = first, last

	if monthly[first].IsZero() {
		// no base to compare against; change is undefined, report stable.
		return trend
	}
	change, _ := monthly[last].Sub(monthly[first]).
		Div(monthly[first]).Mul(decimal.NewFromInt(100)).Float64()
	trend.ChangePercentage = change
	switch {
	case change > trendThreshold:
		trend.Trend = types.TrendIncreasing
	case change < -trendThreshold:
		trend.Trend = types.TrendDecreasing
	}
	return trend
}

// MonthlyBreakdown returns per-month totals of the record set, sorted
// chronologically.
func MonthlyBreakdown(records []types.LegalSpendRecord) []types.NamedAmount {
	monthly := make(map[string]decimal.Decimal)
	for _, r := range records {
		monthly[r.Month()] = monthly[r.Month()].Add(r.Amount)
	}
	out := make([]types.NamedAmount, 0, len(monthly))
	for m, total := range monthly {
		out = append(out, types.NamedAmount{Name: m, Amount: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SearchOptions bound a transaction search.
type SearchOptions struct {
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Limit     int
}

// DefSearchLimit is the default result cap for transaction searches.
const DefSearchLimit = 50

// SearchTransactions finds records whose vendor name, matter name or
// description contains term (case-insensitive).  Matches are then filtered
// by the optional amount bounds and truncated to the limit.  Zero matches is
// a valid result, not an error.
func (m *Manager) SearchTransactions(ctx context.Context, term string, start, end time.Time, opts SearchOptions) ([]types.LegalSpendRecord, error) {
	records, err := m.SpendData(ctx, start, end, nil, "")
	if err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefSearchLimit
	}
	needle := strings.ToLower(term)
	matches := make([]types.LegalSpendRecord, 0, limit)
	for _, r := range records {
		if !strings.Contains(strings.ToLower(r.VendorName), needle) &&
			!strings.Contains(strings.ToLower(r.MatterName), needle) &&
			!strings.Contains(strings.ToLower(r.Description), needle) {
			continue
		}
		if opts.MinAmount != nil && r.Amount.LessThan(*opts.MinAmount) {
			continue
		}
		if opts.MaxAmount != nil && r.Amount.GreaterThan(*opts.MaxAmount) {
			continue
		}
		matches = append(matches, r)
		if len(matches) == limit {
			break
		}
	}
	return matches, nil
}

// VendorData returns all records attributed to the vendor in the period.
func (m *Manager) VendorData(ctx context.Context, vendorName string, start, end time.Time) ([]types.LegalSpendRecord, error) {
	return m.SpendData(ctx, start, end, source.Filters{source.FltVendor: vendorName}, "")
}

// MatterStat is the per-matter slice of a vendor's work.
type MatterStat struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// VendorPerformance computes the analysis metrics for one vendor over the
// period.  It returns an error when the vendor has no records in the period,
// since averages over an empty set are undefined.
func (m *Manager) VendorPerformance(ctx context.Context, vendorName string, start, end time.Time) (types.VendorPerformance, map[string]MatterStat, error) {
	records, err := m.VendorData(ctx, vendorName, start, end)
	if err != nil {
		return types.VendorPerformance{}, nil, err
	}
	if len(records) == 0 {
		return types.VendorPerformance{}, nil, fmt.Errorf("no data found for vendor: %s", vendorName)
	}

	total := types.Records(records).Total()
	matters := make(map[string]MatterStat)
	for _, r := range records {
		stat := matters[r.MatterBucket()]
		stat.Count++
		stat.Total = stat.Total.Add(r.Amount)
		matters[r.MatterBucket()] = stat
	}
	perf := types.VendorPerformance{
		VendorName:     vendorName,
		TotalSpend:     total,
		InvoiceCount:   len(records),
		AverageInvoice: total.Div(decimal.NewFromInt(int64(len(records)))).Round(2),
		MattersCount:   len(matters),
		Currency:       records[0].Currency,
		Trend:          CalculateSpendTrend(records),
	}
	return perf, matters, nil
}

// VendorBenchmarks reports industry benchmark comparisons for a vendor.
// Benchmark feeds are not integrated yet; the placeholder payload keeps the
// response shape stable for clients that request benchmarks.
func (m *Manager) VendorBenchmarks(vendorName string) map[string]any {
	return map[string]any{
		"vendor_name": vendorName,
		"available":   false,
		"note":        "industry benchmark data is not integrated yet",
	}
}

// DepartmentSpend returns all records for the department in the period.
func (m *Manager) DepartmentSpend(ctx context.Context, department string, start, end time.Time) ([]types.LegalSpendRecord, error) {
	return m.SpendData(ctx, start, end, source.Filters{source.FltDepartment: department}, "")
}

// BudgetFor looks up the configured budget for the department, if any.
func (m *Manager) BudgetFor(department string) (decimal.Decimal, bool) {
	return m.opts.budgets.For(department)
}

// BudgetAnalysis is the result of a budget-vs-actual comparison.
type BudgetAnalysis struct {
	BudgetAmount       decimal.Decimal     `json:"budget_amount"`
	ActualSpend        decimal.Decimal     `json:"actual_spend"`
	Variance           decimal.Decimal     `json:"variance"`
	VariancePercentage float64             `json:"variance_percentage"`
	Status             string              `json:"status"` // over_budget | under_budget
	MonthlyBreakdown   []types.NamedAmount `json:"monthly_breakdown"`
	TransactionCount   int                 `json:"transaction_count"`
	Recommendations    []string            `json:"recommendations"`
}

// AnalyzeBudget compares actual spend in records against budget.  A zero
// budget yields a zero variance percentage, never a division fault.
func (m *Manager) AnalyzeBudget(records []types.LegalSpendRecord, budget decimal.Decimal) BudgetAnalysis {
	actual := types.Records(records).Total()
	variance := actual.Sub(budget)
	var variancePct float64
	if budget.IsPositive() {
		variancePct, _ = variance.Div(budget).Mul(decimal.NewFromInt(100)).Float64()
	}
	status := "under_budget"
	if variance.IsPositive() {
		status = "over_budget"
	}
	return BudgetAnalysis{
		BudgetAmount:       budget,
		ActualSpend:        actual,
		Variance:           variance,
		VariancePercentage: variancePct,
		Status:             status,
		MonthlyBreakdown:   MonthlyBreakdown(records),
		TransactionCount:   len(records),
		Recommendations:    m.BudgetRecommendations(variancePct, records),
	}
}

// BudgetRecommendations returns fixed recommendation text selected by the
// variance band (over/under/within the configured tolerance), plus a
// vendor-concentration flag when a single vendor exceeds 40% of the spend.
func (m *Manager) BudgetRecommendations(variancePct float64, records []types.LegalSpendRecord) []string {
	var recs []string
	switch {
	case variancePct > m.opts.tolerance:
		recs = append(recs,
			"Spend is significantly over budget. Review recent matters for scope changes and consider renegotiating vendor rates.")
	case variancePct < -m.opts.tolerance:
		recs = append(recs,
			"Spend is significantly under budget. Verify that all invoices have been received and approved for the period.")
	default:
		recs = append(recs, "Spend is within the budget tolerance. No action needed.")
	}
	if vendor, share, ok := dominantVendor(records); ok {
		recs = append(recs, fmt.Sprintf(
			"Vendor concentration: %s accounts for %.0f%% of spend in this set. Consider diversifying outside counsel.",
			vendor, share*100))
	}
	return recs
}

// dominantVendor finds a vendor exceeding the concentration threshold, if
// one exists.
func dominantVendor(records []types.LegalSpendRecord) (name string, share float64, ok bool) {
	total := types.Records(records).Total()
	if !total.IsPositive() {
		return "", 0, false
	}
	perVendor := make(map[string]decimal.Decimal)
	for _, r := range records {
		perVendor[r.VendorName] = perVendor[r.VendorName].Add(r.Amount)
	}
	for vendor, amount := range perVendor {
		s, _ := amount.Div(total).Float64()
		if s > concentrationThreshold && s > share {
			name, share, ok = vendor, s, true
		}
	}
	return name, share, ok
}

// Overview is a condensed view of recent spend activity.
type Overview struct {
	TotalSpend       decimal.Decimal     `json:"total_spend"`
	Currency         string              `json:"currency"`
	TransactionCount int                 `json:"transaction_count"`
	ActiveVendors    int                 `json:"active_vendors"`
	TopCategories    []types.NamedAmount `json:"top_categories"`
	Alerts           []string            `json:"alerts"`
	Trend            types.SpendTrend    `json:"trends"`
}

// SpendOverview aggregates activity for the period across all sources.
func (m *Manager) SpendOverview(ctx context.Context, start, end time.Time) (Overview, error) {
	records, err := m.SpendData(ctx, start, end, nil, "")
	if err != nil {
		return Overview{}, err
	}
	vendors := make(map[string]bool)
	categories := make(map[string]decimal.Decimal)
	for _, r := range records {
		vendors[r.VendorName] = true
		categories[r.ExpenseCategory] = categories[r.ExpenseCategory].Add(r.Amount)
	}
	ov := Overview{
		TotalSpend:       types.Records(records).Total(),
		Currency:         "USD",
		TransactionCount: len(records),
		ActiveVendors:    len(vendors),
		TopCategories:    rank(categories, topN),
		Alerts:           []string{},
		Trend:            CalculateSpendTrend(records),
	}
	if len(records) > 0 {
		ov.Currency = records[0].Currency
	}
	if vendor, share, ok := dominantVendor(records); ok {
		ov.Alerts = append(ov.Alerts, fmt.Sprintf(
			"%s accounts for %.0f%% of spend in the period", vendor, share*100))
	}
	if ov.Trend.Trend == types.TrendIncreasing {
		ov.Alerts = append(ov.Alerts, fmt.Sprintf(
			"spend is trending up %.1f%% over the period", ov.Trend.ChangePercentage))
	}
	return ov, nil
}

// Categories describes the vocabulary present in the spend data.
type Categories struct {
	ExpenseCategories []string `json:"expense_categories"`
	PracticeAreas     []string `json:"practice_areas"`
	Departments       []string `json:"departments"`
	MatterTypes       []string `json:"matter_types"`
	// CompletenessScore is the share of records carrying all optional
	// classification fields (matter, budget code, specific practice area).
	CompletenessScore float64 `json:"completeness_score"`
}

// SpendCategories surveys the last year of data for the category vocabulary.
func (m *Manager) SpendCategories(ctx context.Context) (Categories, error) {
	end := time.Now()
	start := end.AddDate(-1, 0, 0)
	records, err := m.SpendData(ctx, start, end, nil, "")
	if err != nil {
		return Categories{}, err
	}
	var (
		expense  = make(map[string]bool)
		practice = make(map[string]bool)
		depts    = make(map[string]bool)
		matters  = make(map[string]bool)
		complete int
	)
	for _, r := range records {
		expense[r.ExpenseCategory] = true
		practice[string(r.PracticeArea)] = true
		depts[r.Department] = true
		matters[r.MatterBucket()] = true
		if r.MatterName != "" && r.BudgetCode != "" && r.PracticeArea != types.PAGeneral {
			complete++
		}
	}
	cats := Categories{
		ExpenseCategories: sortedKeys(expense),
		PracticeAreas:     sortedKeys(practice),
		Departments:       sortedKeys(depts),
		MatterTypes:       sortedKeys(matters),
	}
	if len(records) > 0 {
		cats.CompletenessScore = float64(complete) / float64(len(records))
	}
	return cats, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
