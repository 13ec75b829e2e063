// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package mcp

// In this file: MCP tool definitions and handler implementations.

import (
	"context"
	"errors"
	"fmt"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"

	"github.com/rusq/legalspend"
	"github.com/rusq/legalspend/internal/source"
	"github.com/rusq/legalspend/types"
)

//go:generate mockgen -destination=mock_mcp/mock_mcp.go . Manager

// Manager is the subset of the aggregation manager that the MCP server
// consumes.  *legalspend.Manager satisfies it.
type Manager interface {
	SpendData(ctx context.Context, start, end time.Time, filters source.Filters, sourceName string) ([]types.LegalSpendRecord, error)
	ActiveSources() []string
	AllVendors(ctx context.Context) ([]types.Vendor, error)
	SourcesStatus(ctx context.Context) []legalspend.SourceStatus
	SearchTransactions(ctx context.Context, term string, start, end time.Time, opts legalspend.SearchOptions) ([]types.LegalSpendRecord, error)
	VendorPerformance(ctx context.Context, vendorName string, start, end time.Time) (types.VendorPerformance, map[string]legalspend.MatterStat, error)
	VendorBenchmarks(vendorName string) map[string]any
	DepartmentSpend(ctx context.Context, department string, start, end time.Time) ([]types.LegalSpendRecord, error)
	BudgetFor(department string) (decimal.Decimal, bool)
	AnalyzeBudget(records []types.LegalSpendRecord, budget decimal.Decimal) legalspend.BudgetAnalysis
	SpendOverview(ctx context.Context, start, end time.Time) (legalspend.Overview, error)
	SpendCategories(ctx context.Context) (legalspend.Categories, error)
}

// ─── get_legal_spend_summary ──────────────────────────────────────────────────

func (s *Server) toolSpendSummary() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_legal_spend_summary",
		mcplib.WithDescription(`Get a legal spend summary for the specified period with optional filters.

Returns totals, record counts, top vendors and matters, and per-department /
per-practice-area breakdowns, aggregated across all active data sources
unless a specific data_source is named.`),
		mcplib.WithString("start_date",
			mcplib.Description("Start date in YYYY-MM-DD format"),
			mcplib.Required(),
		),
		mcplib.WithString("end_date",
			mcplib.Description("End date in YYYY-MM-DD format"),
			mcplib.Required(),
		),
		mcplib.WithString("department",
			mcplib.Description("Filter by department name (optional)"),
		),
		mcplib.WithString("practice_area",
			mcplib.Description("Filter by practice area (optional)"),
		),
		mcplib.WithString("vendor",
			mcplib.Description("Filter by vendor name, substring match (optional)"),
		),
		mcplib.WithString("data_source",
			mcplib.Description("Query only this named data source (optional, default: all)"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleSpendSummary}
}

// spendSummaryResult is the JSON payload of get_legal_spend_summary.
type spendSummaryResult struct {
	Period          string                     `json:"period"`
	TotalAmount     decimal.Decimal            `json:"total_amount"`
	Currency        string                     `json:"currency"`
	RecordCount     int                        `json:"record_count"`
	TopVendors      []types.NamedAmount        `json:"top_vendors"`
	TopMatters      []types.NamedAmount        `json:"top_matters"`
	ByDepartment    map[string]decimal.Decimal `json:"by_department"`
	ByPracticeArea  map[string]decimal.Decimal `json:"by_practice_area"`
	DataSourcesUsed []string                   `json:"data_sources_used"`
	FiltersApplied  source.Filters             `json:"filters_applied"`
}

func (s *Server) handleSpendSummary(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	start, err := dateArg(req, "start_date")
	if err != nil {
		return resultErr(err), nil
	}
	end, err := dateArg(req, "end_date")
	if err != nil {
		return resultErr(err), nil
	}

	filters := source.Filters{}
	if v, ok := stringArg(req, "department"); ok && v != "" {
		filters[source.FltDepartment] = v
	}
	if v, ok := stringArg(req, "practice_area"); ok && v != "" {
		filters[source.FltPracticeArea] = v
	}
	if v, ok := stringArg(req, "vendor"); ok && v != "" {
		filters[source.FltVendor] = v
	}
	sourceName, _ := stringArg(req, "data_source")

	records, err := s.manager.SpendData(ctx, start, end, filters, sourceName)
	if err != nil {
		return resultErr(fmt.Errorf("get_legal_spend_summary: %w", err)), nil
	}

	summary := legalspend.GenerateSummary(records, start, end)
	result, err := resultJSON(spendSummaryResult{
		Period:          periodString(start, end),
		TotalAmount:     summary.TotalAmount,
		Currency:        summary.Currency,
		RecordCount:     summary.RecordCount,
		TopVendors:      summary.TopVendors,
		TopMatters:      summary.TopMatters,
		ByDepartment:    summary.ByDepartment,
		ByPracticeArea:  summary.ByPracticeArea,
		DataSourcesUsed: s.manager.ActiveSources(),
		FiltersApplied:  filters,
	})
	if err != nil {
		return resultErr(fmt.Errorf("get_legal_spend_summary: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── get_vendor_performance ───────────────────────────────────────────────────

func (s *Server) toolVendorPerformance() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_vendor_performance",
		mcplib.WithDescription(`Analyze performance and spend patterns for a specific vendor/law firm.

Returns total spend, invoice count, average invoice amount, a per-matter
breakdown, and the month-over-period spend trend for the vendor.`),
		mcplib.WithString("vendor_name",
			mcplib.Description("Name of the vendor/law firm to analyze"),
			mcplib.Required(),
		),
		mcplib.WithString("start_date",
			mcplib.Description("Start date in YYYY-MM-DD format"),
			mcplib.Required(),
		),
		mcplib.WithString("end_date",
			mcplib.Description("End date in YYYY-MM-DD format"),
			mcplib.Required(),
		),
		mcplib.WithBoolean("include_benchmarks",
			mcplib.Description("Include industry benchmark comparisons (default false)"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleVendorPerformance}
}

// vendorPerformanceResult is the JSON payload of get_vendor_performance.
type vendorPerformanceResult struct {
	VendorName         string                           `json:"vendor_name"`
	AnalysisPeriod     string                           `json:"analysis_period"`
	PerformanceMetrics types.VendorPerformance          `json:"performance_metrics"`
	MatterBreakdown    map[string]legalspend.MatterStat `json:"matter_breakdown"`
	IndustryBenchmarks map[string]any                   `json:"industry_benchmarks,omitempty"`
}

func (s *Server) handleVendorPerformance(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	vendorName, ok := stringArg(req, "vendor_name")
	if !ok || vendorName == "" {
		return resultErr(errors.New("get_vendor_performance: vendor_name is required")), nil
	}
	start, err := dateArg(req, "start_date")
	if err != nil {
		return resultErr(err), nil
	}
	end, err := dateArg(req, "end_date")
	if err != nil {
		return resultErr(err), nil
	}

	perf, matters, err := s.manager.VendorPerformance(ctx, vendorName, start, end)
	if err != nil {
		return resultErr(err), nil
	}

	payload := vendorPerformanceResult{
		VendorName:         vendorName,
		AnalysisPeriod:     periodString(start, end),
		PerformanceMetrics: perf,
		MatterBreakdown:    matters,
	}
	if boolArg(req, "include_benchmarks", false) {
		payload.IndustryBenchmarks = s.manager.VendorBenchmarks(vendorName)
	}

	result, err := resultJSON(payload)
	if err != nil {
		return resultErr(fmt.Errorf("get_vendor_performance: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── get_budget_vs_actual ─────────────────────────────────────────────────────

func (s *Server) toolBudgetVsActual() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_budget_vs_actual",
		mcplib.WithDescription(`Compare actual legal spend against budget for a department.

Returns the variance, variance percentage, over/under-budget status, a
monthly breakdown and recommendations.  When budget_amount is omitted, the
budget configured for the department on the server is used.`),
		mcplib.WithString("department",
			mcplib.Description("Department name to analyze"),
			mcplib.Required(),
		),
		mcplib.WithString("start_date",
			mcplib.Description("Start date in YYYY-MM-DD format"),
			mcplib.Required(),
		),
		mcplib.WithString("end_date",
			mcplib.Description("End date in YYYY-MM-DD format"),
			mcplib.Required(),
		),
		mcplib.WithNumber("budget_amount",
			mcplib.Description("Budget amount to compare against (optional when the server has a configured budget for the department)"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleBudgetVsActual}
}

// budgetVsActualResult is the JSON payload of get_budget_vs_actual.
type budgetVsActualResult struct {
	Department     string                    `json:"department"`
	AnalysisPeriod string                    `json:"analysis_period"`
	BudgetAnalysis legalspend.BudgetAnalysis `json:"budget_analysis"`
}

func (s *Server) handleBudgetVsActual(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	department, ok := stringArg(req, "department")
	if !ok || department == "" {
		return resultErr(errors.New("get_budget_vs_actual: department is required")), nil
	}
	start, err := dateArg(req, "start_date")
	if err != nil {
		return resultErr(err), nil
	}
	end, err := dateArg(req, "end_date")
	if err != nil {
		return resultErr(err), nil
	}

	var budget decimal.Decimal
	if f, ok := floatArg(req, "budget_amount"); ok {
		budget = decimal.NewFromFloat(f)
	} else if b, ok := s.manager.BudgetFor(department); ok {
		budget = b
	} else {
		return resultErr(fmt.Errorf(
			"get_budget_vs_actual: no budget_amount given and no budget configured for department %q", department)), nil
	}

	records, err := s.manager.DepartmentSpend(ctx, department, start, end)
	if err != nil {
		return resultErr(fmt.Errorf("get_budget_vs_actual: %w", err)), nil
	}
	if len(records) == 0 {
		return resultErr(fmt.Errorf("no spend data found for department: %s", department)), nil
	}

	result, err := resultJSON(budgetVsActualResult{
		Department:     department,
		AnalysisPeriod: periodString(start, end),
		BudgetAnalysis: s.manager.AnalyzeBudget(records, budget),
	})
	if err != nil {
		return resultErr(fmt.Errorf("get_budget_vs_actual: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── search_legal_transactions ────────────────────────────────────────────────

func (s *Server) toolSearchTransactions() mcpsrv.ServerTool {
	tool := mcplib.NewTool("search_legal_transactions",
		mcplib.WithDescription(`Search legal transactions by description, vendor name or matter name.

The search term is matched case-insensitively as a substring.  When the date
range is omitted, the search covers the current year to date.`),
		mcplib.WithString("search_term",
			mcplib.Description("Term to match against description, vendor name and matter name"),
			mcplib.Required(),
		),
		mcplib.WithString("start_date",
			mcplib.Description("Start date filter in YYYY-MM-DD format (optional, default: start of current year)"),
		),
		mcplib.WithString("end_date",
			mcplib.Description("End date filter in YYYY-MM-DD format (optional, default: today)"),
		),
		mcplib.WithNumber("min_amount",
			mcplib.Description("Minimum transaction amount (optional)"),
		),
		mcplib.WithNumber("max_amount",
			mcplib.Description("Maximum transaction amount (optional)"),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of results to return (default 50)"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleSearchTransactions}
}

// transactionSummary is a JSON-serialisable view of one matching record.
type transactionSummary struct {
	TransactionID string          `json:"transaction_id"`
	Date          string          `json:"date"`
	VendorName    string          `json:"vendor_name"`
	MatterName    string          `json:"matter_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description,omitempty"`
	Department    string          `json:"department,omitempty"`
	PracticeArea  string          `json:"practice_area,omitempty"`
	DataSource    string          `json:"data_source,omitempty"`
}

func (s *Server) handleSearchTransactions(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	term, ok := stringArg(req, "search_term")
	if !ok || term == "" {
		return resultErr(errors.New("search_legal_transactions: search_term is required")), nil
	}

	// Default to the current year to date when either bound is absent.
	now := time.Now()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := now
	startStr, _ := stringArg(req, "start_date")
	endStr, _ := stringArg(req, "end_date")
	if startStr != "" && endStr != "" {
		var err error
		if start, err = dateArg(req, "start_date"); err != nil {
			return resultErr(err), nil
		}
		if end, err = dateArg(req, "end_date"); err != nil {
			return resultErr(err), nil
		}
	}

	opts := legalspend.SearchOptions{
		Limit: intArg(req, "limit", legalspend.DefSearchLimit),
	}
	if f, ok := floatArg(req, "min_amount"); ok {
		d := decimal.NewFromFloat(f)
		opts.MinAmount = &d
	}
	if f, ok := floatArg(req, "max_amount"); ok {
		d := decimal.NewFromFloat(f)
		opts.MaxAmount = &d
	}

	records, err := s.manager.SearchTransactions(ctx, term, start, end, opts)
	if err != nil {
		return resultErr(fmt.Errorf("search_legal_transactions: %w", err)), nil
	}

	summaries := make([]transactionSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, transactionSummary{
			TransactionID: r.InvoiceID,
			Date:          r.InvoiceDate.Format(types.DateLayout),
			VendorName:    r.VendorName,
			MatterName:    r.MatterName,
			Amount:        r.Amount,
			Currency:      r.Currency,
			Description:   r.Description,
			Department:    r.Department,
			PracticeArea:  string(r.PracticeArea),
			DataSource:    r.SourceSystem,
		})
	}

	result, err := resultJSON(summaries)
	if err != nil {
		return resultErr(fmt.Errorf("search_legal_transactions: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── list_vendors ─────────────────────────────────────────────────────────────

func (s *Server) toolListVendors() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_vendors",
		mcplib.WithDescription("List all legal vendors known across the active data sources. Vendors appearing in multiple sources are deduplicated."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleListVendors}
}

// vendorListResult is the JSON payload of list_vendors.
type vendorListResult struct {
	Vendors     []types.Vendor `json:"vendors"`
	TotalCount  int            `json:"total_count"`
	DataSources []string       `json:"data_sources"`
	LastUpdated string         `json:"last_updated"`
}

func (s *Server) handleListVendors(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	vendors, err := s.manager.AllVendors(ctx)
	if err != nil {
		return resultErr(fmt.Errorf("list_vendors: %w", err)), nil
	}
	result, err := resultJSON(vendorListResult{
		Vendors:     vendors,
		TotalCount:  len(vendors),
		DataSources: s.manager.ActiveSources(),
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return resultErr(fmt.Errorf("list_vendors: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── list_data_sources ────────────────────────────────────────────────────────

func (s *Server) toolListDataSources() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_data_sources",
		mcplib.WithDescription("List the configured data sources and their live connection status. Each source is re-probed on every call."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleListDataSources}
}

// sourceListResult is the JSON payload of list_data_sources.
type sourceListResult struct {
	DataSources     []legalspend.SourceStatus `json:"data_sources"`
	ActiveCount     int                       `json:"active_count"`
	TotalConfigured int                       `json:"total_configured"`
	LastChecked     string                    `json:"last_checked"`
}

func (s *Server) handleListDataSources(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	statuses := s.manager.SourcesStatus(ctx)
	active := 0
	for _, st := range statuses {
		if st.Status == "active" {
			active++
		}
	}
	result, err := resultJSON(sourceListResult{
		DataSources:     statuses,
		ActiveCount:     active,
		TotalConfigured: len(statuses),
		LastChecked:     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return resultErr(fmt.Errorf("list_data_sources: serialise: %w", err)), nil
	}
	return result, nil
}

// periodString formats a date range the way tool payloads report it.
func periodString(start, end time.Time) string {
	return fmt.Sprintf("%s to %s", start.Format(types.DateLayout), end.Format(types.DateLayout))
}
