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

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// NamedAmount is a {name, amount} pair used in ranked breakdowns.
type NamedAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// SpendSummary is an aggregate over a record set and a date range.  The
// currency is the currency of the first record in the set: mixed-currency
// sets are not converted.  This is a known limitation of the upstream data
// model, see the design notes.
type SpendSummary struct {
	TotalAmount    decimal.Decimal            `json:"total_amount"`
	Currency       string                     `json:"currency"`
	PeriodStart    time.Time                  `json:"period_start"`
	PeriodEnd      time.Time                  `json:"period_end"`
	RecordCount    int                        `json:"record_count"`
	TopVendors     []NamedAmount              `json:"top_vendors"`
	TopMatters     []NamedAmount              `json:"top_matters"`
	ByDepartment   map[string]decimal.Decimal `json:"by_department"`
	ByPracticeArea map[string]decimal.Decimal `json:"by_practice_area"`
}

// Trend classification values reported by the trend calculation.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// SpendTrend is the month-over-period movement of a record set.  Change is
// computed between the first and the last calendar month present, not a
// regression fit.
type SpendTrend struct {
	Trend            string                     `json:"trend"`
	ChangePercentage float64                    `json:"change_percentage"`
	FirstMonth       string                     `json:"first_month,omitempty"`
	LastMonth        string                     `json:"last_month,omitempty"`
	MonthlyTotals    map[string]decimal.Decimal `json:"monthly_totals,omitempty"`
}

// VendorPerformance holds the per-vendor analysis metrics.
type VendorPerformance struct {
	VendorName     string          `json:"vendor_name"`
	TotalSpend     decimal.Decimal `json:"total_spend"`
	InvoiceCount   int             `json:"invoice_count"`
	AverageInvoice decimal.Decimal `json:"average_invoice"`
	MattersCount   int             `json:"matters_count"`
	Currency       string          `json:"currency"`
	Trend          SpendTrend      `json:"spend_trend"`
}
