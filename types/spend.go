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

// Package types holds the normalised legal spend data model shared by all
// source adapters and the aggregation layer.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for all dates in the system.
const DateLayout = "2006-01-02"

// VendorType classifies the vendor on an invoice.
type VendorType string

const (
	VTLawFirm         VendorType = "Law Firm"
	VTConsultant      VendorType = "Consultant"
	VTExpertWitness   VendorType = "Expert Witness"
	VTCourtReporter   VendorType = "Court Reporter"
	VTEDiscovery      VendorType = "eDiscovery Vendor"
	VTHostingProvider VendorType = "Hosting Provider"
	VTForensics       VendorType = "Forensics"
	VTOther           VendorType = "Other"
)

// ParseVendorType maps s to a known vendor type, falling back to VTOther for
// anything it does not recognise.  Upstream systems are not consistent about
// vendor classification, so this never fails.
func ParseVendorType(s string) VendorType {
	switch VendorType(s) {
	case VTLawFirm, VTConsultant, VTExpertWitness, VTCourtReporter,
		VTEDiscovery, VTHostingProvider, VTForensics, VTOther:
		return VendorType(s)
	default:
		return VTOther
	}
}

// PracticeArea is the legal practice area an invoice is attributed to.
type PracticeArea string

const (
	PALitigation PracticeArea = "Litigation"
	PACorporate  PracticeArea = "Corporate"
	PAEmployment PracticeArea = "Employment"
	PAIntProp    PracticeArea = "Intellectual Property"
	PARegulatory PracticeArea = "Regulatory"
	PARealEstate PracticeArea = "Real Estate"
	PATax        PracticeArea = "Tax"
	PAGeneral    PracticeArea = "General"
)

// ParsePracticeArea maps s to a known practice area, falling back to
// PAGeneral.  An empty string is also mapped to PAGeneral, which is the
// documented default for records that do not carry the attribute.
func ParsePracticeArea(s string) PracticeArea {
	switch PracticeArea(s) {
	case PALitigation, PACorporate, PAEmployment, PAIntProp, PARegulatory,
		PARealEstate, PATax, PAGeneral:
		return PracticeArea(s)
	default:
		return PAGeneral
	}
}

// LegalSpendRecord is one normalised invoice line.  Adapters create records
// when translating upstream rows or API payloads; records are never mutated
// afterwards.  Amount is decimal, never a binary float, to avoid currency
// rounding drift in aggregation.
type LegalSpendRecord struct {
	InvoiceID          string            `json:"invoice_id"`
	VendorName         string            `json:"vendor_name"`
	VendorType         VendorType        `json:"vendor_type"`
	MatterID           string            `json:"matter_id,omitempty"`
	MatterName         string            `json:"matter_name,omitempty"`
	Department         string            `json:"department"`
	PracticeArea       PracticeArea      `json:"practice_area"`
	InvoiceDate        time.Time         `json:"invoice_date"`
	Amount             decimal.Decimal   `json:"amount"`
	Currency           string            `json:"currency"`
	ExpenseCategory    string            `json:"expense_category"`
	Description        string            `json:"description"`
	BillingPeriodStart *time.Time        `json:"billing_period_start,omitempty"`
	BillingPeriodEnd   *time.Time        `json:"billing_period_end,omitempty"`
	Status             string            `json:"status,omitempty"`
	BudgetCode         string            `json:"budget_code,omitempty"`
	SourceSystem       string            `json:"source_system,omitempty"`
	Metadata           map[string]any    `json:"metadata,omitempty"`
}

// Records is a slice of spend records.
type Records []LegalSpendRecord

// Total returns the decimal sum of all record amounts.
func (rr Records) Total() decimal.Decimal {
	total := decimal.Zero
	for _, r := range rr {
		total = total.Add(r.Amount)
	}
	return total
}

// MatterBucket returns the matter name for grouping purposes.  Records
// without a matter are bucketed under the literal "General".
func (r LegalSpendRecord) MatterBucket() string {
	if r.MatterName == "" {
		return "General"
	}
	return r.MatterName
}

// Month returns the calendar month of the invoice date in YYYY-MM form.
func (r LegalSpendRecord) Month() string {
	return r.InvoiceDate.Format("2006-01")
}
