package source

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rusq/legalspend/types"
)

// srcRecord returns a record fixture for the adapter tests, with opts applied
// on top of the defaults.
func srcRecord(opts ...func(*types.LegalSpendRecord)) types.LegalSpendRecord {
	r := types.LegalSpendRecord{
		InvoiceID:       "INV-001",
		VendorName:      "Smith & Associates",
		VendorType:      types.VTLawFirm,
		MatterName:      "Patent dispute",
		Department:      "Legal",
		PracticeArea:    types.PALitigation,
		InvoiceDate:     time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Amount:          decimal.RequireFromString("1500.00"),
		Currency:        "USD",
		ExpenseCategory: "Legal Services",
		Status:          "approved",
		SourceSystem:    "Test",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func TestFilters_Match(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{"empty filters match everything", Filters{}, true},
		{"vendor substring, case-insensitive", Filters{FltVendor: "smith"}, true},
		{"vendor mismatch", Filters{FltVendor: "Jones"}, false},
		{"department exact, case-insensitive", Filters{FltDepartment: "legal"}, true},
		{"department substring does not match", Filters{FltDepartment: "Leg"}, false},
		{"practice area", Filters{FltPracticeArea: "litigation"}, true},
		{"practice area mismatch", Filters{FltPracticeArea: "Tax"}, false},
		{"matter substring", Filters{FltMatter: "patent"}, true},
		{"status", Filters{FltStatus: "APPROVED"}, true},
		{"status mismatch", Filters{FltStatus: "pending"}, false},
		{"min amount inclusive", Filters{FltMinAmount: "1500"}, true},
		{"min amount above", Filters{FltMinAmount: "1500.01"}, false},
		{"max amount inclusive", Filters{FltMaxAmount: "1500.00"}, true},
		{"max amount below", Filters{FltMaxAmount: "100"}, false},
		{"unparseable amount bound never matches", Filters{FltMinAmount: "lots"}, false},
		{"empty value is ignored", Filters{FltVendor: ""}, true},
		{"unknown key is ignored", Filters{"colour": "blue"}, true},
		{"all filters must hold", Filters{FltVendor: "smith", FltStatus: "pending"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.Match(srcRecord()))
		})
	}
}

func TestConfig_Param(t *testing.T) {
	cfg := Config{
		Name: "test",
		Type: TypeFile,
		Connection: map[string]string{
			"file_path": "/tmp/spend.csv",
			"delimiter": "",
		},
	}
	assert.Equal(t, "/tmp/spend.csv", cfg.Param("file_path", "unused"))
	assert.Equal(t, ";", cfg.Param("delimiter", ";"), "empty value should fall back to default")
	assert.Equal(t, "Sheet1", cfg.Param("sheet_name", "Sheet1"), "absent key should fall back to default")
}

func TestContainsFold(t *testing.T) {
	assert.True(t, containsFold("Smith & Associates", "SMITH"))
	assert.True(t, containsFold("Smith & Associates", ""))
	assert.False(t, containsFold("", "smith"))
}
