package legalspend

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// Budgets maps a department name to its budget amount for the reporting
// period.  Lookups are case-insensitive.
type Budgets map[string]decimal.Decimal

// For returns the budget for the department, if configured.
func (b Budgets) For(department string) (decimal.Decimal, bool) {
	for dept, amount := range b {
		if strings.EqualFold(dept, department) {
			return amount, true
		}
	}
	return decimal.Zero, false
}

// budgetsFile is the TOML shape of the budgets file:
//
//	[budgets]
//	Legal = "250000.00"
//	Compliance = "80000.00"
//
// Amounts are strings to keep them exact; TOML floats are binary floats.
type budgetsFile struct {
	Budgets map[string]string `toml:"budgets"`
}

// LoadBudgets reads department budgets from the TOML file at path.
func LoadBudgets(path string) (Budgets, error) {
	var bf budgetsFile
	if _, err := toml.DecodeFile(path, &bf); err != nil {
		return nil, fmt.Errorf("budgets file %s: %w", path, err)
	}
	budgets := make(Budgets, len(bf.Budgets))
	for dept, amount := range bf.Budgets {
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("budgets file %s: department %q: bad amount %q: %w", path, dept, amount, err)
		}
		if d.IsNegative() {
			return nil, fmt.Errorf("budgets file %s: department %q: negative budget", path, dept)
		}
		budgets[dept] = d
	}
	return budgets, nil
}
