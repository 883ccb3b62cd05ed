package tax

import (
	"strconv"

	"github.com/kito-labs/risiti/internal/core/domain"
)

// Monthly PAYE bracket thresholds and cumulative tax at each lower bound,
// resident schedule (TZS). Lower bounds are inclusive, upper bounds exclusive;
// the last band is unbounded.
const (
	band1Upper = 270_000
	band2Upper = 520_000
	band3Upper = 760_000
	band4Upper = 1_000_000

	band2Cumulative = 22_500
	band3Cumulative = 70_500
	band4Cumulative = 130_500
)

const (
	sdlRate = 0.035
	wcfRate = 0.005

	nonResidentRate = 0.15
)

// Calculate computes the full monthly payroll breakdown for a gross salary.
// It is a total function over gross > 0; the caller rejects non-positive
// input before calling.
func Calculate(gross float64, residency domain.Residency, split domain.NSSFSplit) domain.TaxResult {
	employeeRate, employerRate := nssfRates(split)

	employeeNSSF := gross * employeeRate
	employerNSSF := gross * employerRate
	taxable := gross - employeeNSSF

	paye, bracket := CalculatePAYE(taxable, residency)

	sdl := gross * sdlRate
	wcf := gross * wcfRate

	return domain.TaxResult{
		Gross:             gross,
		EmployeeNSSF:      employeeNSSF,
		EmployerNSSF:      employerNSSF,
		EmployeeNSSFRate:  employeeRate,
		EmployerNSSFRate:  employerRate,
		TaxableIncome:     taxable,
		PAYE:              paye,
		Bracket:           bracket,
		SDL:               sdl,
		WCF:               wcf,
		NetSalary:         gross - employeeNSSF - paye,
		TotalEmployerCost: gross + employerNSSF + sdl + wcf,
		EffectiveRate:     strconv.FormatFloat(paye/gross*100, 'f', 1, 64),
	}
}

// CalculatePAYE applies the progressive resident schedule to monthly taxable
// income, or the flat non-resident rate. Returns the tax and the matched
// bracket label.
func CalculatePAYE(taxableMonthly float64, residency domain.Residency) (float64, string) {
	if residency == domain.ResidencyNonResident {
		return taxableMonthly * nonResidentRate, "Flat 15% (non-resident)"
	}

	switch {
	case taxableMonthly <= band1Upper:
		return 0, "0% bracket (up to TZS 270,000)"
	case taxableMonthly <= band2Upper:
		return (taxableMonthly - band1Upper) * 0.09, "9% bracket (TZS 270,001 - 520,000)"
	case taxableMonthly <= band3Upper:
		return band2Cumulative + (taxableMonthly-band2Upper)*0.20, "20% bracket (TZS 520,001 - 760,000)"
	case taxableMonthly <= band4Upper:
		return band3Cumulative + (taxableMonthly-band3Upper)*0.25, "25% bracket (TZS 760,001 - 1,000,000)"
	default:
		return band4Cumulative + (taxableMonthly-band4Upper)*0.30, "30% bracket (above TZS 1,000,000)"
	}
}

func nssfRates(split domain.NSSFSplit) (employee, employer float64) {
	if split == domain.NSSFSplitHeavy {
		return 0.05, 0.15
	}
	return 0.10, 0.10
}
