package domain

type Residency string

const (
	ResidencyResident    Residency = "resident"
	ResidencyNonResident Residency = "non-resident"
)

// NSSFSplit selects the employee/employer social-security contribution
// percentages.
type NSSFSplit string

const (
	NSSFSplitEven  NSSFSplit = "10-10" // employee 10%, employer 10%
	NSSFSplitHeavy NSSFSplit = "5-15"  // employee 5%, employer 15%
)

// TaxResult is an immutable payroll computation output. It is recomputed on
// every input change and never partially mutated.
type TaxResult struct {
	Gross             float64 `json:"gross"`
	EmployeeNSSF      float64 `json:"employee_nssf"`
	EmployerNSSF      float64 `json:"employer_nssf"`
	EmployeeNSSFRate  float64 `json:"employee_nssf_rate"`
	EmployerNSSFRate  float64 `json:"employer_nssf_rate"`
	TaxableIncome     float64 `json:"taxable_income"`
	PAYE              float64 `json:"paye"`
	Bracket           string  `json:"bracket"`
	SDL               float64 `json:"sdl"`
	WCF               float64 `json:"wcf"`
	NetSalary         float64 `json:"net_salary"`
	TotalEmployerCost float64 `json:"total_employer_cost"`
	EffectiveRate     string  `json:"effective_rate"`
}
