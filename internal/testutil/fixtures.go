package testutil

import (
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

// Employee options
type EmployeeOption func(*contract.EmployeeObject)

func WithName(name string) EmployeeOption {
	return func(e *contract.EmployeeObject) {
		e.EmpName = name
	}
}

func WithPlacement(manager, client, department string) EmployeeOption {
	return func(e *contract.EmployeeObject) {
		e.AccountManager = manager
		e.Client = client
		e.Department = department
	}
}

func WithMonths(duration, payroll string) EmployeeOption {
	return func(e *contract.EmployeeObject) {
		e.DurationMonth = duration
		e.PayrollMonth = payroll
	}
}

func WithTotal(amount int64) EmployeeOption {
	return func(e *contract.EmployeeObject) {
		d := decimal.NewFromInt(amount)
		e.TotalAllowances = &d
	}
}

// WithMonthDetail appends a per-month entry with the given shift counts.
func WithMonthDetail(duration, shiftA, shiftB, shiftC, prime string) EmployeeOption {
	return func(e *contract.EmployeeObject) {
		e.Months = append(e.Months, contract.MonthDetail{
			DurationMonth: duration,
			PayrollMonth:  e.PayrollMonth,
			ShiftA:        contract.FlexString(shiftA),
			ShiftB:        contract.FlexString(shiftB),
			ShiftC:        contract.FlexString(shiftC),
			Prime:         contract.FlexString(prime),
		})
	}
}

func NewTestEmployee(empID string, opts ...EmployeeOption) contract.EmployeeObject {
	e := contract.EmployeeObject{
		EmpID:          empID,
		EmpName:        "Employee " + empID,
		Department:     "Ops",
		AccountManager: "Asha",
		Client:         "Acme",
		DurationMonth:  "2024-01",
		PayrollMonth:   "2024-02",
		ShiftDetails:   contract.ShiftDetails{Counts: map[string]string{"A": "3"}},
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func amount(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// NewTestManagerTree builds the two-manager tree used across view tests:
//
//	Asha  (Acme: Ops, Support)  total 9000
//	Ravi  (Globex: Ops)          total 4000
func NewTestManagerTree() *rollup.Tree {
	leaf := func(name string, head int, total int64) *rollup.Node {
		return &rollup.Node{
			Name:      name,
			HeadCount: head,
			Total:     amount(total),
			Shifts:    rollup.ShiftTotals{rollup.ShiftA: amount(total)},
		}
	}
	acme := &rollup.Node{Name: "Acme", Children: []*rollup.Node{leaf("Ops", 2, 5000), leaf("Support", 1, 4000)}}
	globex := &rollup.Node{Name: "Globex", Children: []*rollup.Node{leaf("Ops", 1, 4000)}}
	asha := &rollup.Node{Name: "Asha", Children: []*rollup.Node{acme}}
	ravi := &rollup.Node{Name: "Ravi", Children: []*rollup.Node{globex}}
	for _, n := range []*rollup.Node{acme, globex, asha, ravi} {
		rollup.RollUp(n)
	}
	return rollup.NewTree([]*rollup.Node{asha, ravi})
}
