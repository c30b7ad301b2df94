// Package fine computes overdue fines. It holds no state.
package fine

import "github.com/Astemirdum/library-lending/lending/internal/model"

const (
	DefaultLoanPeriodDays = 14
	DefaultRate           = 5
)

// Policy is the loan period and the per day fine rate, in currency units.
type Policy struct {
	LoanPeriodDays int
	Rate           int
}

func DefaultPolicy() Policy {
	return Policy{LoanPeriodDays: DefaultLoanPeriodDays, Rate: DefaultRate}
}

// DueDate is the due date of a loan issued on issued.
func (p Policy) DueDate(issued model.Date) model.Date {
	return issued.AddDays(p.LoanPeriodDays)
}

// OverdueDays is the number of whole days on is past due, floored at 0.
func OverdueDays(due, on model.Date) int {
	if d := on.DaysSince(due); d > 0 {
		return d
	}
	return 0
}

func (p Policy) Amount(overdueDays int) int {
	if overdueDays <= 0 {
		return 0
	}
	return overdueDays * p.Rate
}

// Assess returns the overdue days and the fine for a loan due on due and
// returned, or still held, on on.
func (p Policy) Assess(due, on model.Date) (overdueDays, amount int) {
	overdueDays = OverdueDays(due, on)
	return overdueDays, p.Amount(overdueDays)
}

// Estimate is the fine an active loan would incur if returned today.
func (p Policy) Estimate(t model.Transaction, today model.Date) int {
	if !t.IsActive() {
		return 0
	}
	_, amount := p.Assess(t.DueDate, today)
	return amount
}
