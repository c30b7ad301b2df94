package fine_test

import (
	"testing"

	"github.com/Astemirdum/library-lending/lending/internal/fine"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestPolicy_Assess(t *testing.T) {
	t.Parallel()
	p := fine.DefaultPolicy()
	tests := []struct {
		name        string
		due, on     string
		wantOverdue int
		wantAmount  int
	}{
		{name: "five days late", due: "2024-01-01", on: "2024-01-06", wantOverdue: 5, wantAmount: 25},
		{name: "on due date", due: "2024-01-01", on: "2024-01-01"},
		{name: "early", due: "2024-01-10", on: "2024-01-01"},
		{name: "one day late", due: "2024-02-28", on: "2024-02-29", wantOverdue: 1, wantAmount: 5},
		{name: "across year", due: "2023-12-30", on: "2024-01-02", wantOverdue: 3, wantAmount: 15},
		{name: "across dst", due: "2024-03-30", on: "2024-04-02", wantOverdue: 3, wantAmount: 15},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			overdue, amount := p.Assess(date(t, tt.due), date(t, tt.on))
			require.Equal(t, tt.wantOverdue, overdue)
			require.Equal(t, tt.wantAmount, amount)
		})
	}
}

func TestPolicy_DueDate(t *testing.T) {
	t.Parallel()
	p := fine.DefaultPolicy()
	require.Equal(t, "2024-01-15", p.DueDate(date(t, "2024-01-01")).String())
	require.Equal(t, "2024-03-06", p.DueDate(date(t, "2024-02-21")).String())

	custom := fine.Policy{LoanPeriodDays: 7, Rate: 10}
	require.Equal(t, "2024-01-08", custom.DueDate(date(t, "2024-01-01")).String())
	require.Equal(t, 30, custom.Amount(3))
}

func TestPolicy_Estimate(t *testing.T) {
	t.Parallel()
	p := fine.DefaultPolicy()
	returned := date(t, "2024-01-05")
	active := model.Transaction{DueDate: date(t, "2024-01-01")}
	closed := model.Transaction{DueDate: date(t, "2024-01-01"), ReturnDate: &returned}

	require.Equal(t, 45, p.Estimate(active, date(t, "2024-01-10")))
	require.Equal(t, 0, p.Estimate(active, date(t, "2023-12-31")))
	require.Equal(t, 0, p.Estimate(closed, date(t, "2024-01-10")))
}
