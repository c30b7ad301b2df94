package receipt_test

import (
	"testing"

	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/Astemirdum/library-lending/lending/internal/receipt"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestRender(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		kind receipt.Kind
		data any
	}{
		{
			name: "issue",
			kind: receipt.KindIssue,
			data: receipt.Issue{TransactionID: 3, UserName: "Ann", BookTitle: "Dune",
				IssueDate: day(t, "2024-01-01"), DueDate: day(t, "2024-01-15")},
		},
		{
			name: "return_late",
			kind: receipt.KindReturn,
			data: receipt.Return{TransactionID: 3, UserName: "Ann", BookTitle: "Dune",
				DueDate: day(t, "2024-01-15"), ReturnDate: day(t, "2024-01-18"), OverdueDays: 3, Fine: 15},
		},
		{
			name: "return_on_time",
			kind: receipt.KindReturn,
			data: receipt.Return{TransactionID: 4, UserName: "Ann", BookTitle: "Emma",
				DueDate: day(t, "2024-01-15"), ReturnDate: day(t, "2024-01-10")},
		},
		{
			name: "payment",
			kind: receipt.KindPayment,
			data: receipt.Payment{PaymentID: 1, UserName: "Ann", Amount: 10, Method: "Cash", Date: day(t, "2024-01-20"),
				Settled:      []receipt.SettledFine{{BookTitle: "Dune", Amount: 10}, {BookTitle: "Emma", Amount: 15}},
				SettledTotal: 25},
		},
		{
			name: "payment_empty",
			kind: receipt.KindPayment,
			data: receipt.Payment{PaymentID: 2, UserName: "Bob", Amount: 0, Method: "Card", Date: day(t, "2024-01-21")},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := receipt.Render(tt.kind, tt.data)
			require.NoError(t, err)
			g := goldie.New(t)
			g.Assert(t, tt.name, []byte(out))
		})
	}
}

func TestRenderUnknownKind(t *testing.T) {
	t.Parallel()
	_, err := receipt.Render("refund", nil)
	require.Error(t, err)
}
