// Package receipt renders the plain-text receipts attached to issue, return
// and payment notifications.
package receipt

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Astemirdum/library-lending/lending/internal/model"
)

type Kind string

const (
	KindIssue   Kind = "issue"
	KindReturn  Kind = "return"
	KindPayment Kind = "payment"
)

type Issue struct {
	TransactionID int64
	UserName      string
	BookTitle     string
	IssueDate     model.Date
	DueDate       model.Date
}

type Return struct {
	TransactionID int64
	UserName      string
	BookTitle     string
	DueDate       model.Date
	ReturnDate    model.Date
	OverdueDays   int
	Fine          int
}

type SettledFine struct {
	BookTitle string
	Amount    int
}

type Payment struct {
	PaymentID    int64
	UserName     string
	Amount       int
	Method       string
	Date         model.Date
	Settled      []SettledFine
	SettledTotal int
}

const issueTmpl = `LIBRARY ISSUE RECEIPT
Receipt:   T-{{.TransactionID}}
Member:    {{.UserName}}
Book:      {{.BookTitle}}
Issued:    {{.IssueDate}}
Due:       {{.DueDate}}
Please return the book by the due date to avoid fines.
`

const returnTmpl = `LIBRARY RETURN RECEIPT
Receipt:   T-{{.TransactionID}}
Member:    {{.UserName}}
Book:      {{.BookTitle}}
Due:       {{.DueDate}}
Returned:  {{.ReturnDate}}
{{- if gt .Fine 0}}
Overdue:   {{.OverdueDays}} day(s)
Fine:      {{.Fine}}
{{- else}}
Returned on time, no fine.
{{- end}}
`

const paymentTmpl = `LIBRARY PAYMENT RECEIPT
Receipt:   P-{{.PaymentID}}
Member:    {{.UserName}}
Date:      {{.Date}}
Method:    {{.Method}}
Amount:    {{.Amount}}
{{- if .Settled}}
Settled fines:
{{- range .Settled}}
  - {{.BookTitle}}: {{.Amount}}
{{- end}}
Settled total: {{.SettledTotal}}
{{- else}}
No outstanding fines were settled.
{{- end}}
`

var templates = map[Kind]*template.Template{
	KindIssue:   template.Must(template.New("issue").Parse(issueTmpl)),
	KindReturn:  template.Must(template.New("return").Parse(returnTmpl)),
	KindPayment: template.Must(template.New("payment").Parse(paymentTmpl)),
}

// Render renders the receipt of kind, data must be the matching struct.
func Render(kind Kind, data any) (string, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown receipt kind %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s receipt: %w", kind, err)
	}
	return buf.String(), nil
}
