package model

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type User struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Role  Role   `json:"role" db:"role"`
}

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"omitempty,oneof=admin member"`
}

type SetRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=admin member"`
}

type Book struct {
	ID        int64  `json:"id" db:"id"`
	Title     string `json:"title" db:"title"`
	Author    string `json:"author" db:"author"`
	ISBN      string `json:"isbn" db:"isbn"`
	Category  string `json:"category" db:"category"`
	Quantity  int    `json:"quantity" db:"quantity"`
	Available int    `json:"available" db:"available"`
}

const DefaultCategory = "General"

type CreateBookRequest struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	ISBN     string `json:"isbn"`
	Category string `json:"category"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// EditBookRequest replaces the fields that are set.
type EditBookRequest struct {
	Title    *string `json:"title"`
	Author   *string `json:"author"`
	ISBN     *string `json:"isbn"`
	Category *string `json:"category"`
	Quantity *int    `json:"quantity" validate:"omitempty,gte=0"`
}

type ListBooks struct {
	Items []Book `json:"items"`
	Total int    `json:"totalElements"`
}

type Transaction struct {
	ID         int64 `json:"id" db:"id"`
	UserID     int64 `json:"userId" db:"user_id"`
	BookID     int64 `json:"bookId" db:"book_id"`
	IssueDate  Date  `json:"issueDate" db:"issue_date"`
	DueDate    Date  `json:"dueDate" db:"due_date"`
	ReturnDate *Date `json:"returnDate" db:"return_date"`
}

func (t Transaction) IsActive() bool {
	return t.ReturnDate == nil
}

type TransactionView struct {
	Transaction `json:",inline"`
	UserName    string `json:"userName" db:"user_name"`
	BookTitle   string `json:"bookTitle" db:"book_title"`
}

// Loan is a transaction of the current user with its running fine estimate.
type Loan struct {
	TransactionView `json:",inline"`
	DaysBorrowed    int `json:"daysBorrowed"`
	OverdueDays     int `json:"overdueDays"`
	EstimatedFine   int `json:"estimatedFine"`
}

type ReturnStatus string

const (
	ReturnStatusOnTime          ReturnStatus = "RETURNED"
	ReturnStatusLate            ReturnStatus = "RETURNED_LATE"
	ReturnStatusAlreadyReturned ReturnStatus = "ALREADY_RETURNED"
)

type ReturnResult struct {
	Status      ReturnStatus `json:"status"`
	FineAmount  int          `json:"fineAmount"`
	OverdueDays int          `json:"overdueDays"`
	Transaction Transaction  `json:"transaction"`
}

type FineStatus string

const (
	FineUnpaid FineStatus = "Unpaid"
	FinePaid   FineStatus = "Paid"
)

type Fine struct {
	ID            int64      `json:"id" db:"id"`
	TransactionID int64      `json:"transactionId" db:"transaction_id"`
	Amount        int        `json:"amount" db:"amount"`
	Status        FineStatus `json:"status" db:"status"`
}

type FineView struct {
	Fine      `json:",inline"`
	UserID    int64  `json:"userId" db:"user_id"`
	UserName  string `json:"userName" db:"user_name"`
	BookTitle string `json:"bookTitle" db:"book_title"`
}

type OutstandingFines struct {
	Fines []FineView `json:"fines"`
	Total int        `json:"total"`
}

type Payment struct {
	ID     int64  `json:"id" db:"id"`
	UserID int64  `json:"userId" db:"user_id"`
	Amount int    `json:"amount" db:"amount"`
	Method string `json:"method" db:"method"`
	Date   Date   `json:"date" db:"date"`
}

type PaymentView struct {
	Payment  `json:",inline"`
	UserName string `json:"userName" db:"user_name"`
}

type PayRequest struct {
	Amount int    `json:"amount"`
	Method string `json:"method"`
}

type PaymentResult struct {
	Payment      Payment    `json:"payment"`
	Settled      []FineView `json:"settled"`
	SettledTotal int        `json:"settledTotal"`
}

// DueLoan is an active loan selected by the due-soon scan.
type DueLoan struct {
	TransactionID int64  `db:"transaction_id"`
	UserID        int64  `db:"user_id"`
	UserName      string `db:"user_name"`
	UserEmail     string `db:"user_email"`
	BookTitle     string `db:"book_title"`
	DueDate       Date   `db:"due_date"`
}

type ScanReport struct {
	DueLoans       int `json:"dueLoans"`
	DueReminders   int `json:"dueReminders"`
	LowStockBooks  int `json:"lowStockBooks"`
	LowStockAlerts int `json:"lowStockAlerts"`
}
