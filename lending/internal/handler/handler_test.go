package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Astemirdum/library-lending/lending/internal/errs"
	"github.com/Astemirdum/library-lending/lending/internal/handler"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/Astemirdum/library-lending/pkg/auth"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	service_mocks "github.com/Astemirdum/library-lending/lending/internal/handler/mocks"
)

func mustDate(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

type request struct {
	method string
	target string
	body   string
	userID string
	role   string
}

type response struct {
	expectedCode int
	expectedBody string
}

type mockBehavior func(svc *service_mocks.MockLendingService, scans *service_mocks.MockScanService)

type testCase struct {
	name         string
	mockBehavior mockBehavior
	request      request
	response     response
}

func run(t *testing.T, tests []testCase) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLendingService(c)
			scans := service_mocks.NewMockScanService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, scans, prometheus.NewRegistry(), log)
			e := h.NewRouter()

			body := http.NoBody
			r := httptest.NewRequest(tt.request.method, tt.request.target, body)
			if tt.request.body != "" {
				r = httptest.NewRequest(tt.request.method, tt.request.target, strings.NewReader(tt.request.body))
			}
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if tt.request.userID != "" {
				r.Header.Set(auth.XUserIDHeader, tt.request.userID)
			}
			if tt.request.role != "" {
				r.Header.Set(auth.XUserRoleHeader, tt.request.role)
			}
			w := httptest.NewRecorder()

			tt.mockBehavior(svc, scans)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func noCalls(*service_mocks.MockLendingService, *service_mocks.MockScanService) {}

func TestHandler_Books(t *testing.T) {
	t.Parallel()
	dune := model.Book{ID: 3, Title: "Dune", Author: "Frank Herbert", Category: "Sci-Fi", Quantity: 2, Available: 1}
	run(t, []testCase{
		{
			name: "list with query",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().ListBooks(gomock.Any(), "dune").
					Return(model.ListBooks{Items: []model.Book{dune}, Total: 1}, nil)
			},
			request: request{method: http.MethodGet, target: "/api/v1/books?q=dune", userID: "7"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"items":[{"id":3,"title":"Dune","author":"Frank Herbert","isbn":"","category":"Sci-Fi","quantity":2,"available":1}],"totalElements":1}`,
			},
		},
		{
			name: "get not found",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().GetBook(gomock.Any(), int64(9)).Return(model.Book{}, errs.ErrBookNotFound)
			},
			request:  request{method: http.MethodGet, target: "/api/v1/books/9", userID: "7"},
			response: response{expectedCode: http.StatusNotFound, expectedBody: `{"message":"book not found"}`},
		},
		{
			name:         "get bad id",
			mockBehavior: noCalls,
			request:      request{method: http.MethodGet, target: "/api/v1/books/abc", userID: "7"},
			response:     response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"invalid bookId"}`},
		},
		{
			name:         "no identity",
			mockBehavior: noCalls,
			request:      request{method: http.MethodGet, target: "/api/v1/books"},
			response:     response{expectedCode: http.StatusUnauthorized, expectedBody: `{"message":"user-id is empty"}`},
		},
	})
}

func TestHandler_Borrow(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name: "ok",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().Borrow(gomock.Any(), int64(7), int64(3)).Return(model.Transaction{
					ID: 1, UserID: 7, BookID: 3, IssueDate: mustDate("2024-01-01"), DueDate: mustDate("2024-01-15"),
				}, nil)
			},
			request: request{method: http.MethodPost, target: "/api/v1/books/3/borrow", userID: "7"},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":1,"userId":7,"bookId":3,"issueDate":"2024-01-01","dueDate":"2024-01-15","returnDate":null}`,
			},
		},
		{
			name: "unavailable",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().Borrow(gomock.Any(), int64(7), int64(3)).
					Return(model.Transaction{}, errors.Wrap(errs.Newf(errs.ErrUnavailable, "book %d: no copies available", 3), "borrow"))
			},
			request:  request{method: http.MethodPost, target: "/api/v1/books/3/borrow", userID: "7"},
			response: response{expectedCode: http.StatusConflict, expectedBody: `{"message":"book 3: no copies available"}`},
		},
		{
			name: "internal",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().Borrow(gomock.Any(), int64(7), int64(3)).Return(model.Transaction{}, errors.New("db internal"))
			},
			request:  request{method: http.MethodPost, target: "/api/v1/books/3/borrow", userID: "7"},
			response: response{expectedCode: http.StatusInternalServerError, expectedBody: `{"message":"db internal"}`},
		},
	})
}

func TestHandler_Return(t *testing.T) {
	t.Parallel()
	returned := mustDate("2024-01-18")
	tr := model.Transaction{ID: 1, UserID: 7, BookID: 3, IssueDate: mustDate("2024-01-01"), DueDate: mustDate("2024-01-15"), ReturnDate: &returned}
	run(t, []testCase{
		{
			name: "late",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().Return(gomock.Any(), int64(1)).Return(model.ReturnResult{
					Status: model.ReturnStatusLate, FineAmount: 15, OverdueDays: 3, Transaction: tr,
				}, nil)
			},
			request: request{method: http.MethodPost, target: "/api/v1/transactions/1/return", userID: "7"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"status":"RETURNED_LATE","fineAmount":15,"overdueDays":3,"transaction":{"id":1,"userId":7,"bookId":3,"issueDate":"2024-01-01","dueDate":"2024-01-15","returnDate":"2024-01-18"}}`,
			},
		},
		{
			name: "not found",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().Return(gomock.Any(), int64(2)).Return(model.ReturnResult{}, errors.Wrap(errs.ErrTransactionNotFound, "return"))
			},
			request:  request{method: http.MethodPost, target: "/api/v1/transactions/2/return", userID: "7"},
			response: response{expectedCode: http.StatusNotFound, expectedBody: `{"message":"transaction not found"}`},
		},
		{
			name: "receipt of another member",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().Receipt(gomock.Any(), int64(1)).Return(tr, "LIBRARY RETURN RECEIPT", nil)
			},
			request:  request{method: http.MethodGet, target: "/api/v1/transactions/1/receipt", userID: "8"},
			response: response{expectedCode: http.StatusNotFound, expectedBody: `{"message":"transaction not found"}`},
		},
		{
			name: "receipt",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().Receipt(gomock.Any(), int64(1)).Return(tr, "LIBRARY RETURN RECEIPT", nil)
			},
			request:  request{method: http.MethodGet, target: "/api/v1/transactions/1/receipt", userID: "7"},
			response: response{expectedCode: http.StatusOK, expectedBody: `LIBRARY RETURN RECEIPT`},
		},
	})
}

func TestHandler_Fines(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name: "member sees own",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().ListFines(gomock.Any(), int64(7)).Return([]model.FineView{}, nil)
			},
			request:  request{method: http.MethodGet, target: "/api/v1/fines", userID: "7"},
			response: response{expectedCode: http.StatusOK, expectedBody: `[]`},
		},
		{
			name: "admin sees all",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().ListFines(gomock.Any(), int64(0)).Return([]model.FineView{{
					Fine:   model.Fine{ID: 1, TransactionID: 4, Amount: 25, Status: model.FineUnpaid},
					UserID: 7, UserName: "Ann", BookTitle: "Dune",
				}}, nil)
			},
			request: request{method: http.MethodGet, target: "/api/v1/fines", userID: "1", role: auth.RoleAdmin},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[{"id":1,"transactionId":4,"amount":25,"status":"Unpaid","userId":7,"userName":"Ann","bookTitle":"Dune"}]`,
			},
		},
		{
			name: "pay",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().Pay(gomock.Any(), int64(7), model.PayRequest{Amount: 10, Method: "Cash"}).Return(model.PaymentResult{
					Payment:      model.Payment{ID: 1, UserID: 7, Amount: 10, Method: "Cash", Date: mustDate("2024-01-20")},
					Settled:      []model.FineView{},
					SettledTotal: 0,
				}, nil)
			},
			request: request{method: http.MethodPost, target: "/api/v1/payments", userID: "7", body: `{"amount":10,"method":"Cash"}`},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"payment":{"id":1,"userId":7,"amount":10,"method":"Cash","date":"2024-01-20"},"settled":[],"settledTotal":0}`,
			},
		},
		{
			name:         "pay amount not an integer",
			mockBehavior: noCalls,
			request:      request{method: http.MethodPost, target: "/api/v1/payments", userID: "7", body: `{"amount":"ten","method":"Cash"}`},
			response:     response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"invalid request body"}`},
		},
		{
			name: "outstanding",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().OutstandingFines(gomock.Any(), int64(7)).Return(model.OutstandingFines{Fines: []model.FineView{}, Total: 0}, nil)
			},
			request:  request{method: http.MethodGet, target: "/api/v1/payments/outstanding", userID: "7"},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"fines":[],"total":0}`},
		},
	})
}

func TestHandler_Admin(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name:         "member forbidden",
			mockBehavior: noCalls,
			request:      request{method: http.MethodDelete, target: "/api/v1/admin/users/7", userID: "7"},
			response:     response{expectedCode: http.StatusForbidden, expectedBody: `{"message":"admin access required"}`},
		},
		{
			name: "delete user with unpaid fines",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().DeleteUser(gomock.Any(), int64(7)).Return(errors.Wrap(errs.ErrUnpaidFines, "delete user"))
			},
			request:  request{method: http.MethodDelete, target: "/api/v1/admin/users/7", userID: "1", role: auth.RoleAdmin},
			response: response{expectedCode: http.StatusConflict, expectedBody: `{"message":"unpaid fines exist"}`},
		},
		{
			name: "delete book",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().DeleteBook(gomock.Any(), int64(3)).Return(nil)
			},
			request:  request{method: http.MethodDelete, target: "/api/v1/admin/books/3", userID: "1", role: auth.RoleAdmin},
			response: response{expectedCode: http.StatusNoContent, expectedBody: ``},
		},
		{
			name: "edit book negative quantity",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().EditBook(gomock.Any(), int64(3), gomock.Any()).
					Return(model.Book{}, errors.Wrap(errs.Validation("quantity must not be negative"), "edit book"))
			},
			request:  request{method: http.MethodPut, target: "/api/v1/admin/books/3", userID: "1", role: auth.RoleAdmin, body: `{"title":"Dune"}`},
			response: response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"quantity must not be negative"}`},
		},
		{
			name: "mark fine paid",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().MarkFinePaid(gomock.Any(), int64(5)).Return(nil)
			},
			request:  request{method: http.MethodPost, target: "/api/v1/admin/fines/5/pay", userID: "1", role: auth.RoleAdmin},
			response: response{expectedCode: http.StatusNoContent, expectedBody: ``},
		},
		{
			name: "run scans",
			mockBehavior: func(_ *service_mocks.MockLendingService, scans *service_mocks.MockScanService) {
				scans.EXPECT().RunScans(gomock.Any()).Return(model.ScanReport{DueLoans: 3, DueReminders: 2, LowStockBooks: 1, LowStockAlerts: 1}, nil)
			},
			request: request{method: http.MethodPost, target: "/api/v1/admin/scans", userID: "1", role: auth.RoleAdmin},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"dueLoans":3,"dueReminders":2,"lowStockBooks":1,"lowStockAlerts":1}`,
			},
		},
		{
			name: "set role",
			mockBehavior: func(svc *service_mocks.MockLendingService, _ *service_mocks.MockScanService) {
				svc.EXPECT().SetUserRole(gomock.Any(), int64(7), model.RoleAdmin).Return(nil)
			},
			request:  request{method: http.MethodPatch, target: "/api/v1/admin/users/7/role", userID: "1", role: auth.RoleAdmin, body: `{"role":"admin"}`},
			response: response{expectedCode: http.StatusNoContent, expectedBody: ``},
		},
	})
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name:         "health",
			mockBehavior: noCalls,
			request:      request{method: http.MethodGet, target: "/manage/health"},
			response:     response{expectedCode: http.StatusOK, expectedBody: `OK`},
		},
	})
}
