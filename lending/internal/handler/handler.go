package handler

import (
	"net/http"
	"strconv"

	"github.com/Astemirdum/library-lending/lending/internal/errs"
	"github.com/Astemirdum/library-lending/pkg/auth"
	md "github.com/Astemirdum/library-lending/pkg/middleware"
	"github.com/Astemirdum/library-lending/pkg/validate"
	_ "github.com/Astemirdum/library-lending/swagger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	lendingSvc LendingService
	scanSvc    ScanService
	gatherer   prometheus.Gatherer
	log        *zap.Logger
}

func New(lendingSvc LendingService, scanSvc ScanService, gatherer prometheus.Gatherer, log *zap.Logger) *Handler {
	return &Handler{
		lendingSvc: lendingSvc,
		scanSvc:    scanSvc,
		gatherer:   gatherer,
		log:        log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)
	if h.gatherer != nil {
		base.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
		md.AuthContext,
	)

	api.GET("/books", h.ListBooks)
	api.GET("/books/:bookId", h.GetBook)
	api.POST("/books/:bookId/borrow", h.Borrow)
	api.POST("/transactions/:txId/return", h.Return)
	api.GET("/transactions/:txId/receipt", h.Receipt)
	api.GET("/loans", h.ListLoans)
	api.GET("/fines", h.ListFines)
	api.GET("/payments/outstanding", h.OutstandingFines)
	api.POST("/payments", h.Pay)

	admin := api.Group("/admin", md.AdminOnly)
	admin.POST("/books", h.AddBook)
	admin.POST("/books/seed", h.SeedBooks)
	admin.PUT("/books/:bookId", h.EditBook)
	admin.DELETE("/books/:bookId", h.DeleteBook)
	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.CreateUser)
	admin.PATCH("/users/:userId/role", h.SetUserRole)
	admin.DELETE("/users/:userId", h.DeleteUser)
	admin.GET("/transactions", h.ListTransactions)
	admin.GET("/payments", h.ListPayments)
	admin.POST("/fines/:fineId/pay", h.MarkFinePaid)
	admin.POST("/scans", h.RunScans)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps the errs kinds onto status codes.
func (h *Handler) httpError(err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, errs.Message(err))
	case errors.Is(err, errs.ErrUnavailable), errors.Is(err, errs.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, errs.Message(err))
	case errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, errs.Message(err))
	case errors.Is(err, auth.ErrNoIdentity):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		h.log.Error("internal", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
