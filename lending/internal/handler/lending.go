package handler

import (
	"net/http"

	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/Astemirdum/library-lending/pkg/auth"
	"github.com/labstack/echo/v4"
)

func (h *Handler) ListBooks(c echo.Context) error {
	books, err := h.lendingSvc.ListBooks(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := paramID(c, "bookId")
	if err != nil {
		return err
	}
	book, err := h.lendingSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) Borrow(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := paramID(c, "bookId")
	if err != nil {
		return err
	}
	userID, err := auth.GetUserID(ctx)
	if err != nil {
		return h.httpError(err)
	}
	tr, err := h.lendingSvc.Borrow(ctx, userID, bookID)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, tr)
}

func (h *Handler) Return(c echo.Context) error {
	txID, err := paramID(c, "txId")
	if err != nil {
		return err
	}
	res, err := h.lendingSvc.Return(c.Request().Context(), txID)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// Receipt serves the plain-text receipt, members only see their own.
func (h *Handler) Receipt(c echo.Context) error {
	ctx := c.Request().Context()
	txID, err := paramID(c, "txId")
	if err != nil {
		return err
	}
	id, err := auth.FromContext(ctx)
	if err != nil {
		return h.httpError(err)
	}
	tr, body, err := h.lendingSvc.Receipt(ctx, txID)
	if err != nil {
		return h.httpError(err)
	}
	if tr.UserID != id.UserID && id.Role != auth.RoleAdmin {
		return echo.NewHTTPError(http.StatusNotFound, "transaction not found")
	}
	return c.String(http.StatusOK, body)
}

func (h *Handler) ListLoans(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserID(ctx)
	if err != nil {
		return h.httpError(err)
	}
	loans, err := h.lendingSvc.ListUserLoans(ctx, userID)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

// ListFines lists every fine for an admin and the caller's own otherwise.
func (h *Handler) ListFines(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := auth.FromContext(ctx)
	if err != nil {
		return h.httpError(err)
	}
	userID := id.UserID
	if id.Role == auth.RoleAdmin {
		userID = 0
	}
	fines, err := h.lendingSvc.ListFines(ctx, userID)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, fines)
}

func (h *Handler) OutstandingFines(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserID(ctx)
	if err != nil {
		return h.httpError(err)
	}
	out, err := h.lendingSvc.OutstandingFines(ctx, userID)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Pay(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserID(ctx)
	if err != nil {
		return h.httpError(err)
	}
	var req model.PayRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	res, err := h.lendingSvc.Pay(ctx, userID, req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, res)
}
