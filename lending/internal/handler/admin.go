package handler

import (
	"net/http"

	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/labstack/echo/v4"
)

func (h *Handler) AddBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	book, err := h.lendingSvc.AddBook(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) EditBook(c echo.Context) error {
	id, err := paramID(c, "bookId")
	if err != nil {
		return err
	}
	var req model.EditBookRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	book, err := h.lendingSvc.EditBook(c.Request().Context(), id, req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := paramID(c, "bookId")
	if err != nil {
		return err
	}
	if err = h.lendingSvc.DeleteBook(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SeedBooks(c echo.Context) error {
	added, err := h.lendingSvc.SeedBooks(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.ListBooks{Items: added, Total: len(added)})
}

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.lendingSvc.ListUsers(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req model.CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.lendingSvc.CreateUser(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) SetUserRole(c echo.Context) error {
	id, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	var req model.SetRoleRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	if err = h.lendingSvc.SetUserRole(c.Request().Context(), id, req.Role); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	if err = h.lendingSvc.DeleteUser(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListTransactions(c echo.Context) error {
	views, err := h.lendingSvc.ListTransactions(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) ListPayments(c echo.Context) error {
	payments, err := h.lendingSvc.ListPayments(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *Handler) MarkFinePaid(c echo.Context) error {
	id, err := paramID(c, "fineId")
	if err != nil {
		return err
	}
	if err = h.lendingSvc.MarkFinePaid(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RunScans(c echo.Context) error {
	report, err := h.scanSvc.RunScans(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}
