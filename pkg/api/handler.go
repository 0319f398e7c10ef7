// Package api is the inbound REST transport of the employee service.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/employee-api/pkg/employee"
	"github.com/Sternrassler/employee-api/pkg/service"
)

// BasePath is where the employee routes are mounted.
const BasePath = "/api/v1/employee"

// EmployeeService is the set of operations the handlers call.
// *service.Service satisfies it.
type EmployeeService interface {
	GetAllEmployees(ctx context.Context) ([]employee.Employee, error)
	GetEmployeesByNameSearch(ctx context.Context, term string) ([]employee.Employee, error)
	GetEmployeeByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error)
	GetHighestSalary(ctx context.Context) (int, error)
	GetTopTenEarnerNames(ctx context.Context) ([]string, error)
	CreateEmployee(ctx context.Context, input employee.CreateInput) (*employee.Employee, error)
	DeleteEmployeeByID(ctx context.Context, id uuid.UUID) (string, error)
}

var _ EmployeeService = (*service.Service)(nil)

// CreateEmployeeRequest is the body of POST /api/v1/employee.
type CreateEmployeeRequest struct {
	Name   string `json:"name"`
	Salary int    `json:"salary"`
	Age    int    `json:"age"`
	Title  string `json:"title"`
}

// Handler serves the employee routes.
type Handler struct {
	svc    EmployeeService
	logger zerolog.Logger
}

// NewHandler creates the employee route handlers.
func NewHandler(svc EmployeeService, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With().Str("component", "employee-api").Logger(),
	}
}

// Register mounts the employee routes on g. Static segments are matched
// before the :id parameter.
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.GetAllEmployees)
	g.GET("/search/:searchString", h.GetEmployeesByNameSearch)
	g.GET("/highestSalary", h.GetHighestSalary)
	g.GET("/topTenHighestEarningEmployeeNames", h.GetTopTenEarnerNames)
	g.GET("/:id", h.GetEmployeeByID)
	g.POST("", h.CreateEmployee)
	g.DELETE("/:id", h.DeleteEmployeeByID)
}

// GetAllEmployees returns every employee
// GET /api/v1/employee
func (h *Handler) GetAllEmployees(c echo.Context) error {
	employees, err := h.svc.GetAllEmployees(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, employees)
}

// GetEmployeesByNameSearch returns employees whose name contains the term
// GET /api/v1/employee/search/:searchString
func (h *Handler) GetEmployeesByNameSearch(c echo.Context) error {
	term := c.Param("searchString")
	h.logger.Debug().Str("term", term).Msg("Searching employees by name")

	employees, err := h.svc.GetEmployeesByNameSearch(c.Request().Context(), term)
	if err != nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, employees)
}

// GetEmployeeByID returns one employee
// GET /api/v1/employee/:id
func (h *Handler) GetEmployeeByID(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return h.badRequest(c, err)
	}

	e, err := h.svc.GetEmployeeByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, nil)
	}
	return c.JSON(http.StatusOK, e)
}

// GetHighestSalary returns the highest salary
// GET /api/v1/employee/highestSalary
func (h *Handler) GetHighestSalary(c echo.Context) error {
	highest, err := h.svc.GetHighestSalary(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, highest)
}

// GetTopTenEarnerNames returns the names of the ten best paid employees
// GET /api/v1/employee/topTenHighestEarningEmployeeNames
func (h *Handler) GetTopTenEarnerNames(c echo.Context) error {
	names, err := h.svc.GetTopTenEarnerNames(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, names)
}

// CreateEmployee stores a new employee
// POST /api/v1/employee
func (h *Handler) CreateEmployee(c echo.Context) error {
	var req CreateEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, errors.New("malformed request body"))
	}

	created, err := h.svc.CreateEmployee(c.Request().Context(), employee.CreateInput{
		Name:   req.Name,
		Salary: req.Salary,
		Age:    req.Age,
		Title:  req.Title,
	})
	if err != nil {
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Status:  http.StatusBadGateway,
			Error:   http.StatusText(http.StatusBadGateway),
			Message: "employee could not be created",
		})
	}
	return c.JSON(http.StatusCreated, created)
}

// DeleteEmployeeByID deletes an employee and returns its name
// DELETE /api/v1/employee/:id
func (h *Handler) DeleteEmployeeByID(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return h.badRequest(c, err)
	}

	name, err := h.svc.DeleteEmployeeByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, nil)
	}
	return c.JSON(http.StatusOK, name)
}

// parseID validates an identifier path segment.
func parseID(raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, errors.New("id cannot be empty")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid UUID format: %q", raw)
	}
	return id, nil
}
