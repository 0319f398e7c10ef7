// Package service exposes the seven employee operations served by the API.
// Every failure, whether a missing record or an upstream problem, is
// reported as ErrNoResult; the cause stays wrapped for logging.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/employee-api/pkg/client"
	"github.com/Sternrassler/employee-api/pkg/employee"
)

// ErrNoResult is returned when an operation has nothing to give back.
var ErrNoResult = errors.New("no result")

// Cache is the read-through cache the service reads and writes through.
// *cache.EmployeeCache satisfies it.
type Cache interface {
	GetAll(ctx context.Context) ([]employee.Employee, error)
	GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error)
	CreateAndInvalidate(ctx context.Context, input employee.CreateInput) (*employee.Employee, error)
	RemoveAndInvalidate(ctx context.Context, id uuid.UUID) (string, error)
}

// Service implements the employee operations.
type Service struct {
	cache  Cache
	logger zerolog.Logger
}

// New creates a service reading through cache.
func New(cache Cache, logger zerolog.Logger) *Service {
	if cache == nil {
		panic("cache cannot be nil")
	}
	return &Service{
		cache:  cache,
		logger: logger.With().Str("component", "employee-service").Logger(),
	}
}

// GetAllEmployees returns every employee.
func (s *Service) GetAllEmployees(ctx context.Context) ([]employee.Employee, error) {
	employees, err := s.cache.GetAll(ctx)
	if err != nil {
		return nil, s.noResult("get_all", uuid.Nil, err)
	}
	return employees, nil
}

// GetEmployeesByNameSearch returns the employees whose name contains term,
// ignoring case. No match is an empty list, not an error.
func (s *Service) GetEmployeesByNameSearch(ctx context.Context, term string) ([]employee.Employee, error) {
	employees, err := s.cache.GetAll(ctx)
	if err != nil {
		return nil, s.noResult("search", uuid.Nil, err)
	}
	return employee.FilterByNameContains(employees, term), nil
}

// GetEmployeeByID returns a single employee.
func (s *Service) GetEmployeeByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	e, err := s.cache.GetByID(ctx, id)
	if err != nil {
		return nil, s.noResult("get_by_id", id, err)
	}
	return e, nil
}

// GetHighestSalary returns the highest salary of all employees.
func (s *Service) GetHighestSalary(ctx context.Context) (int, error) {
	employees, err := s.cache.GetAll(ctx)
	if err != nil {
		return 0, s.noResult("highest_salary", uuid.Nil, err)
	}

	highest, ok := employee.MaxSalary(employees)
	if !ok {
		s.logger.Debug().Int("employees", len(employees)).Msg("No salary to report")
		return 0, fmt.Errorf("highest_salary: %w", ErrNoResult)
	}
	return highest, nil
}

// GetTopTenEarnerNames returns the names of the ten best paid employees,
// best paid first.
func (s *Service) GetTopTenEarnerNames(ctx context.Context) ([]string, error) {
	employees, err := s.cache.GetAll(ctx)
	if err != nil {
		return nil, s.noResult("top_earners", uuid.Nil, err)
	}
	return employee.TopEarnerNames(employees, employee.TopEarnersLimit), nil
}

// CreateEmployee stores a new employee and returns it as assigned upstream.
func (s *Service) CreateEmployee(ctx context.Context, input employee.CreateInput) (*employee.Employee, error) {
	created, err := s.cache.CreateAndInvalidate(ctx, input)
	if err != nil {
		return nil, s.noResult("create", uuid.Nil, err)
	}

	s.logger.Info().Str("id", created.ID.String()).Str("name", created.Name).Msg("Employee created")
	return created, nil
}

// DeleteEmployeeByID deletes an employee and returns its name. A missing
// record is reported without any delete reaching upstream.
func (s *Service) DeleteEmployeeByID(ctx context.Context, id uuid.UUID) (string, error) {
	name, err := s.cache.RemoveAndInvalidate(ctx, id)
	if err != nil {
		return "", s.noResult("delete", id, err)
	}

	s.logger.Info().Str("id", id.String()).Str("name", name).Msg("Employee deleted")
	return name, nil
}

// noResult collapses err into ErrNoResult, keeping the cause in the chain.
func (s *Service) noResult(op string, id uuid.UUID, err error) error {
	event := s.logger.Warn()
	if errors.Is(err, client.ErrNotFound) || errors.Is(err, client.ErrNotDeleted) {
		event = s.logger.Info()
	}

	event = event.Err(err).Str("op", op)
	if id != uuid.Nil {
		event = event.Str("id", id.String())
	}
	if class := client.ClassOf(err); class != "" {
		event = event.Str("error_class", string(class))
	}
	event.Msg("Operation returned no result")

	return fmt.Errorf("%s: %w: %w", op, ErrNoResult, err)
}
