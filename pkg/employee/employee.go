// Package employee holds the employee record and the pure list computations
// applied to records fetched from the upstream employee server.
package employee

import (
	"github.com/google/uuid"
)

// Employee is a single employee record.
//
// Only ID and Name are guaranteed; the remaining fields are nil when the
// upstream server did not populate them.
type Employee struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Salary *int      `json:"salary"`
	Age    *int      `json:"age"`
	Title  *string   `json:"title"`
	Email  *string   `json:"email"`
}

// CreateInput carries the caller-provided fields of a new employee.
// The upstream server assigns the identifier and email.
type CreateInput struct {
	Name   string `json:"name"`
	Salary int    `json:"salary"`
	Age    int    `json:"age"`
	Title  string `json:"title"`
}

// SalaryOrZero returns the salary, or 0 when it is unset.
func (e Employee) SalaryOrZero() int {
	if e.Salary == nil {
		return 0
	}
	return *e.Salary
}

// Clone returns a deep copy of the record.
func (e Employee) Clone() Employee {
	out := e
	out.Salary = clonePtr(e.Salary)
	out.Age = clonePtr(e.Age)
	out.Title = clonePtr(e.Title)
	out.Email = clonePtr(e.Email)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
