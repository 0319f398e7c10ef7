package client

import (
	"github.com/google/uuid"

	"github.com/Sternrassler/employee-api/pkg/employee"
)

// envelope is the wrapper the upstream server puts around every payload.
type envelope[T any] struct {
	Data   T      `json:"data"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

// entity is the upstream representation of an employee record.
type entity struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"employee_name"`
	Salary *int      `json:"employee_salary"`
	Age    *int      `json:"employee_age"`
	Title  *string   `json:"employee_title"`
	Email  *string   `json:"employee_email"`
}

// createPayload is the body of a create call.
type createPayload struct {
	Name   string `json:"name"`
	Salary int    `json:"salary"`
	Age    int    `json:"age"`
	Title  string `json:"title"`
}

// deletePayload is the body of a delete call; the upstream delete is keyed
// by name.
type deletePayload struct {
	Name string `json:"name"`
}

// toEmployee maps an upstream entity onto the domain record. Unset fields
// stay unset.
func (e *entity) toEmployee() *employee.Employee {
	if e == nil {
		return nil
	}
	return &employee.Employee{
		ID:     e.ID,
		Name:   e.Name,
		Salary: e.Salary,
		Age:    e.Age,
		Title:  e.Title,
		Email:  e.Email,
	}
}

func newCreatePayload(input employee.CreateInput) createPayload {
	return createPayload{
		Name:   input.Name,
		Salary: input.Salary,
		Age:    input.Age,
		Title:  input.Title,
	}
}
