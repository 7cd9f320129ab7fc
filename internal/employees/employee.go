// Package employees holds the employee record, its validation rules and the
// disposable store backing the web app.
package employees

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("employee not found")

type Employee struct {
	ID            string
	Name          string `validate:"required,max=50"`
	Age           int    `validate:"required,min=18,max=70"`
	AccountNumber string `validate:"required,accountnumber"`
}

// Repository is the storage the web app reads and writes employees through.
type Repository interface {
	List(ctx context.Context) ([]Employee, error)
	Get(ctx context.Context, id string) (Employee, error)
	Create(ctx context.Context, e Employee) (Employee, error)
	Close() error
}

// SeedEmployees are inserted into an empty store.
func SeedEmployees() []Employee {
	return []Employee{
		{Name: "Mark Miller", Age: 25, AccountNumber: "123-5673567273-23"},
		{Name: "Evelin Cooper", Age: 28, AccountNumber: "123-9384613085-58"},
	}
}
