package cache

import (
	"github.com/google/uuid"
)

// EmployeesNamespace is the namespace of every employee cache key.
const EmployeesNamespace = "employees"

// CacheKey identifies a cached payload: either a whole collection (ID empty)
// or one record of it.
type CacheKey struct {
	// Namespace groups related keys (e.g., "employees")
	Namespace string

	// ID identifies one record; empty for the whole collection
	ID string
}

// AllEmployeesKey is the key of the full employee list.
func AllEmployeesKey() CacheKey {
	return CacheKey{Namespace: EmployeesNamespace}
}

// EmployeeKey is the key of a single employee.
func EmployeeKey(id uuid.UUID) CacheKey {
	return CacheKey{Namespace: EmployeesNamespace, ID: id.String()}
}

// String generates a deterministic cache key string.
// Format: namespace:all or namespace:id:<id>
//
// Example:
//
//	employees:id:4b6f3a0c-1c1e-4a53-9d36-3f0e2b9f6a10
func (k CacheKey) String() string {
	if k.ID == "" {
		return k.Namespace + ":all"
	}
	return k.Namespace + ":id:" + k.ID
}

// Label returns the low-cardinality metric label of the key ("all" or "id").
func (k CacheKey) Label() string {
	if k.ID == "" {
		return "all"
	}
	return "id"
}
