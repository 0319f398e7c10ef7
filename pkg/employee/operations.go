package employee

import (
	"cmp"
	"slices"
	"strings"
)

// TopEarnersLimit is the number of names returned by the top earners query.
const TopEarnersLimit = 10

// FilterByNameContains returns the records whose name contains needle,
// ignoring case. An empty needle matches every record. The result is never
// nil, so "no match" is an empty list rather than an absent one.
func FilterByNameContains(list []Employee, needle string) []Employee {
	needle = strings.ToLower(needle)

	out := make([]Employee, 0, len(list))
	for _, e := range list {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// MaxSalary returns the highest salary in list.
// The second return value is false when no record carries a salary.
func MaxSalary(list []Employee) (int, bool) {
	var (
		highest int
		found   bool
	)
	for _, e := range list {
		if e.Salary == nil {
			continue
		}
		if !found || *e.Salary > highest {
			highest = *e.Salary
			found = true
		}
	}
	return highest, found
}

// TopEarnerNames returns up to n names ordered by salary, highest first.
// Records without a salary rank below every record that has one.
func TopEarnerNames(list []Employee, n int) []string {
	if n <= 0 {
		return []string{}
	}

	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b Employee) int {
		switch {
		case a.Salary == nil && b.Salary == nil:
			return 0
		case a.Salary == nil:
			return 1
		case b.Salary == nil:
			return -1
		}
		return cmp.Compare(*b.Salary, *a.Salary)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	names := make([]string, 0, len(sorted))
	for _, e := range sorted {
		names = append(names, e.Name)
	}
	return names
}
