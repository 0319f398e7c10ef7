package employee

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func intPtr(v int) *int { return &v }

func newEmployee(name string, salary int) Employee {
	return Employee{ID: uuid.New(), Name: name, Salary: intPtr(salary)}
}

func TestFilterByNameContains(t *testing.T) {
	list := []Employee{
		newEmployee("John Doe", 75000),
		newEmployee("Johnny Smith", 80000),
		newEmployee("Jane Smith", 85000),
	}

	tests := []struct {
		name   string
		needle string
		want   []string
	}{
		{name: "case insensitive", needle: "JOHN", want: []string{"John Doe", "Johnny Smith"}},
		{name: "suffix match", needle: "smith", want: []string{"Johnny Smith", "Jane Smith"}},
		{name: "empty needle matches all", needle: "", want: []string{"John Doe", "Johnny Smith", "Jane Smith"}},
		{name: "no match", needle: "zed", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByNameContains(list, tt.needle)
			if got == nil {
				t.Fatal("FilterByNameContains() returned nil, want empty slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i, e := range got {
				if e.Name != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, e.Name, tt.want[i])
				}
			}
		})
	}
}

// Every included record contains the term and no excluded record does.
func TestFilterByNameContains_Partition(t *testing.T) {
	names := []string{"Ada", "adam", "Grace", "MADAME", "bob", ""}
	list := make([]Employee, 0, len(names))
	for i, n := range names {
		list = append(list, newEmployee(n, i))
	}

	for _, term := range []string{"ad", "A", "race", "x", ""} {
		got := FilterByNameContains(list, term)
		included := make(map[uuid.UUID]bool, len(got))
		for _, e := range got {
			included[e.ID] = true
			if !strings.Contains(strings.ToLower(e.Name), strings.ToLower(term)) {
				t.Errorf("term %q: included %q", term, e.Name)
			}
		}
		for _, e := range list {
			if !included[e.ID] && strings.Contains(strings.ToLower(e.Name), strings.ToLower(term)) {
				t.Errorf("term %q: excluded %q", term, e.Name)
			}
		}
	}
}

func TestFilterByNameContains_ReturnsCopies(t *testing.T) {
	list := []Employee{newEmployee("John", 100)}

	got := FilterByNameContains(list, "john")
	*got[0].Salary = 1

	if *list[0].Salary != 100 {
		t.Errorf("source salary mutated to %d", *list[0].Salary)
	}
}

func TestMaxSalary(t *testing.T) {
	tests := []struct {
		name      string
		list      []Employee
		want      int
		wantFound bool
	}{
		{
			name: "three records",
			list: []Employee{
				newEmployee("A", 75000),
				newEmployee("B", 85000),
				newEmployee("C", 65000),
			},
			want:      85000,
			wantFound: true,
		},
		{
			name:      "empty list",
			list:      nil,
			wantFound: false,
		},
		{
			name: "ties",
			list: []Employee{
				newEmployee("A", 500),
				newEmployee("B", 500),
			},
			want:      500,
			wantFound: true,
		},
		{
			name: "unset salaries are skipped",
			list: []Employee{
				{ID: uuid.New(), Name: "A"},
				newEmployee("B", 10),
			},
			want:      10,
			wantFound: true,
		},
		{
			name:      "no salaries at all",
			list:      []Employee{{ID: uuid.New(), Name: "A"}},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := MaxSalary(tt.list)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if found && got != tt.want {
				t.Errorf("MaxSalary() = %d, want %d", got, tt.want)
			}
		})
	}
}

// The maximum bounds every salary and belongs to at least one record.
func TestMaxSalary_Bounds(t *testing.T) {
	list := make([]Employee, 0, 50)
	for i := 0; i < 50; i++ {
		list = append(list, newEmployee(fmt.Sprintf("E%d", i), (i*7919)%1000))
	}

	got, found := MaxSalary(list)
	if !found {
		t.Fatal("MaxSalary() found = false on non-empty list")
	}

	matched := false
	for _, e := range list {
		if *e.Salary > got {
			t.Errorf("salary %d exceeds max %d", *e.Salary, got)
		}
		if *e.Salary == got {
			matched = true
		}
	}
	if !matched {
		t.Errorf("max %d does not belong to any record", got)
	}
}

func TestTopEarnerNames(t *testing.T) {
	list := []Employee{
		newEmployee("John Doe", 75000),
		newEmployee("Jane Smith", 85000),
		newEmployee("Bob Johnson", 65000),
	}

	got := TopEarnerNames(list, TopEarnersLimit)
	want := []string{"Jane Smith", "John Doe", "Bob Johnson"}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTopEarnerNames_Limit(t *testing.T) {
	list := make([]Employee, 0, 15)
	bySalary := make(map[string]int, 15)
	for i := 0; i < 15; i++ {
		name := fmt.Sprintf("Employee %d", i)
		salary := 1000 * ((i * 11) % 15)
		list = append(list, newEmployee(name, salary))
		bySalary[name] = salary
	}

	tests := []struct {
		n    int
		want int
	}{
		{n: 10, want: 10},
		{n: 15, want: 15},
		{n: 20, want: 15},
		{n: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			got := TopEarnerNames(list, tt.n)
			if len(got) != tt.want {
				t.Fatalf("len = %d, want %d", len(got), tt.want)
			}
			for i := 1; i < len(got); i++ {
				if bySalary[got[i-1]] < bySalary[got[i]] {
					t.Errorf("%q (%d) ranked above %q (%d)",
						got[i-1], bySalary[got[i-1]], got[i], bySalary[got[i]])
				}
			}
		})
	}
}

func TestTopEarnerNames_TiesAndUnsetSalaries(t *testing.T) {
	list := []Employee{
		{ID: uuid.New(), Name: "Unpaid"},
		newEmployee("Tie A", 100),
		newEmployee("Tie B", 100),
		newEmployee("Low", 1),
	}

	got := TopEarnerNames(list, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	seen := map[string]bool{got[0]: true, got[1]: true}
	if !seen["Tie A"] || !seen["Tie B"] {
		t.Errorf("tied names missing from top two: %v", got)
	}
	if got[2] != "Low" {
		t.Errorf("got[2] = %q, want Low", got[2])
	}
}

func TestTopEarnerNames_DoesNotReorderInput(t *testing.T) {
	list := []Employee{
		newEmployee("Low", 1),
		newEmployee("High", 3),
	}

	TopEarnerNames(list, 2)

	if list[0].Name != "Low" || list[1].Name != "High" {
		t.Errorf("input reordered: %v", []string{list[0].Name, list[1].Name})
	}
}
