package filter_test

import (
	"slices"
	"testing"

	"github.com/p-n-ai/pai-admin/internal/filter"
)

type course struct {
	ID          int
	Title       string
	Description string
	Status      string
	Mode        string
}

var courses = []course{
	{1, "Go Fundamentals", "types and interfaces", "active", "online"},
	{2, "Advanced Go", "concurrency patterns", "inactive", "physical"},
	{3, "Straße Design", "urban planning", "active", "physical"},
	{4, "Data Basics", "tables and go-to charts", "active", "online"},
}

func newEngine() *filter.Engine[course] {
	return filter.New(
		filter.Text("search", "Search",
			func(c course) string { return c.Title },
			func(c course) string { return c.Description },
		),
		filter.Equals("status", "Status", func(c course) string { return c.Status }).
			WithDisplay(func(v string) string {
				if v == "active" {
					return "Active"
				}
				return "Inactive"
			}),
		filter.Equals("mode", "Delivery", func(c course) string { return c.Mode }),
	)
}

func idsOf(cs []course) []int {
	out := []int{}
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestEngine_DefaultsReturnEverything(t *testing.T) {
	e := newEngine()

	got := e.Apply(courses)
	if !slices.Equal(idsOf(got), []int{1, 2, 3, 4}) {
		t.Errorf("Apply() = %v, want original collection", idsOf(got))
	}
	if chips := e.Chips(); len(chips) != 0 {
		t.Errorf("Chips() = %+v, want none", chips)
	}
}

func TestEngine_AllAndEmptyAreInactive(t *testing.T) {
	e := newEngine()
	e.Set("status", "All")
	e.Set("mode", "  ")

	if got := e.Apply(courses); len(got) != len(courses) {
		t.Errorf("Apply() = %v, want all", idsOf(got))
	}
	if chips := e.Chips(); len(chips) != 0 {
		t.Errorf("Chips() = %+v, want none", chips)
	}
}

func TestEngine_Text(t *testing.T) {
	tests := []struct {
		query string
		want  []int
	}{
		{"go", []int{1, 2, 4}},
		{"GO", []int{1, 2, 4}},
		{"concurrency", []int{2}},
		{"strasse", []int{3}},
		{"nothing", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			e := newEngine()
			e.Set("search", tt.query)
			if got := idsOf(e.Apply(courses)); !slices.Equal(got, tt.want) {
				t.Errorf("Apply(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestEngine_IsIntersectionOfFilters(t *testing.T) {
	values := map[string][]string{
		"search": {"", "go", "design"},
		"status": {"all", "active", "inactive"},
		"mode":   {"", "online", "physical"},
	}

	for _, search := range values["search"] {
		for _, status := range values["status"] {
			for _, mode := range values["mode"] {
				combined := newEngine()
				combined.Set("search", search)
				combined.Set("status", status)
				combined.Set("mode", mode)
				got := idsOf(combined.Apply(courses))

				want := []int{}
				for _, c := range courses {
					keep := true
					for name, v := range map[string]string{"search": search, "status": status, "mode": mode} {
						single := newEngine()
						single.Set(name, v)
						if len(single.Apply([]course{c})) == 0 {
							keep = false
						}
					}
					if keep {
						want = append(want, c.ID)
					}
				}

				if !slices.Equal(got, want) {
					t.Errorf("search=%q status=%q mode=%q: got %v, want %v", search, status, mode, got, want)
				}
			}
		}
	}
}

func TestEngine_ChipsRemove(t *testing.T) {
	e := newEngine()
	e.Set("search", "go")
	e.Set("status", "active")

	chips := e.Chips()
	if len(chips) != 2 {
		t.Fatalf("Chips() = %+v, want 2", chips)
	}
	if chips[1].Label != "Status: Active" {
		t.Errorf("label = %q, want Status: Active", chips[1].Label)
	}

	chips[1].Remove()
	if e.Value("status") != "" {
		t.Errorf("status = %q after Remove", e.Value("status"))
	}
	if got := idsOf(e.Apply(courses)); !slices.Equal(got, []int{1, 2, 4}) {
		t.Errorf("Apply() = %v after removing status", got)
	}
}

func TestEngine_UnknownFilter(t *testing.T) {
	if err := newEngine().Set("price", "10"); err == nil {
		t.Error("Set(price) error = nil, want unknown filter")
	}
}

func TestEngine_Names(t *testing.T) {
	if got := newEngine().Names(); !slices.Equal(got, []string{"search", "status", "mode"}) {
		t.Errorf("Names() = %v", got)
	}
}
