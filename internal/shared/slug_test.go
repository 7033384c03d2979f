package shared

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Multiple   Spaces  ", "multiple-spaces"},
		{"Crème Brûlée!", "creme-brulee"},
		{"Go 1.24 Released", "go-1-24-released"},
		{"UPPER_case_title", "upper-case-title"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(0, 0, 45)
	if p.Page != 1 || p.PerPage != 20 {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 pages for 45 items, got %d", p.TotalPages)
	}

	p = NewPagination(3, 10, 45)
	if p.Offset() != 20 {
		t.Fatalf("expected offset 20, got %d", p.Offset())
	}
	if p.TotalPages != 5 {
		t.Fatalf("expected 5 pages, got %d", p.TotalPages)
	}
}
