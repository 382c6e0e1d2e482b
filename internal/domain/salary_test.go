package domain

import "testing"

func TestSalary_Midpoint(t *testing.T) {
	min, max := 1000.0, 2000.0

	tests := []struct {
		name   string
		salary Salary
		want   float64
		ok     bool
	}{
		{"both bounds", Salary{YearMin: &min, YearMax: &max}, 1500, true},
		{"min only", Salary{YearMin: &min}, 1000, true},
		{"max only", Salary{YearMax: &max}, 2000, true},
		{"open range", Salary{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.salary.Midpoint()
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("midpoint = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuery_Matches(t *testing.T) {
	job := Job{Location: "London", JobLevel: "Senior"}

	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"wildcards pass", Query{Location: FilterAll, JobLevel: FilterAll}, true},
		{"location matches case-insensitively", Query{Location: "london", JobLevel: FilterAll}, true},
		{"location mismatch", Query{Location: "berlin", JobLevel: FilterAll}, false},
		{"level matches", Query{Location: FilterAll, JobLevel: "senior"}, true},
		{"level mismatch", Query{Location: FilterAll, JobLevel: "junior"}, false},
		{"both filters", Query{Location: "london", JobLevel: "senior"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(job); got != tt.want {
				t.Errorf("matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuery_CacheKey(t *testing.T) {
	a := Query{Text: " Backend ", Location: "london"}
	b := Query{Text: "backend", JobLevel: "senior"}

	if a.CacheKey() != b.CacheKey() {
		t.Errorf("cache keys differ: %q vs %q", a.CacheKey(), b.CacheKey())
	}
	if a.CacheKey() != "backend" {
		t.Errorf("cache key = %q, want backend", a.CacheKey())
	}
}
