package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   Params
	}{
		{"defaults", "/", Params{Page: 1, PerPage: PageSize}},
		{"explicit", "/?page=3&per_page=20", Params{Page: 3, PerPage: 20}},
		{"garbage", "/?page=x&per_page=-4", Params{Page: 1, PerPage: PageSize}},
		{"clamped", "/?per_page=5000", Params{Page: 1, PerPage: MaxPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(httptest.NewRequest("GET", tt.target, nil))
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.target, got, tt.want)
			}
		})
	}
}

func TestParams_Offset(t *testing.T) {
	p := Params{Page: 3, PerPage: 20}
	if p.Offset() != 40 || p.Limit() != 20 {
		t.Errorf("offset=%d limit=%d", p.Offset(), p.Limit())
	}
}

func TestNewResult(t *testing.T) {
	tests := []struct {
		name  string
		p     Params
		total int64
		want  Result
	}{
		{"empty", Params{1, 50}, 0, Result{Page: 1, PerPage: 50, Total: 0, TotalPages: 1}},
		{"exact", Params{1, 50}, 100, Result{Page: 1, PerPage: 50, Total: 100, TotalPages: 2, HasNext: true}},
		{"last partial", Params{3, 50}, 101, Result{Page: 3, PerPage: 50, Total: 101, TotalPages: 3, HasPrev: true}},
		{"middle", Params{2, 10}, 35, Result{Page: 2, PerPage: 10, Total: 35, TotalPages: 4, HasPrev: true, HasNext: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewResult(tt.p, tt.total); got != tt.want {
				t.Errorf("NewResult() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
