package response

import "testing"

func TestNewPagination(t *testing.T) {
	cases := []struct {
		name          string
		page, perPage int
		total         int
		wantPage      int
		wantPerPage   int
		wantPages     int
	}{
		{"typical", 2, 15, 31, 2, 15, 3},
		{"exact multiple", 1, 10, 30, 1, 10, 3},
		{"empty result", 1, 15, 0, 1, 15, 0},
		{"per_page zero falls back", 1, 0, 40, 1, 15, 3},
		{"per_page negative falls back", 1, -5, 40, 1, 15, 3},
		{"per_page over cap falls back", 1, 1000, 40, 1, 15, 3},
		{"page zero clamps", 0, 15, 40, 1, 15, 3},
		{"page negative clamps", -3, 15, 40, 1, 15, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.perPage, tc.total)
			if p.Page != tc.wantPage {
				t.Errorf("page = %d, want %d", p.Page, tc.wantPage)
			}
			if p.PerPage != tc.wantPerPage {
				t.Errorf("per_page = %d, want %d", p.PerPage, tc.wantPerPage)
			}
			if p.TotalItems != tc.total {
				t.Errorf("total_items = %d, want %d", p.TotalItems, tc.total)
			}
			if p.TotalPages != tc.wantPages {
				t.Errorf("total_pages = %d, want %d", p.TotalPages, tc.wantPages)
			}
		})
	}
}
