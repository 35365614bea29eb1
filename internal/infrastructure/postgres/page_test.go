package postgres

import "testing"

func TestPageCount(t *testing.T) {
	cases := []struct {
		total, want int
	}{
		{0, 0},
		{1, 1},
		{9, 1},
		{10, 1},
		{11, 2},
		{20, 2},
		{21, 3},
		{105, 11},
	}
	for _, c := range cases {
		if got := PageCount(c.total); got != c.want {
			t.Errorf("PageCount(%d) = %d, want %d", c.total, got, c.want)
		}
	}
}
