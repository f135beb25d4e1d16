package heat

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"1100.9w", 11009000},
		{"1100.9万", 11009000},
		{"2w", 20000},
		{"56.3W", 563000},
		{"5k", 5000},
		{"3千", 3000},
		{"1.5k", 1500},
		{"150", 150},
		{"12345", 12345},
		{"1,234", 1234},
		{" 88 ", 88},
		{"99.7", 99},
		{"", 0},
		{"abc", 0},
		{"n/a", 0},
		{"w", 0},
		{"-5", 0},
	}

	for _, c := range cases {
		if got := Parse(c.raw); got != c.want {
			t.Errorf("Parse(%q) = %d, want %d", c.raw, got, c.want)
		}
	}
}
