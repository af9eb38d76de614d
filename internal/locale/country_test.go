package locale

import "testing"

func TestResolveCountry(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Kathmandu, Nepal", "NP"},
		{"Queens, New York, USA", "US"},
		{"London, UK", "GB"},
		{"Georgia, USA", "US"},
		{"Tbilisi, Georgia", "GE"},
		{"  Berlin ,  GERMANY  ", "DE"},
		{"Yangon, Burma", "MM"},
		{"Springfield", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := ResolveCountry(c.in); got != c.want {
			t.Errorf("ResolveCountry(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}
