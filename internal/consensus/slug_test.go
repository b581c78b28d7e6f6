package consensus

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Woolly Bugger", "woolly-bugger"},
		{"trailing space and case", "Parachute Adams ", "parachute-adams"},
		{"punctuation", "Elk-Hair Caddis!", "elk-hair-caddis"},
		{"collapsed separators", "  Zebra __ Midge  ", "zebra-midge"},
		{"digits", "Copper John #16", "copper-john-16"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
