package emailparse

import (
	"reflect"
	"testing"
)

func TestStripHTML(t *testing.T) {
	html := `<html><head><style>p { color: red; }</style></head>
<body><script>tracking();</script><p>Leo&nbsp;Zhang has booked<br>a lesson &amp; more</p></body></html>`

	got := StripHTML(html)
	want := "Leo Zhang has booked a lesson & more"
	if got != want {
		t.Fatalf("StripHTML = %q, want %q", got, want)
	}
}

func TestCanon(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Leo   Zhang ", "leo zhang"},
		{"LEO ZHANG", "leo zhang"},
		{"leo zhang", "leo zhang"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Canon(tc.in); got != tc.want {
			t.Fatalf("Canon(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitCamelCoach(t *testing.T) {
	cases := []struct{ in, want string }{
		{"CoachAmber", "Coach Amber"},
		{"Coach Amber", "Coach Amber"},
		{"Amber", "Amber"},
	}
	for _, tc := range cases {
		if got := SplitCamelCoach(tc.in); got != tc.want {
			t.Fatalf("SplitCamelCoach(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitStudentList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Leo Zhang and Mia Zhang", []string{"Leo Zhang", "Mia Zhang"}},
		{"Leo, Mia & Ana", []string{"Leo", "Mia", "Ana"}},
		{"Leo Zhang", []string{"Leo Zhang"}},
		{"  ", nil},
	}
	for _, tc := range cases {
		if got := SplitStudentList(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("SplitStudentList(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
