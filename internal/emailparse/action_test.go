package emailparse

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		subject string
		text    string
		want    Action
	}{
		{
			name:    "booking subject",
			subject: "Leo Zhang has booked Private lesson with CoachAmber",
			want:    ActionBook,
		},
		{
			name: "booking confirmation body",
			text: "This is a confirmation of booking for your lesson.",
			want: ActionBook,
		},
		{
			name:    "cancellation body wins over booking phrase",
			subject: "Confirmation of cancellation of your booking",
			text:    "Your booking has been cancelled for Leo Zhang.",
			want:    ActionCancel,
		},
		{
			name: "reschedule",
			text: "Confirmation: Leo's booking for Private lesson changed to 09-01-2026 at 2:00 PM to 3:00 PM",
			want: ActionChange,
		},
		{
			name: "rescheduled keyword",
			text: "Your lesson has been rescheduled.",
			want: ActionChange,
		},
		{
			name:    "unrelated email",
			subject: "Weekly newsletter",
			text:    "Open water season starts soon!",
			want:    ActionUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.subject, tc.text); got != tc.want {
				t.Fatalf("Classify(%q, %q) = %q, want %q", tc.subject, tc.text, got, tc.want)
			}
		})
	}
}

func TestClassifyCancelBeatsChange(t *testing.T) {
	// "changed" appears too, but cancellation phrasing must win.
	text := "Your booking has been cancelled for Leo Zhang. The schedule changed."
	if got := Classify("", text); got != ActionCancel {
		t.Fatalf("Classify = %q, want %q", got, ActionCancel)
	}
}
