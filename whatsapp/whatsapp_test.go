package whatsapp

import "testing"

func TestLink(t *testing.T) {
	tt := []struct {
		name    string
		phone   string
		message string
		want    string
	}{
		{
			name:    "formatted_phone",
			phone:   "+1 (555) 010-9999",
			message: "Hi",
			want:    "https://wa.me/15550109999?text=Hi",
		},
		{
			name:    "message_is_escaped",
			phone:   "5491122334455",
			message: "Bulk request: Fresh Bread & milk?",
			want:    "https://wa.me/5491122334455?text=Bulk%20request%3A%20Fresh%20Bread%20%26%20milk%3F",
		},
		{
			name:    "plus_is_kept",
			phone:   "15550109999",
			message: "1+1 boxes",
			want:    "https://wa.me/15550109999?text=1%2B1%20boxes",
		},
		{
			name:  "no_message",
			phone: "555.010.9999",
			want:  "https://wa.me/5550109999",
		},
		{
			name:    "no_digits",
			phone:   "call me",
			message: "Hi",
			want:    "",
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := Link(tc.phone, tc.message); got != tc.want {
				t.Errorf("Link(%q, %q) = %q; want %q", tc.phone, tc.message, got, tc.want)
			}
		})
	}
}
