package compilation

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    time.Time
		wantNil bool
	}{
		{
			name: "RFC3339 with offset",
			text: "2025-03-15T10:00:00+05:30",
			want: time.Date(2025, time.March, 15, 4, 30, 0, 0, time.UTC),
		},
		{
			name: "RFC3339 UTC",
			text: "2025-03-15T10:00:00Z",
			want: time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "fractional seconds",
			text: "2025-03-31T23:59:59.999Z",
			want: time.Date(2025, time.March, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		},
		{
			name: "date only",
			text: "2025-02-01",
			want: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "surrounding whitespace",
			text: "\n\t 2025-02-01 \n",
			want: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "human readable",
			text: "March 15, 2025",
			want: time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "empty",
			text:    "",
			wantNil: true,
		},
		{
			name:    "whitespace only",
			text:    "   ",
			wantNil: true,
		},
		{
			name:    "not a date",
			text:    "Posted by admin",
			wantNil: true,
		},
		{
			name:    "time of day only",
			text:    "10:30",
			wantNil: true,
		},
		{
			name:    "month and day without year",
			text:    "Mar 15",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.text)
			if tt.wantNil {
				if got != nil {
					t.Errorf("ParseDate(%q) = %v, want nil", tt.text, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseDate(%q) = nil, want %v", tt.text, tt.want)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.text, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("ParseDate(%q) location = %v, want UTC", tt.text, got.Location())
			}
		})
	}
}
