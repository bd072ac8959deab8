package l2l

import (
	"testing"
	"time"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "vendor format",
			input: "2023-01-15 08:30:00",
			want:  time.Date(2023, 1, 15, 8, 30, 0, 0, time.UTC),
		},
		{
			name:  "date only",
			input: "2023-01-15",
			want:  time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "iso with T separator",
			input: "2023-01-15T08:30:00",
			want:  time.Date(2023, 1, 15, 8, 30, 0, 0, time.UTC),
		},
		{
			name:  "minutes precision",
			input: "2023-01-15 08:30",
			want:  time.Date(2023, 1, 15, 8, 30, 0, 0, time.UTC),
		},
		{
			name:  "us slashes",
			input: "01/15/2023",
			want:  time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "surrounding whitespace",
			input: "  2023-01-15  ",
			want:  time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			input:   "not a date",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateTime(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDateTime(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && !got.Equal(tt.want) {
				t.Errorf("ParseDateTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateString(t *testing.T) {
	in := time.Date(2023, 1, 15, 8, 30, 5, 0, time.UTC)
	if got := DateString(in); got != "2023-01-15 08:30:05" {
		t.Errorf("DateString() = %q, want %q", got, "2023-01-15 08:30:05")
	}
}
