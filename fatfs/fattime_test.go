package fatfs

import (
	"testing"
	"time"
)

func TestPackTime(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want uint32
	}{
		{
			name: "epoch",
			in:   time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: 1<<21 | 1<<16,
		},
		{
			name: "odd seconds truncate",
			in:   time.Date(2000, time.June, 15, 12, 30, 45, 0, time.UTC),
			want: 20<<25 | 6<<21 | 15<<16 | 12<<11 | 30<<5 | 22,
		},
		{
			name: "before epoch clamps",
			in:   time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: 1<<21 | 1<<16,
		},
		{
			name: "after range clamps",
			in:   time.Date(2200, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: 127<<25 | 12<<21 | 31<<16 | 23<<11 | 59<<5 | 29,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PackTime(tt.in); got != tt.want {
				t.Errorf("PackTime = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestUnpackTime_RoundTrip(t *testing.T) {
	in := time.Date(2023, time.November, 30, 23, 59, 58, 0, time.UTC)
	got := UnpackTime(PackTime(in), time.UTC)
	if !got.Equal(in) {
		t.Errorf("UnpackTime = %v, want %v", got, in)
	}

	odd := in.Add(time.Second)
	if got := UnpackTime(PackTime(odd), time.UTC); !got.Equal(in) {
		t.Errorf("odd second = %v, want %v", got, in)
	}
}
