package frequency

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	tests := []struct {
		code    string
		want    Frequency
		wantErr bool
	}{
		{code: "X1", want: Frequency{Unit: Once, Count: 1}},
		{code: "D7", want: Frequency{Unit: Day, Count: 7}},
		{code: "W2", want: Frequency{Unit: Week, Count: 2}},
		{code: "M1", want: Frequency{Unit: Month, Count: 1}},
		{code: "Y10", want: Frequency{Unit: Year, Count: 10}},
		{code: "D0", wantErr: true},
		{code: "D-1", wantErr: true},
		{code: "D+1", wantErr: true},
		{code: "Q3", wantErr: true},
		{code: "d7", wantErr: true},
		{code: "D", wantErr: true},
		{code: "", wantErr: true},
		{code: "7", wantErr: true},
		{code: "D1.5", wantErr: true},
		{code: "D12345678", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := Parse(tt.code)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFrequency) {
					t.Fatalf("Parse(%q) error = %v, want ErrInvalidFrequency", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.code, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.code, got, tt.want)
			}
			if got.String() != tt.code {
				t.Errorf("String() = %q, want %q", got.String(), tt.code)
			}
		})
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		code string
		from time.Time
		want time.Time
	}{
		{"D7", date(2024, 1, 1), date(2024, 1, 8)},
		{"D1", date(2024, 12, 31), date(2025, 1, 1)},
		{"W1", date(2024, 2, 26), date(2024, 3, 4)},
		{"W2", date(2024, 1, 1), date(2024, 1, 15)},
		{"M1", date(2024, 1, 15), date(2024, 2, 15)},
		{"M1", date(2024, 1, 31), date(2024, 2, 29)},
		{"M1", date(2023, 1, 31), date(2023, 2, 28)},
		{"M3", date(2024, 11, 30), date(2025, 2, 28)},
		{"M12", date(2024, 5, 5), date(2025, 5, 5)},
		{"Y1", date(2024, 2, 29), date(2025, 2, 28)},
		{"Y4", date(2024, 2, 29), date(2028, 2, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.code+" "+tt.from.Format("2006-01-02"), func(t *testing.T) {
			got, err := MustParse(tt.code).Next(tt.from)
			if err != nil {
				t.Fatalf("Next() unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Next() = %s, want %s", got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestNext_OnceDoesNotRecur(t *testing.T) {
	_, err := MustParse("X1").Next(date(2024, 1, 1))
	if !errors.Is(err, ErrNoRecurrence) {
		t.Fatalf("expected ErrNoRecurrence, got %v", err)
	}
}

func TestNext_StrictlyLaterAndAdditive(t *testing.T) {
	start := date(2023, 12, 28)
	for _, unit := range []Unit{Day, Week, Month, Year} {
		for count := 1; count <= 5; count++ {
			for offset := 0; offset < 60; offset++ {
				from := start.AddDate(0, 0, offset)
				f := Frequency{Unit: unit, Count: count}

				once, err := f.Next(from)
				if err != nil {
					t.Fatalf("%s.Next: %v", f, err)
				}
				if !once.After(from) {
					t.Fatalf("%s.Next(%s) = %s, not later", f, from.Format("2006-01-02"), once.Format("2006-01-02"))
				}

				// Clamping makes month/year arithmetic non-additive past day 28.
				if (unit == Month || unit == Year) && from.Day() > 28 {
					continue
				}
				twice, _ := f.Next(once)
				doubled, _ := Frequency{Unit: unit, Count: 2 * count}.Next(from)
				if !twice.Equal(doubled) {
					t.Fatalf("%s twice from %s = %s, doubled = %s", f, from.Format("2006-01-02"),
						twice.Format("2006-01-02"), doubled.Format("2006-01-02"))
				}
			}
		}
	}
}

func TestUnmarshalText(t *testing.T) {
	var f Frequency
	if err := f.UnmarshalText([]byte("W3")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if f.Unit != Week || f.Count != 3 {
		t.Errorf("got %+v", f)
	}
	if err := f.UnmarshalText([]byte("Z1")); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("expected ErrInvalidFrequency, got %v", err)
	}
}
