package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDayOf(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"midnight", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{"late evening", time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC), "2024-03-01"},
		{"zoned instant keeps local date", time.Date(2024, 3, 1, 0, 30, 0, 0, tokyo), "2024-03-01"},
		{"zero instant", time.Time{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayOf(tt.in).String(); got != tt.want {
				t.Errorf("DayOf(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDayIn(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 20:00 UTC on the 1st is already the 2nd in Tokyo.
	instant := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	if got := DayIn(instant, tokyo).String(); got != "2024-03-02" {
		t.Errorf("DayIn() = %q, want 2024-03-02", got)
	}
	if got := DayIn(instant, time.UTC).String(); got != "2024-03-01" {
		t.Errorf("DayIn() = %q, want 2024-03-01", got)
	}
}

func TestInclusiveDayCount(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"same day", "2024-01-01", "2024-01-01", 1},
		{"ten days", "2024-01-01", "2024-01-10", 10},
		{"across month", "2024-01-30", "2024-02-02", 4},
		{"leap day", "2024-02-28", "2024-03-01", 3},
		{"across DST change", "2024-03-09", "2024-03-11", 3},
		{"reversed", "2024-01-05", "2024-01-01", -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InclusiveDayCount(MustParse(tt.a), MustParse(tt.b))
			if got != tt.want {
				t.Errorf("InclusiveDayCount(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMinMax(t *testing.T) {
	a := MustParse("2024-01-01")
	b := MustParse("2024-02-01")

	if got := Max(a, b); !got.Equal(b) {
		t.Errorf("Max() = %s, want %s", got, b)
	}
	if got := Min(a, b); !got.Equal(a) {
		t.Errorf("Min() = %s, want %s", got, a)
	}
	if got := Max(Day{}, a); !got.Equal(a) {
		t.Errorf("Max(zero, a) = %s, want %s", got, a)
	}
	if got := Min(a, Day{}); !got.Equal(a) {
		t.Errorf("Min(a, zero) = %s, want %s", got, a)
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("2024-13-01"); err == nil {
		t.Error("expected error for invalid month")
	}
	if _, err := Parse("01/02/2024"); err == nil {
		t.Error("expected error for wrong layout")
	}
	d, err := Parse("2024-07-04")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.July || d.DayOfMonth() != 4 {
		t.Errorf("Parse() = %v", d)
	}
}

func TestRange(t *testing.T) {
	days := Range(MustParse("2024-01-30"), MustParse("2024-02-02"))
	want := []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}
	if len(days) != len(want) {
		t.Fatalf("Range() returned %d days, want %d", len(days), len(want))
	}
	for i, d := range days {
		if d.String() != want[i] {
			t.Errorf("Range()[%d] = %s, want %s", i, d, want[i])
		}
	}
	if got := Range(MustParse("2024-02-02"), MustParse("2024-01-30")); got != nil {
		t.Errorf("Range() with reversed bounds = %v, want nil", got)
	}
}

func TestDayJSON(t *testing.T) {
	type payload struct {
		Day Day `json:"day"`
	}

	b, err := json.Marshal(payload{Day: MustParse("2024-05-06")})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `{"day":"2024-05-06"}` {
		t.Errorf("Marshal() = %s", b)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"day":""}`), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !p.Day.IsZero() {
		t.Errorf("expected zero day, got %s", p.Day)
	}
}

func TestDayScan(t *testing.T) {
	var d Day
	if err := d.Scan("2024-05-06"); err != nil || d.String() != "2024-05-06" {
		t.Errorf("Scan(string) = %v, %v", d, err)
	}
	if err := d.Scan([]byte("2024-05-07")); err != nil || d.String() != "2024-05-07" {
		t.Errorf("Scan([]byte) = %v, %v", d, err)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Errorf("Scan(nil) = %v, %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}

	v, err := Day{}.Value()
	if err != nil || v != nil {
		t.Errorf("zero Value() = %v, %v; want nil", v, err)
	}
}
