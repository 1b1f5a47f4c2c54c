package domain

import (
	"errors"
	"testing"
)

func TestParseTenor(t *testing.T) {
	tests := []struct {
		in   string
		want Tenor
	}{
		{"ON", TenorON},
		{"on", TenorON},
		{" tn ", TenorTN},
		{"Spot", TenorSpot},
		{"1w", Tenor1W},
		{"3m", Tenor3M},
		{"12M", Tenor12M},
		{"1Y", Tenor12M},
		{"2y", Tenor("24M")},
	}

	for _, tt := range tests {
		got, err := ParseTenor(tt.in)
		if err != nil {
			t.Errorf("ParseTenor(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTenor(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseTenor_Unrecognized(t *testing.T) {
	for _, in := range []string{"", "M", "0M", "-1M", "+3M", "3D", "SN", "1X", "broken"} {
		if _, err := ParseTenor(in); !errors.Is(err, ErrUnrecognizedTenor) {
			t.Errorf("ParseTenor(%q): expected ErrUnrecognizedTenor, got %v", in, err)
		}
	}
}

func TestTenor_KindAndCount(t *testing.T) {
	tests := []struct {
		tenor Tenor
		kind  TenorKind
		count int
	}{
		{TenorON, KindOvernight, 0},
		{TenorTN, KindTomNext, 0},
		{TenorSpot, KindSpot, 0},
		{Tenor2W, KindWeeks, 2},
		{Tenor9M, KindMonths, 9},
		{Tenor("XX"), KindUnknown, 0},
	}

	for _, tt := range tests {
		if got := tt.tenor.Kind(); got != tt.kind {
			t.Errorf("%s.Kind() = %d, want %d", tt.tenor, got, tt.kind)
		}
		if got := tt.tenor.Count(); got != tt.count {
			t.Errorf("%s.Count() = %d, want %d", tt.tenor, got, tt.count)
		}
	}
}

func TestTenor_IsPreSpot(t *testing.T) {
	if !TenorON.IsPreSpot() || !TenorTN.IsPreSpot() {
		t.Error("ON and TN should settle before spot")
	}
	if TenorSpot.IsPreSpot() || Tenor1M.IsPreSpot() {
		t.Error("SPOT and month tenors should not be pre-spot")
	}
}

func TestUser_Group(t *testing.T) {
	major := "external"
	sub := "client-7"
	u := &User{MajorGroup: &major, SubGroup: &sub}

	if got := u.Group(GroupMajor); got != "external" {
		t.Errorf("major group = %q", got)
	}
	if got := u.Group(GroupMid); got != "" {
		t.Errorf("mid group should be empty, got %q", got)
	}
	if got := u.Group(GroupSub); got != "client-7" {
		t.Errorf("sub group = %q", got)
	}
}
