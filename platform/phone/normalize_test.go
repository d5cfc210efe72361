package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"050 123 4567", "+971501234567"},
		{"+971 50 123 4567", "+971501234567"},
		{"  ", ""},
		{"not a number", "not a number"},
	}
	for _, tc := range cases {
		if got := NormalizeE164(tc.in); got != tc.want {
			t.Errorf("NormalizeE164(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMatches(t *testing.T) {
	if !Matches("0501234567", "+971501234567") {
		t.Error("local and international forms should match")
	}
	if Matches("", "") {
		t.Error("empty numbers must not match")
	}
}

func TestNormalizeE164In(t *testing.T) {
	if got := NormalizeE164In("07400 123456", "gb"); got != "+447400123456" {
		t.Errorf("gb local number = %q", got)
	}
	if got := NormalizeE164In("050 123 4567", ""); got != "+971501234567" {
		t.Errorf("empty region should fall back to default, got %q", got)
	}
}
