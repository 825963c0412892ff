package panel

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		fallback string
		want     string
	}{
		{"plain", "Filter", FallbackControl, "filter"},
		{"spaces to underscores", "Master Volume", FallbackControl, "master_volume"},
		{"diacritics folded", "Über Loud", FallbackControl, "uber_loud"},
		{"punctuation stripped", "Über Loud!", FallbackControl, "uber_loud"},
		{"digits and dashes kept", "fx-2 send", FallbackControl, "fx-2_send"},
		{"underscores kept", "lo_fi", FallbackControl, "lo_fi"},
		{"all symbols falls back", "!!!", FallbackControl, "name"},
		{"empty falls back", "", FallbackPreset, "preset"},
		{"non latin falls back", "日本語", FallbackPreset, "preset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.in, tt.fallback); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/fx1", "/fx1"},
		{"fx1", "/fx1"},
		{"  fx1/delay ", "/fx1/delay"},
		{"", "/"},
	}
	for _, tt := range tests {
		if got := NormalizeAddress(tt.in); got != tt.want {
			t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveAddress(t *testing.T) {
	tests := []struct {
		name string
		base string
		disp string
		raw  string
		want string
	}{
		{"suffix after base", "/fx1", "Delay 1", "/fx1/x", "/fx1/delay_1/x"},
		{"bare base", "/fx1", "Delay 1", "/fx1", "/fx1/delay_1"},
		{"missing leading slash on base", "fx1", "Delay 1", "/fx1/x", "/fx1/delay_1/x"},
		{"raw outside base", "/fx1", "Delay 1", "other/x", "/fx1/delay_1/other/x"},
		{"empty raw", "/fx1", "Delay 1", "", "/fx1/delay_1"},
		{"name falls back", "/fx1", "!!!", "/fx1/x", "/fx1/name/x"},
		{"pad cell suffix", "/pads", "Grid", "/pads/1/3", "/pads/grid/1/3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveAddress(tt.base, tt.disp, tt.raw); got != tt.want {
				t.Errorf("ResolveAddress(%q, %q, %q) = %q, want %q",
					tt.base, tt.disp, tt.raw, got, tt.want)
			}
		})
	}
}

func TestBoolValue(t *testing.T) {
	if BoolValue(true) != 1 || BoolValue(false) != 0 {
		t.Error("BoolValue must map to 1.0/0.0")
	}
}
