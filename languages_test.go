package linguaswap

import "testing"

func TestCanonicalLanguage(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"zh_cn", "zh-CN"},
		{"pt-br", "pt-BR"},
		{"  fr ", "fr"},
		{"", ""},
		{"not a language", "not a language"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := CanonicalLanguage(tt.code); got != tt.expected {
				t.Errorf("CanonicalLanguage(%q) = %q, want %q", tt.code, got, tt.expected)
			}
		})
	}
}

func TestGetDirection(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"en", "ltr"},
		{"zh-CN", "ltr"},
		{"ar", "rtl"},
		{"ar_SA", "rtl"},
		{"he-IL", "rtl"},
		{"FA", "rtl"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := GetDirection(tt.code); got != tt.expected {
				t.Errorf("GetDirection(%q) = %q, want %q", tt.code, got, tt.expected)
			}
		})
	}
}

func TestIsRTL(t *testing.T) {
	if !IsRTL("ar") {
		t.Error("ar should be RTL")
	}
	if IsRTL("en") {
		t.Error("en should not be RTL")
	}
}

func TestLanguageName(t *testing.T) {
	if got := LanguageName("en"); got != "English" {
		t.Errorf("LanguageName(en) = %q, want English", got)
	}
	if got := LanguageName("!!"); got != "!!" {
		t.Errorf("LanguageName should fall back to the code, got %q", got)
	}
}

func TestEnglishLanguageName(t *testing.T) {
	if got := EnglishLanguageName("de"); got != "German" {
		t.Errorf("EnglishLanguageName(de) = %q, want German", got)
	}
}
