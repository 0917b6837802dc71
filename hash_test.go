package linguaswap

import "testing"

func TestHashText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple text",
			input:    "Hello World",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:     "text with both whitespace",
			input:    "  Hello World  ",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:  "empty string",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HashText(tt.input)
			if tt.expected != "" && result != tt.expected {
				t.Errorf("HashText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
			if len(result) != 64 {
				t.Errorf("HashText(%q) length = %d, want 64", tt.input, len(result))
			}
		})
	}
}

func TestCacheKey(t *testing.T) {
	if got := CacheKey("abc", "en"); got != "abc:en" {
		t.Errorf("CacheKey() = %q, want %q", got, "abc:en")
	}
}

func TestMemoKey(t *testing.T) {
	if MemoKey("en", "a.b") == MemoKey("en.a", "b") {
		t.Error("MemoKey should not collide across language/path boundaries")
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"nav.home", "nav.about", "footer.copyright"})
	b := Fingerprint([]string{"footer.copyright", "nav.home", "nav.about"})
	if a != b {
		t.Errorf("Fingerprint should be order independent: %q != %q", a, b)
	}
	if len(a) != 16 {
		t.Errorf("Fingerprint length = %d, want 16", len(a))
	}

	c := Fingerprint([]string{"nav.home"})
	if a == c {
		t.Error("different key sets should have different fingerprints")
	}

	// Boundary between keys is part of the hash.
	if Fingerprint([]string{"ab", "c"}) == Fingerprint([]string{"a", "bc"}) {
		t.Error("Fingerprint should separate keys")
	}
}
