// internal/service/explore/normalize_test.go

package explore

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "KEBAB", "kebab"},
		{"trims", "  cafe  ", "cafe"},
		{"strips accents", "Üsküdar", "uskudar"},
		{"folds dotless i", "Kınalı", "kinali"},
		{"folds capital dotted i", "İstanbul", "istanbul"},
		{"folds cedilla", "Şiş Kebap", "sis kebap"},
		{"empty", "", ""},
		{"spaces only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeText(tt.in); got != tt.want {
				t.Fatalf("normalizeText(%q): expected %q, got %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := normalizeKey("  Cafe "); got != "cafe" {
		t.Fatalf("expected cafe, got %q", got)
	}
	if got := normalizeKey(""); got != "" {
		t.Fatalf("expected an empty key to stay empty, got %q", got)
	}
}
