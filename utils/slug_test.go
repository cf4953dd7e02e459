package utils

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Men", "men"},
		{"Sweaters & Cardigans", "sweaters-cardigans"},
		{"  Kids' Caps!! ", "kids-caps"},
		{"Pashmina---Shawls", "pashmina-shawls"},
		{"2024 Winter Edit", "2024-winter-edit"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{"Men", "Woolen Socks (Pack of 3)", "-Already-a-slug-", "ÜBER Wool", "a__b..c"}
	for _, in := range inputs {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent for %q: %q then %q", in, once, twice)
		}
		if once != strings.ToLower(once) {
			t.Errorf("Slugify(%q) = %q is not lowercase", in, once)
		}
		if strings.HasPrefix(once, "-") || strings.HasSuffix(once, "-") {
			t.Errorf("Slugify(%q) = %q has leading or trailing hyphen", in, once)
		}
		if strings.Contains(once, "--") {
			t.Errorf("Slugify(%q) = %q contains a double hyphen", in, once)
		}
	}
}
