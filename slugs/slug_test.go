package slugs_test

import (
	"testing"

	"github.com/goliatone/go-sitetree/slugs"
)

func TestGenerate(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "About Us", "about-us"},
		{"collapses punctuation", "Hello,  World!", "hello-world"},
		{"trims hyphens", "--edge case--", "edge-case"},
		{"keeps digits", "Top 10 Products", "top-10-products"},
		{"cyrillic", "Привет мир", "privet-mir"},
		{"cyrillic mixed", "Новости 2024", "novosti-2024"},
		{"ukrainian", "Київ", "kiyiv"},
		{"latin passthrough", "already-fine", "already-fine"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := slugs.Generate(tc.input); got != tc.want {
				t.Fatalf("Generate(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestTransliterate(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Москва", "Moskva"},
		{"щука", "schuka"},
		{"объект", "obekt"},
		{"plain ascii", "plain ascii"},
	}

	for _, tc := range cases {
		if got := slugs.Transliterate(tc.input); got != tc.want {
			t.Fatalf("Transliterate(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestForPage(t *testing.T) {
	if got := slugs.ForPage("Contact Page", "custom-slug", false); got != "custom-slug" {
		t.Fatalf("authored slug should survive, got %q", got)
	}
	if got := slugs.ForPage("Contact Page", "custom-slug", true); got != "contact-page" {
		t.Fatalf("auto derivation should regenerate, got %q", got)
	}
	if got := slugs.ForPage("Contact Page", "", false); got != "contact-page" {
		t.Fatalf("blank slug should regenerate, got %q", got)
	}
	if got := slugs.ForPage("Shop", "Мой Магазин", false); got != "moy-magazin" {
		t.Fatalf("authored cyrillic slug should transliterate, got %q", got)
	}
}
