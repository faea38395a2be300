package lang

import (
	"errors"
	"testing"
)

func TestRegistryLookup(t *testing.T) {
	en, err := ByCode("EN")
	if err != nil {
		t.Fatal(err)
	}
	if en.ID != 1 || en.Code != "en" {
		t.Errorf("unexpected english entry: %+v", en)
	}
	byID, err := ByID(en.ID)
	if err != nil || byID != en {
		t.Errorf("ByID(%d) = %v, %v", en.ID, byID, err)
	}
	if _, err := ByCode("xx"); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("ByCode(xx) = %v", err)
	}
	if got := ID(2).String(); got != "de" {
		t.Errorf("ID(2).String() = %q", got)
	}

	all := Default.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatal("All() not ordered by id")
		}
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate id")
		}
	}()
	NewRegistry(newLanguage(1, "aa", "A", nil, nil), newLanguage(1, "bb", "B", nil, nil))
}

func TestGuessNamespace(t *testing.T) {
	en := MustByCode("en")
	de := MustByCode("de")

	tests := []struct {
		l     *Language
		title string
		want  Namespace
	}{
		{en, "Earth", Main},
		{en, "Category:Planets", Category},
		{en, "category_talk:Planets", Talk},
		{en, "Star Wars: Episode IV", Main},
		{en, ":Earth", Main},
		{de, "Kategorie:Planet", Category},
		{de, "Category:Planet", Category},
		{en, "Kategorie:Planet", Main},
		{de, "Datei:Erde.png", File},
	}
	for _, tt := range tests {
		if got := tt.l.GuessNamespace(tt.title); got != tt.want {
			t.Errorf("%s GuessNamespace(%q) = %v, want %v", tt.l, tt.title, got, tt.want)
		}
	}
}

func TestRedirectTarget(t *testing.T) {
	en := MustByCode("en")
	fr := MustByCode("fr")

	tests := []struct {
		l      *Language
		body   string
		target string
		ok     bool
	}{
		{en, "#REDIRECT [[Earth]]", "Earth", true},
		{en, "  #redirect:[[Earth|the earth]]", "Earth", true},
		{en, "Earth is a planet. #REDIRECT [[Mars]]", "", false},
		{en, "", "", false},
		{fr, "#REDIRECTION [[Terre]]", "Terre", true},
		{fr, "#REDIRECT [[Terre]]", "Terre", true},
	}
	for _, tt := range tests {
		target, ok := tt.l.RedirectTarget(tt.body)
		if target != tt.target || ok != tt.ok {
			t.Errorf("%s RedirectTarget(%q) = %q, %v", tt.l, tt.body, target, ok)
		}
	}
}
