// Package lang is the registry of wikipedia languages known to wikigraph.
//
// Every language is a static Language value: its persisted id, the wiki code
// used in dump file names, a BCP 47 tag and the localized conventions needed to
// classify titles and detect redirects. Lookups go through the registry; nothing
// is constructed dynamically.
package lang

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

// ErrUnknownLanguage is returned when a code or id is not in the registry.
var ErrUnknownLanguage = errors.New("unknown language")

// ID is the persisted identifier of a language (the lang_id column).
type ID int16

// Namespace is the fine-grained namespace a title belongs to.
type Namespace int

const (
	Main Namespace = iota
	Talk
	User
	Project
	File
	MediaWiki
	Template
	Help
	Category
	Portal
	Special
	Other
)

var namespaceNames = [...]string{"main", "talk", "user", "project", "file", "mediawiki",
	"template", "help", "category", "portal", "special", "other"}

func (n Namespace) String() string {
	if n < 0 || int(n) >= len(namespaceNames) {
		return fmt.Sprintf("Namespace(%d)", int(n))
	}
	return namespaceNames[n]
}

// Language holds the per-language conventions used by the parser.
type Language struct {
	ID   ID
	Code string
	Name string
	Tag  language.Tag

	// prefixes maps a lower-cased namespace prefix (without colon) to its namespace.
	prefixes map[string]Namespace
	redirect *regexp.Regexp
}

// canonical namespace prefixes shared by every wiki.
var canonicalPrefixes = map[string]Namespace{
	"talk":           Talk,
	"user":           User,
	"user talk":      Talk,
	"wikipedia":      Project,
	"wikipedia talk": Talk,
	"project":        Project,
	"file":           File,
	"file talk":      Talk,
	"image":          File,
	"media":          File,
	"mediawiki":      MediaWiki,
	"template":       Template,
	"template talk":  Talk,
	"help":           Help,
	"help talk":      Talk,
	"category":       Category,
	"category talk":  Talk,
	"portal":         Portal,
	"portal talk":    Talk,
	"special":        Special,
	"book":           Other,
	"draft":          Other,
	"module":         Other,
	"timedtext":      Other,
	"gadget":         Other,
}

func newLanguage(id ID, code, name string, redirectWords []string, local map[string]Namespace) *Language {
	l := &Language{
		ID:       id,
		Code:     code,
		Name:     name,
		Tag:      language.Make(code),
		prefixes: make(map[string]Namespace, len(canonicalPrefixes)+len(local)),
	}
	if code == "simple" {
		l.Tag = language.English
	}
	for k, v := range canonicalPrefixes {
		l.prefixes[k] = v
	}
	for k, v := range local {
		l.prefixes[strings.ToLower(k)] = v
	}

	words := append([]string{"REDIRECT"}, redirectWords...)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	l.redirect = regexp.MustCompile(`(?i)^\s*#\s*(?:` + strings.Join(quoted, "|") + `)\s*:?\s*\[\[([^\]\|]+)`)
	return l
}

func (l *Language) String() string {
	return l.Code
}

// GuessNamespace classifies a title by its namespace prefix. Titles without a
// prefix, or whose prefix is not a namespace known to the language (e.g.
// "Star Wars: Episode IV"), are in the main namespace.
func (l *Language) GuessNamespace(title string) Namespace {
	title = strings.TrimSpace(title)
	i := strings.IndexByte(title, ':')
	if i <= 0 {
		return Main
	}
	prefix := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(title[:i], "_", " ")))
	if ns, ok := l.prefixes[prefix]; ok {
		return ns
	}
	return Main
}

// HasNamespacePrefix reports whether title starts with a namespace prefix of the language.
func (l *Language) HasNamespacePrefix(title string) bool {
	return l.GuessNamespace(title) != Main
}

// RedirectTarget returns the target of a redirect body, if body is one.
func (l *Language) RedirectTarget(body string) (string, bool) {
	if body == "" {
		return "", false
	}
	m := l.redirect.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// IsRedirect reports whether body matches the language's redirect pattern.
func (l *Language) IsRedirect(body string) bool {
	_, ok := l.RedirectTarget(body)
	return ok
}

// Registry maps codes and ids to languages.
type Registry struct {
	byCode map[string]*Language
	byID   map[ID]*Language
}

// NewRegistry builds a registry from the given languages. It panics on duplicates.
func NewRegistry(langs ...*Language) *Registry {
	r := &Registry{
		byCode: make(map[string]*Language, len(langs)),
		byID:   make(map[ID]*Language, len(langs)),
	}
	for _, l := range langs {
		if _, dup := r.byCode[l.Code]; dup {
			panic("lang: duplicate code " + l.Code)
		}
		if _, dup := r.byID[l.ID]; dup {
			panic(fmt.Sprintf("lang: duplicate id %d", l.ID))
		}
		r.byCode[l.Code] = l
		r.byID[l.ID] = l
	}
	return r
}

// ByCode looks up a language by its wiki code ("en", "simple", ...).
func (r *Registry) ByCode(code string) (*Language, error) {
	l, ok := r.byCode[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLanguage, "code %q", code)
	}
	return l, nil
}

// ByID looks up a language by its persisted id.
func (r *Registry) ByID(id ID) (*Language, error) {
	l, ok := r.byID[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLanguage, "id %d", id)
	}
	return l, nil
}

// All returns the registered languages ordered by id.
func (r *Registry) All() []*Language {
	out := make([]*Language, 0, len(r.byID))
	for _, l := range r.byID {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Default is the registry of languages wikigraph ships with.
var Default = NewRegistry(
	newLanguage(1, "en", "English", nil, nil),
	newLanguage(2, "de", "German", []string{"WEITERLEITUNG"}, map[string]Namespace{
		"Kategorie": Category, "Datei": File, "Bild": File, "Vorlage": Template,
		"Benutzer": User, "Diskussion": Talk, "Hilfe": Help, "Spezial": Special,
	}),
	newLanguage(3, "fr", "French", []string{"REDIRECTION"}, map[string]Namespace{
		"Catégorie": Category, "Fichier": File, "Modèle": Template,
		"Utilisateur": User, "Discussion": Talk, "Aide": Help, "Spécial": Special, "Portail": Portal,
	}),
	newLanguage(4, "nl", "Dutch", []string{"DOORVERWIJZING"}, map[string]Namespace{
		"Categorie": Category, "Bestand": File, "Sjabloon": Template,
		"Gebruiker": User, "Overleg": Talk, "Speciaal": Special,
	}),
	newLanguage(5, "it", "Italian", []string{"RINVIA"}, map[string]Namespace{
		"Categoria": Category, "File": File, "Template": Template,
		"Utente": User, "Discussione": Talk, "Aiuto": Help, "Speciale": Special,
	}),
	newLanguage(6, "pl", "Polish", []string{"PATRZ", "PRZEKIERUJ", "TAM"}, map[string]Namespace{
		"Kategoria": Category, "Plik": File, "Szablon": Template,
		"Wikipedysta": User, "Dyskusja": Talk, "Pomoc": Help, "Specjalna": Special,
	}),
	newLanguage(7, "es", "Spanish", []string{"REDIRECCIÓN", "REDIRECCION"}, map[string]Namespace{
		"Categoría": Category, "Archivo": File, "Plantilla": Template,
		"Usuario": User, "Discusión": Talk, "Ayuda": Help, "Especial": Special,
	}),
	newLanguage(8, "ru", "Russian", []string{"ПЕРЕНАПРАВЛЕНИЕ", "ПЕРЕНАПР"}, map[string]Namespace{
		"Категория": Category, "Файл": File, "Шаблон": Template,
		"Участник": User, "Обсуждение": Talk, "Справка": Help, "Служебная": Special,
	}),
	newLanguage(9, "ja", "Japanese", []string{"転送", "リダイレクト"}, map[string]Namespace{
		"カテゴリ": Category, "ファイル": File, "画像": File, "Template": Template,
		"利用者": User, "ノート": Talk, "ヘルプ": Help, "特別": Special,
	}),
	newLanguage(10, "pt", "Portuguese", []string{"REDIRECIONAMENTO"}, map[string]Namespace{
		"Categoria": Category, "Ficheiro": File, "Arquivo": File, "Predefinição": Template,
		"Usuário": User, "Utilizador": User, "Discussão": Talk, "Ajuda": Help, "Especial": Special,
	}),
	newLanguage(11, "simple", "Simple English", nil, nil),
)

// ByCode looks up code in the default registry.
func ByCode(code string) (*Language, error) {
	return Default.ByCode(code)
}

// ByID looks up id in the default registry.
func ByID(id ID) (*Language, error) {
	return Default.ByID(id)
}

// MustByCode is ByCode for codes known at compile time.
func MustByCode(code string) *Language {
	l, err := ByCode(code)
	if err != nil {
		panic(err)
	}
	return l
}

// String returns the wiki code for id, or "lang(<id>)" if it is unknown.
func (id ID) String() string {
	if l, err := ByID(id); err == nil {
		return l.Code
	}
	return fmt.Sprintf("lang(%d)", int16(id))
}
