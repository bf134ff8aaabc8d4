// Package jokeapi is a client for the JokeAPI v2 HTTP API
// (https://v2.jokeapi.dev). It builds request URLs from structured
// options, issues GETs and maps the JSON responses into Joke values.
package jokeapi

import "strings"

// Category is a joke category. The declaration order is the order
// categories are rendered in the request path.
type Category int

const (
	CategoryMisc Category = iota
	CategoryProgramming
	CategoryDark
	CategoryPun
	CategorySpooky
	CategoryChristmas
)

var categoryNames = [...]string{
	CategoryMisc:        "Misc",
	CategoryProgramming: "Programming",
	CategoryDark:        "Dark",
	CategoryPun:         "Pun",
	CategorySpooky:      "Spooky",
	CategoryChristmas:   "Christmas",
}

var categoriesByName = map[string]Category{
	"Misc":        CategoryMisc,
	"Programming": CategoryProgramming,
	"Dark":        CategoryDark,
	"Pun":         CategoryPun,
	"Spooky":      CategorySpooky,
	"Christmas":   CategoryChristmas,
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return categoryNames[CategoryMisc]
	}
	return categoryNames[c]
}

// ParseCategory matches a category name exactly (case-sensitive).
func ParseCategory(name string) (Category, bool) {
	c, ok := categoriesByName[name]
	return c, ok
}

// parseCategoryOrMisc is the response-side mapping: the API only ever
// sends the known names, so anything else collapses to Misc.
func parseCategoryOrMisc(name string) Category {
	if c, ok := categoriesByName[name]; ok {
		return c
	}
	return CategoryMisc
}

// Language is a joke language. English is the API default and is never
// sent explicitly; Unknown covers codes this client does not know.
type Language int

const (
	LanguageEnglish Language = iota
	LanguageCzech
	LanguageGerman
	LanguageSpanish
	LanguageFrench
	LanguagePortuguese
	LanguageUnknown
)

var languageCodes = [...]string{
	LanguageEnglish:    "en",
	LanguageCzech:      "cs",
	LanguageGerman:     "de",
	LanguageSpanish:    "es",
	LanguageFrench:     "fr",
	LanguagePortuguese: "pt",
	LanguageUnknown:    "",
}

var languagesByCode = map[string]Language{
	"en": LanguageEnglish,
	"cs": LanguageCzech,
	"de": LanguageGerman,
	"es": LanguageSpanish,
	"fr": LanguageFrench,
	"pt": LanguagePortuguese,
}

// Code returns the two-letter ISO code, or "" for Unknown.
func (l Language) Code() string {
	if l < 0 || int(l) >= len(languageCodes) {
		return ""
	}
	return languageCodes[l]
}

// ParseLanguage maps a two-letter code to a Language. Unrecognized
// codes (including the empty string) map to Unknown.
func ParseLanguage(code string) Language {
	if l, ok := languagesByCode[code]; ok {
		return l
	}
	return LanguageUnknown
}

// Flags is a bit set of content warnings. On the request side it is the
// blacklist; on the response side it describes what a joke contains.
type Flags uint8

const (
	FlagNsfw Flags = 1 << iota
	FlagReligious
	FlagPolitical
	FlagRacist
	FlagSexist
	FlagExplicit
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagNsfw, "nsfw"},
	{FlagReligious, "religious"},
	{FlagPolitical, "political"},
	{FlagRacist, "racist"},
	{FlagSexist, "sexist"},
	{FlagExplicit, "explicit"},
}

// Has reports whether every flag in other is set.
func (f Flags) Has(other Flags) bool {
	return f&other == other
}

// String renders the set as a comma-joined list of API flag names in
// declaration order.
func (f Flags) String() string {
	var names []string
	for _, e := range flagNames {
		if f&e.flag != 0 {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseFlags parses a comma-joined list of flag names, skipping names
// it does not recognize.
func ParseFlags(s string) Flags {
	var f Flags
	for _, name := range strings.Split(s, ",") {
		for _, e := range flagNames {
			if e.name == strings.TrimSpace(name) {
				f |= e.flag
			}
		}
	}
	return f
}

// JokeType filters the response shape. TypeAny requests both shapes.
type JokeType int

const (
	TypeAny JokeType = iota
	TypeSingle
	TypeTwoPart
)

func (t JokeType) apiValue() string {
	switch t {
	case TypeSingle:
		return "single"
	case TypeTwoPart:
		return "twopart"
	default:
		return ""
	}
}

// IDRange bounds joke ids, inclusive on both ends. A range with
// Min > Max is ignored by the encoder.
type IDRange struct {
	Min int
	Max int
}

// Options selects what kind of jokes to fetch. The zero value asks for
// any joke in any category.
type Options struct {
	Categories []Category
	Language   Language
	Blacklist  Flags
	Type       JokeType
	Contains   string
	IDRange    *IDRange
	Safe       bool
}

// Content is the body of a joke: either a Single one-liner or a
// TwoPart setup/delivery pair.
type Content interface {
	isContent()
	String() string
}

// Single is a one-line joke.
type Single struct {
	Text string
}

func (Single) isContent() {}

func (s Single) String() string {
	return s.Text
}

// TwoPart is a joke split into a setup and a delivery.
type TwoPart struct {
	Setup    string
	Delivery string
}

func (TwoPart) isContent() {}

func (t TwoPart) String() string {
	return t.Setup + "\n\n" + t.Delivery
}

// Joke is a single result returned by the API.
type Joke struct {
	ID       int
	Category Category
	Content  Content
	Flags    Flags
	Safe     bool
	Lang     Language
}
