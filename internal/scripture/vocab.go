// Package scripture holds the static reference data used when generating and
// validating content: the canonical book table, translations, themes,
// confession styles and the verses served when generation gives up.
package scripture

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed vocab.yaml
var vocabYAML []byte

// Book is one canonical book of the Protestant canon.
type Book struct {
	Name     string   `yaml:"name"`
	Chapters int      `yaml:"chapters"`
	Aliases  []string `yaml:"aliases"`
}

// Verse is a fully specified verse, used for the fallback pool.
type Verse struct {
	Text        string `yaml:"text"`
	Reference   string `yaml:"reference"`
	Book        string `yaml:"book"`
	Chapter     int    `yaml:"chapter"`
	Verse       int    `yaml:"verse"`
	Translation string `yaml:"translation"`
	Theme       string `yaml:"theme"`
}

// Vocabulary is the parsed contents of vocab.yaml.
type Vocabulary struct {
	Translations   []string `yaml:"translations"`
	Themes         []string `yaml:"themes"`
	Styles         []string `yaml:"styles"`
	FallbackVerses []Verse  `yaml:"fallback_verses"`
	Books          []Book   `yaml:"books"`

	byKey map[string]*Book
}

func parseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}

	v.byKey = make(map[string]*Book, len(v.Books)*2)
	for i := range v.Books {
		b := &v.Books[i]
		if b.Chapters <= 0 {
			return nil, fmt.Errorf("book %q has no chapters", b.Name)
		}
		for _, name := range append([]string{b.Name}, b.Aliases...) {
			key := NormalizeBook(name)
			if other, ok := v.byKey[key]; ok && other != b {
				return nil, fmt.Errorf("book key %q is claimed by %q and %q", key, other.Name, b.Name)
			}
			v.byKey[key] = b
		}
	}

	if len(v.Translations) == 0 || len(v.Themes) == 0 || len(v.Styles) == 0 || len(v.FallbackVerses) == 0 {
		return nil, fmt.Errorf("vocabulary is incomplete")
	}
	return &v, nil
}

var defaultVocabulary = sync.OnceValue(func() *Vocabulary {
	v, err := parseVocabulary(vocabYAML)
	if err != nil {
		panic(err)
	}
	return v
})

// Default returns the embedded vocabulary.
func Default() *Vocabulary {
	return defaultVocabulary()
}

// Translations returns the supported translation codes.
func Translations() []string { return clone(Default().Translations) }

// Themes returns the theme vocabulary.
func Themes() []string { return clone(Default().Themes) }

// Styles returns the confession style vocabulary.
func Styles() []string { return clone(Default().Styles) }

// FallbackVerses returns the verses served when generation is exhausted.
func FallbackVerses() []Verse {
	out := make([]Verse, len(Default().FallbackVerses))
	copy(out, Default().FallbackVerses)
	return out
}

// Books returns the canonical book table in canonical order.
func Books() []Book {
	out := make([]Book, len(Default().Books))
	copy(out, Default().Books)
	return out
}

// IsTranslation reports whether code is one of the supported translations.
func IsTranslation(code string) bool {
	for _, t := range Default().Translations {
		if t == code {
			return true
		}
	}
	return false
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
