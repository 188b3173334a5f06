package generation

import (
	"errors"
	"strings"

	"github.com/taiwoajasa245/confession-api/internal/llm"
	"github.com/taiwoajasa245/confession-api/internal/scripture"
)

var (
	// ErrDuplicateContent is returned when every attempt produced content
	// already in the store.
	ErrDuplicateContent = errors.New("generated content duplicates stored content")
	// ErrInvalidRequest covers out-of-range counts, durations and empty topics.
	ErrInvalidRequest = errors.New("invalid generation request")
)

// Verse is a scripture quotation produced by the backend.
type Verse struct {
	Text        string `json:"text"`
	Reference   string `json:"reference"`
	Book        string `json:"book"`
	Chapter     int    `json:"chapter"`
	Verse       int    `json:"verse"`
	Translation string `json:"translation"`
	Theme       string `json:"theme"`
}

// Confession is a first-person declaration derived from one verse.
type Confession struct {
	Text  string `json:"text"`
	Title string `json:"title"`
	Style string `json:"style"`
}

type verseReply struct {
	Text        string      `json:"text"`
	Reference   string      `json:"reference"`
	Book        string      `json:"book"`
	Chapter     llm.FlexInt `json:"chapter"`
	Verse       llm.FlexInt `json:"verse"`
	Translation string      `json:"translation"`
	Theme       string      `json:"theme"`
}

func (r verseReply) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return errors.New("verse text is required")
	}
	if strings.TrimSpace(r.Reference) == "" {
		return errors.New("verse reference is required")
	}
	return nil
}

// toVerse fills gaps the model left: the requested translation (also used
// when the reply names one we do not offer), the theme, and book/chapter/verse
// parsed from the reference.
func (r verseReply) toVerse(theme, translation string) Verse {
	v := Verse{
		Text:        strings.TrimSpace(r.Text),
		Reference:   strings.TrimSpace(r.Reference),
		Book:        strings.TrimSpace(r.Book),
		Chapter:     int(r.Chapter),
		Verse:       int(r.Verse),
		Translation: strings.ToUpper(strings.TrimSpace(r.Translation)),
		Theme:       strings.TrimSpace(r.Theme),
	}
	if !scripture.IsTranslation(v.Translation) {
		v.Translation = translation
	}
	if v.Theme == "" {
		v.Theme = theme
	}
	if ref, err := scripture.ParseReference(v.Reference); err == nil {
		if v.Book == "" {
			v.Book = ref.Book
		}
		if v.Chapter == 0 {
			v.Chapter = ref.StartChapter
		}
		if v.Verse == 0 {
			v.Verse = ref.StartVerse
		}
	}
	return v
}

type confessionReply struct {
	Text  string `json:"text"`
	Title string `json:"title"`
	Style string `json:"style"`
}

func (r confessionReply) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return errors.New("confession text is required")
	}
	return nil
}

func (r confessionReply) toConfession(style string) Confession {
	c := Confession{
		Text:  strings.TrimSpace(r.Text),
		Title: strings.TrimSpace(r.Title),
		Style: strings.TrimSpace(r.Style),
	}
	if c.Style == "" {
		c.Style = style
	}
	return c
}

func fromFallback(fv scripture.Verse) Verse {
	return Verse{
		Text:        fv.Text,
		Reference:   fv.Reference,
		Book:        fv.Book,
		Chapter:     fv.Chapter,
		Verse:       fv.Verse,
		Translation: fv.Translation,
		Theme:       fv.Theme,
	}
}
