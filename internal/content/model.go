package content

import (
	"time"

	"github.com/taiwoajasa245/confession-api/internal/generation"
)

// DailyContent is the verse and confession shared by everyone on one date.
type DailyContent struct {
	ID              string    `db:"id" json:"id"`
	Date            string    `db:"date" json:"date"`
	VerseText       string    `db:"verse_text" json:"verse_text"`
	Reference       string    `db:"reference" json:"reference"`
	Translation     string    `db:"translation" json:"translation"`
	ConfessionTitle string    `db:"confession_title" json:"confession_title"`
	ConfessionText  string    `db:"confession_text" json:"confession_text"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type StoredVerse struct {
	ID          string    `db:"id" json:"id"`
	Text        string    `db:"text" json:"text"`
	Reference   string    `db:"reference" json:"reference"`
	Book        string    `db:"book" json:"book"`
	Chapter     int       `db:"chapter" json:"chapter"`
	Verse       int       `db:"verse" json:"verse"`
	Translation string    `db:"translation" json:"translation"`
	Theme       string    `db:"theme" json:"theme"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type StoredConfession struct {
	ID             string    `db:"id" json:"id"`
	Text           string    `db:"text" json:"text"`
	Title          string    `db:"title" json:"title"`
	Style          string    `db:"style" json:"style"`
	VerseReference string    `db:"verse_reference" json:"verse_reference,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type ReadingPlan struct {
	ID           string               `json:"id"`
	Topic        string               `json:"topic"`
	Mode         generation.PlanMode  `json:"mode"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	DurationDays int                  `json:"duration_days"`
	Days         []generation.PlanDay `json:"days"`
	CreatedAt    time.Time            `json:"created_at"`
}

// planRow is ReadingPlan as stored: days are a JSON document.
type planRow struct {
	ID           string    `db:"id"`
	Topic        string    `db:"topic"`
	Mode         string    `db:"mode"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	DurationDays int       `db:"duration_days"`
	Days         string    `db:"days"`
	CreatedAt    time.Time `db:"created_at"`
}

type GenerateVersesRequest struct {
	Topic    string   `json:"topic"`
	Count    int      `json:"count"`
	Existing []string `json:"existing"`
}

type GenerateConfessionsRequest struct {
	Topic      string   `json:"topic"`
	Count      int      `json:"count"`
	Exclusions []string `json:"exclusions"`
}

type CreatePlanRequest struct {
	Topic        string `json:"topic"`
	DurationDays int    `json:"duration_days"`
}
