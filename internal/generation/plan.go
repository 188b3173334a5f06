package generation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/taiwoajasa245/confession-api/internal/llm"
	"github.com/taiwoajasa245/confession-api/internal/scripture"
)

// MaxPlanDays caps the length of a reading plan.
const MaxPlanDays = 365

type PlanMode string

const (
	// PlanModeBook walks one book with precomputed chapter ranges.
	PlanModeBook PlanMode = "book"
	// PlanModeThematic lets the model choose passages for a topic.
	PlanModeThematic PlanMode = "thematic"
)

type PlanDay struct {
	Day        int      `json:"day"`
	Title      string   `json:"title"`
	References []string `json:"references"`
	Devotional string   `json:"devotional"`
	// Verified is true when every reference names a real book and chapter.
	Verified bool `json:"verified"`
}

type Plan struct {
	Topic        string    `json:"topic"`
	Mode         PlanMode  `json:"mode"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DurationDays int       `json:"duration_days"`
	Days         []PlanDay `json:"days"`
}

// ChapterSpan is an inclusive range of chapters.
type ChapterSpan struct {
	Start int
	End   int
}

// PartitionBook spreads chapters 1..chapters over days. Day i ends at
// round(i*chapters/days), never before it starts, so no chapter is skipped
// and ranges never overlap. When there are more days than chapters the
// trailing days repeat the final chapter.
func PartitionBook(chapters, days int) []ChapterSpan {
	if chapters < 1 || days < 1 {
		return nil
	}

	spans := make([]ChapterSpan, 0, days)
	prevEnd := 0
	for i := 1; i <= days; i++ {
		start := prevEnd + 1
		if start > chapters {
			spans = append(spans, ChapterSpan{Start: chapters, End: chapters})
			continue
		}

		end := int(math.Round(float64(i*chapters) / float64(days)))
		end = max(end, start)
		end = min(end, chapters)

		spans = append(spans, ChapterSpan{Start: start, End: end})
		prevEnd = end
	}
	return spans
}

type planReply struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Days        []planDayReply `json:"days"`
}

type planDayReply struct {
	Day        llm.FlexInt `json:"day"`
	Title      string      `json:"title"`
	References []string    `json:"references"`
	Reference  string      `json:"reference"`
	Devotional string      `json:"devotional"`
}

func (r planReply) Validate() error {
	if len(r.Days) == 0 {
		return errors.New("plan has no days")
	}
	return nil
}

func (d planDayReply) refs() []string {
	var out []string
	for _, ref := range slices.Concat(d.References, []string{d.Reference}) {
		if ref = strings.TrimSpace(ref); ref != "" {
			out = append(out, ref)
		}
	}
	return out
}

// GenerateReadingPlan builds a plan of days entries for topic. A topic that
// names a book of the Bible gets deterministic chapter ranges and the
// model's references are discarded; any other topic is thematic and each
// model-chosen reference is checked against the canonical book table.
func (p *Pipeline) GenerateReadingPlan(ctx context.Context, topic string, days int) (Plan, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Plan{}, fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	}
	if days < 1 || days > MaxPlanDays {
		return Plan{}, fmt.Errorf("%w: duration must be between 1 and %d days", ErrInvalidRequest, MaxPlanDays)
	}

	if book, ok := scripture.LookupBook(topic); ok {
		return p.bookPlan(ctx, topic, book, days)
	}
	return p.thematicPlan(ctx, topic, days)
}

func (p *Pipeline) bookPlan(ctx context.Context, topic string, book scripture.Book, days int) (Plan, error) {
	spans := PartitionBook(book.Chapters, days)
	refs := make([]string, len(spans))
	for i, s := range spans {
		refs[i] = scripture.ChapterRange(book.Name, s.Start, s.End)
	}

	raw, err := p.llm.Complete(ctx, planSystemPrompt, bookPlanPrompt(book.Name, refs))
	if err != nil {
		return Plan{}, fmt.Errorf("generate reading plan: %w", err)
	}
	reply, err := llm.DecodeObject[planReply](raw)
	if err != nil {
		return Plan{}, fmt.Errorf("generate reading plan: %w", err)
	}

	byDay := make(map[int]planDayReply, len(reply.Days))
	for i, d := range reply.Days {
		n := int(d.Day)
		if n == 0 {
			n = i + 1
		}
		byDay[n] = d
	}

	plan := Plan{
		Topic:        topic,
		Mode:         PlanModeBook,
		Title:        orDefault(reply.Title, fmt.Sprintf("%s in %d days", book.Name, days)),
		Description:  strings.TrimSpace(reply.Description),
		DurationDays: days,
		Days:         make([]PlanDay, days),
	}
	for i, ref := range refs {
		d := byDay[i+1]
		plan.Days[i] = PlanDay{
			Day:        i + 1,
			Title:      orDefault(d.Title, ref),
			References: []string{ref},
			Devotional: strings.TrimSpace(d.Devotional),
			Verified:   true,
		}
	}
	return plan, nil
}

func (p *Pipeline) thematicPlan(ctx context.Context, topic string, days int) (Plan, error) {
	raw, err := p.llm.Complete(ctx, planSystemPrompt, thematicPlanPrompt(topic, days))
	if err != nil {
		return Plan{}, fmt.Errorf("generate reading plan: %w", err)
	}
	reply, err := llm.DecodeObject[planReply](raw)
	if err != nil {
		return Plan{}, fmt.Errorf("generate reading plan: %w", err)
	}

	if len(reply.Days) != days {
		p.logger.Warn("model returned a different number of plan days",
			zap.String("topic", topic),
			zap.Int("requested", days),
			zap.Int("returned", len(reply.Days)),
		)
	}

	n := min(len(reply.Days), days)
	plan := Plan{
		Topic:        topic,
		Mode:         PlanModeThematic,
		Title:        orDefault(reply.Title, topic),
		Description:  strings.TrimSpace(reply.Description),
		DurationDays: days,
		Days:         make([]PlanDay, n),
	}
	unverified := 0
	for i := 0; i < n; i++ {
		d := reply.Days[i]
		refs := d.refs()
		verified := verifyReferences(refs)
		if !verified {
			unverified++
		}
		plan.Days[i] = PlanDay{
			Day:        i + 1,
			Title:      orDefault(d.Title, fmt.Sprintf("Day %d", i+1)),
			References: refs,
			Devotional: strings.TrimSpace(d.Devotional),
			Verified:   verified,
		}
	}
	if unverified > 0 {
		p.logger.Warn("reading plan has unverified references",
			zap.String("topic", topic),
			zap.Int("days", unverified),
		)
	}
	return plan, nil
}

// verifyReferences reports whether refs is non-empty and every entry parses
// to a known book with chapters in range.
func verifyReferences(refs []string) bool {
	if len(refs) == 0 {
		return false
	}
	for _, s := range refs {
		ref, err := scripture.ParseReference(s)
		if err != nil || ref.Validate() != nil {
			return false
		}
	}
	return true
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
