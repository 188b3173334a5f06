// Package generation builds prompts for the text backend, decodes its replies
// and keeps generated verses and confessions from repeating stored content.
package generation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taiwoajasa245/confession-api/internal/llm"
	"github.com/taiwoajasa245/confession-api/internal/scripture"
)

// MaxAttempts bounds backend calls for a single verse or confession.
const MaxAttempts = 3

// DuplicateChecker reports whether text, or its first 50 characters, is
// already stored.
type DuplicateChecker interface {
	VerseExists(ctx context.Context, text string) (bool, error)
	ConfessionExists(ctx context.Context, text string) (bool, error)
}

type Pipeline struct {
	llm    llm.Completer
	store  DuplicateChecker
	vocab  *scripture.Vocabulary
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Pipeline)

// WithRand fixes the random source, for reproducible tests.
func WithRand(r *rand.Rand) Option {
	return func(p *Pipeline) { p.rng = r }
}

// WithVocabulary replaces the embedded vocabulary.
func WithVocabulary(v *scripture.Vocabulary) Option {
	return func(p *Pipeline) { p.vocab = v }
}

func NewPipeline(completer llm.Completer, store DuplicateChecker, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		llm:    completer,
		store:  store,
		vocab:  scripture.Default(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0xc0ffee))
	}
	return p
}

func (p *Pipeline) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[p.intn(len(options))]
}

// GenerateVerse asks the backend for a verse on an unused theme. Duplicates
// and malformed replies are retried up to MaxAttempts backend calls, after
// which one of the built-in fallback verses is returned instead of an error.
// A vocabulary without fallback verses yields ErrDuplicateContent instead.
// Configuration, rate-limit, backend and store errors are returned as is.
func (p *Pipeline) GenerateVerse(ctx context.Context, mem *Memory) (Verse, error) {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		theme := p.pick(mem.UnusedThemes(p.vocab.Themes))
		mem.MarkTheme(theme)
		translation := p.pick(p.vocab.Translations)

		prompt := versePrompt(theme, translation, mem.RecentReferences(recentReferencesInPrompt))
		raw, err := p.llm.Complete(ctx, verseSystemPrompt, prompt)
		if err != nil {
			return Verse{}, fmt.Errorf("generate verse: %w", err)
		}

		reply, err := llm.DecodeObject[verseReply](raw)
		if err != nil {
			p.logger.Warn("verse reply could not be decoded",
				zap.Int("attempt", attempt),
				zap.String("theme", theme),
				zap.Error(err),
			)
			continue
		}
		verse := reply.toVerse(theme, translation)

		dup, err := p.store.VerseExists(ctx, verse.Text)
		if err != nil {
			return Verse{}, fmt.Errorf("check verse duplicate: %w", err)
		}
		mem.MarkReference(verse.Reference)
		if dup {
			p.logger.Info("generated verse already stored, retrying",
				zap.Int("attempt", attempt),
				zap.String("reference", verse.Reference),
			)
			continue
		}

		mem.Trim()
		return verse, nil
	}

	fallbacks := p.vocab.FallbackVerses
	if len(fallbacks) == 0 {
		return Verse{}, fmt.Errorf("generate verse after %d attempts: %w", MaxAttempts, ErrDuplicateContent)
	}
	verse := fromFallback(fallbacks[p.intn(len(fallbacks))])
	p.logger.Warn("verse attempts exhausted, serving fallback",
		zap.Int("attempts", MaxAttempts),
		zap.String("reference", verse.Reference),
	)
	mem.MarkReference(verse.Reference)
	mem.Trim()
	return verse, nil
}

// GenerateConfession writes a confession from verse in an unused style.
// Duplicate or malformed replies are retried with a fresh style draw, up to
// MaxAttempts backend calls. There is no fallback: exhaustion returns
// ErrDuplicateContent, or the last decode error if the replies never parsed.
func (p *Pipeline) GenerateConfession(ctx context.Context, mem *Memory, verse Verse) (Confession, error) {
	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		style := p.pick(mem.UnusedStyles(p.vocab.Styles))
		avoid := slices.DeleteFunc(mem.RecentStyles(recentStylesInPrompt), func(s string) bool { return s == style })
		mem.MarkStyle(style)

		prompt := confessionPrompt(verse, style, avoid)
		raw, err := p.llm.Complete(ctx, confessionSystemPrompt, prompt)
		if err != nil {
			return Confession{}, fmt.Errorf("generate confession: %w", err)
		}

		reply, err := llm.DecodeObject[confessionReply](raw)
		if err != nil {
			p.logger.Warn("confession reply could not be decoded",
				zap.Int("attempt", attempt),
				zap.String("style", style),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		confession := reply.toConfession(style)

		dup, err := p.store.ConfessionExists(ctx, confession.Text)
		if err != nil {
			return Confession{}, fmt.Errorf("check confession duplicate: %w", err)
		}
		if dup {
			p.logger.Info("generated confession already stored, retrying",
				zap.Int("attempt", attempt),
				zap.String("style", style),
			)
			lastErr = ErrDuplicateContent
			continue
		}

		mem.Trim()
		return confession, nil
	}

	if errors.Is(lastErr, llm.ErrMalformedResponse) {
		return Confession{}, fmt.Errorf("generate confession after %d attempts: %w", MaxAttempts, lastErr)
	}
	return Confession{}, fmt.Errorf("generate confession after %d attempts: %w", MaxAttempts, ErrDuplicateContent)
}

func (p *Pipeline) intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}
