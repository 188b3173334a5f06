package generation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taiwoajasa245/confession-api/internal/llm"
)

const (
	// MaxBatchCount caps how many items one batch request may ask for.
	MaxBatchCount = 20

	duplicateCheckConcurrency = 4
)

// GenerateTopicVerses requests count verses on topic in one backend call and
// drops any that are already stored or listed in existing (by reference or
// text). Dropped items are not replaced, so fewer than count may come back.
func (p *Pipeline) GenerateTopicVerses(ctx context.Context, topic string, count int, existing []string) ([]Verse, error) {
	topic = strings.TrimSpace(topic)
	if err := checkBatch(topic, count); err != nil {
		return nil, err
	}

	translation := p.pick(p.vocab.Translations)
	raw, err := p.llm.Complete(ctx, verseSystemPrompt, topicVersesPrompt(topic, translation, count, existing))
	if err != nil {
		return nil, fmt.Errorf("generate topic verses: %w", err)
	}

	replies, err := llm.DecodeList[verseReply](raw)
	if err != nil {
		return nil, fmt.Errorf("generate topic verses: %w", err)
	}

	excluded := foldSet(existing)
	candidates := make([]Verse, 0, len(replies))
	for _, r := range replies {
		v := r.toVerse(topic, translation)
		if excluded[fold(v.Reference)] || excluded[fold(v.Text)] {
			continue
		}
		excluded[fold(v.Reference)] = true
		candidates = append(candidates, v)
	}

	keep, err := filterDuplicates(ctx, candidates, func(ctx context.Context, v Verse) (bool, error) {
		return p.store.VerseExists(ctx, v.Text)
	})
	if err != nil {
		return nil, fmt.Errorf("check verse duplicates: %w", err)
	}

	p.logger.Info("generated topic verses",
		zap.String("topic", topic),
		zap.Int("requested", count),
		zap.Int("returned", len(replies)),
		zap.Int("kept", len(keep)),
	)
	return keep, nil
}

// GenerateTopicConfessions is the confession counterpart of
// GenerateTopicVerses; exclusions are confession texts to avoid.
func (p *Pipeline) GenerateTopicConfessions(ctx context.Context, topic string, count int, exclusions []string) ([]Confession, error) {
	topic = strings.TrimSpace(topic)
	if err := checkBatch(topic, count); err != nil {
		return nil, err
	}

	raw, err := p.llm.Complete(ctx, confessionSystemPrompt, topicConfessionsPrompt(topic, count, exclusions))
	if err != nil {
		return nil, fmt.Errorf("generate topic confessions: %w", err)
	}

	replies, err := llm.DecodeList[confessionReply](raw)
	if err != nil {
		return nil, fmt.Errorf("generate topic confessions: %w", err)
	}

	excluded := foldSet(exclusions)
	candidates := make([]Confession, 0, len(replies))
	for _, r := range replies {
		c := r.toConfession("")
		if excluded[fold(c.Text)] {
			continue
		}
		excluded[fold(c.Text)] = true
		candidates = append(candidates, c)
	}

	keep, err := filterDuplicates(ctx, candidates, func(ctx context.Context, c Confession) (bool, error) {
		return p.store.ConfessionExists(ctx, c.Text)
	})
	if err != nil {
		return nil, fmt.Errorf("check confession duplicates: %w", err)
	}

	p.logger.Info("generated topic confessions",
		zap.String("topic", topic),
		zap.Int("requested", count),
		zap.Int("returned", len(replies)),
		zap.Int("kept", len(keep)),
	)
	return keep, nil
}

// filterDuplicates runs isDup for every item concurrently and returns the
// items that are not duplicates, in their original order.
func filterDuplicates[T any](ctx context.Context, items []T, isDup func(context.Context, T) (bool, error)) ([]T, error) {
	dup := make([]bool, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(duplicateCheckConcurrency)
	for i, item := range items {
		g.Go(func() error {
			d, err := isDup(gctx, item)
			if err != nil {
				return err
			}
			dup[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		if !dup[i] {
			out = append(out, item)
		}
	}
	return out, nil
}

func checkBatch(topic string, count int) error {
	if topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	}
	if count < 1 || count > MaxBatchCount {
		return fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidRequest, MaxBatchCount)
	}
	return nil
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func foldSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		if f := fold(it); f != "" {
			set[f] = true
		}
	}
	return set
}
