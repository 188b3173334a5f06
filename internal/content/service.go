package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/taiwoajasa245/confession-api/internal/generation"
)

const (
	DateLayout = "2006-01-02"

	defaultRecentLimit = 7
	maxRecentLimit     = 60

	// generateTimeout bounds a shared generation run once the caller that
	// started it has gone away.
	generateTimeout = 3 * time.Minute
)

var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// Generator is the slice of the generation pipeline the service drives.
type Generator interface {
	GenerateVerse(ctx context.Context, mem *generation.Memory) (generation.Verse, error)
	GenerateConfession(ctx context.Context, mem *generation.Memory, verse generation.Verse) (generation.Confession, error)
	GenerateTopicVerses(ctx context.Context, topic string, count int, existing []string) ([]generation.Verse, error)
	GenerateTopicConfessions(ctx context.Context, topic string, count int, exclusions []string) ([]generation.Confession, error)
	GenerateReadingPlan(ctx context.Context, topic string, days int) (generation.Plan, error)
}

type Service struct {
	repo   Repository
	gen    Generator
	mem    *generation.Memory
	loc    *time.Location
	now    func() time.Time
	group  singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, gen Generator, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		gen:    gen,
		mem:    generation.NewMemory(),
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// Today is the current calendar date in the configured timezone.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// EnsureTodaysContent returns today's content, generating and storing it
// first if no row exists. Concurrent callers in this process share one
// generation run; across processes the conditional insert keeps a single
// row and every caller returns whichever row won.
func (s *Service) EnsureTodaysContent(ctx context.Context) (*DailyContent, error) {
	date := s.Today()
	return s.shared(ctx, "ensure:"+date, func(ctx context.Context) (*DailyContent, error) {
		existing, err := s.repo.GetByDate(ctx, date)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		c, err := s.generate(ctx, date)
		if err != nil {
			return nil, err
		}

		inserted, err := s.repo.InsertIfAbsent(ctx, c)
		if err != nil {
			return nil, err
		}
		if !inserted {
			s.logger.Info("daily content was stored by another writer", zap.String("date", date))
		} else {
			s.logger.Info("generated daily content", zap.String("date", date), zap.String("reference", c.Reference))
		}
		return s.repo.GetByDate(ctx, date)
	})
}

// ForceRegenerate generates new content for today and replaces any
// existing row.
func (s *Service) ForceRegenerate(ctx context.Context) (*DailyContent, error) {
	date := s.Today()
	return s.shared(ctx, "regenerate:"+date, func(ctx context.Context) (*DailyContent, error) {
		c, err := s.generate(ctx, date)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Upsert(ctx, c); err != nil {
			return nil, err
		}
		s.logger.Info("regenerated daily content", zap.String("date", date), zap.String("reference", c.Reference))
		return s.repo.GetByDate(ctx, date)
	})
}

// shared runs fn once per key for all concurrent callers. fn runs on a
// context detached from the first caller so a dropped request does not
// fail the others; each caller still stops waiting when its own ctx ends.
func (s *Service) shared(ctx context.Context, key string, fn func(context.Context) (*DailyContent, error)) (*DailyContent, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
		defer cancel()
		return fn(runCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*DailyContent), nil
	}
}

func (s *Service) generate(ctx context.Context, date string) (*DailyContent, error) {
	verse, err := s.gen.GenerateVerse(ctx, s.mem)
	if err != nil {
		return nil, err
	}
	confession, err := s.gen.GenerateConfession(ctx, s.mem, verse)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.SaveVerse(ctx, verse); err != nil {
		return nil, err
	}
	if _, err := s.repo.SaveConfession(ctx, confession, verse.Reference); err != nil {
		return nil, err
	}

	return &DailyContent{
		Date:            date,
		VerseText:       verse.Text,
		Reference:       verse.Reference,
		Translation:     verse.Translation,
		ConfessionTitle: confession.Title,
		ConfessionText:  confession.Text,
	}, nil
}

func (s *Service) GetByDate(ctx context.Context, date string) (*DailyContent, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	return s.repo.GetByDate(ctx, date)
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]DailyContent, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	limit = min(limit, maxRecentLimit)
	return s.repo.ListRecent(ctx, limit)
}

func (s *Service) DeleteByDate(ctx context.Context, date string) error {
	if err := validateDate(date); err != nil {
		return err
	}
	return s.repo.DeleteByDate(ctx, date)
}

// GenerateVerses runs a batch verse request and stores every survivor.
func (s *Service) GenerateVerses(ctx context.Context, req GenerateVersesRequest) ([]StoredVerse, error) {
	verses, err := s.gen.GenerateTopicVerses(ctx, req.Topic, req.Count, req.Existing)
	if err != nil {
		return nil, err
	}

	out := make([]StoredVerse, 0, len(verses))
	for _, v := range verses {
		sv, err := s.repo.SaveVerse(ctx, v)
		if err != nil {
			return nil, err
		}
		out = append(out, *sv)
	}
	return out, nil
}

// GenerateConfessions runs a batch confession request and stores every
// survivor.
func (s *Service) GenerateConfessions(ctx context.Context, req GenerateConfessionsRequest) ([]StoredConfession, error) {
	confessions, err := s.gen.GenerateTopicConfessions(ctx, req.Topic, req.Count, req.Exclusions)
	if err != nil {
		return nil, err
	}

	out := make([]StoredConfession, 0, len(confessions))
	for _, c := range confessions {
		sc, err := s.repo.SaveConfession(ctx, c, "")
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, nil
}

func (s *Service) CreateReadingPlan(ctx context.Context, req CreatePlanRequest) (*ReadingPlan, error) {
	plan, err := s.gen.GenerateReadingPlan(ctx, req.Topic, req.DurationDays)
	if err != nil {
		return nil, err
	}
	return s.repo.SavePlan(ctx, plan)
}

func (s *Service) GetReadingPlan(ctx context.Context, id string) (*ReadingPlan, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	return s.repo.GetPlan(ctx, id)
}

func validateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}
