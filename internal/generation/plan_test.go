package generation

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taiwoajasa245/confession-api/internal/scripture"
)

func TestPartitionBook_Romans(t *testing.T) {
	want := []ChapterSpan{{1, 4}, {5, 8}, {9, 12}, {13, 16}}
	if diff := cmp.Diff(want, PartitionBook(16, 4)); diff != "" {
		t.Errorf("PartitionBook(16, 4) mismatch (-want +got):\n%s", diff)
	}
}

func TestPartitionBook_CoversEveryChapter(t *testing.T) {
	for _, book := range scripture.Books() {
		n := book.Chapters
		for _, d := range []int{1, 2, 3, 7, 30, n} {
			if d > n {
				continue
			}
			spans := PartitionBook(n, d)
			require.Len(t, spans, d, "%s over %d days", book.Name, d)

			next := 1
			for i, s := range spans {
				require.Equal(t, next, s.Start, "%s day %d starts after a gap or overlap", book.Name, i+1)
				require.GreaterOrEqual(t, s.End, s.Start)
				next = s.End + 1
			}
			require.Equal(t, n+1, next, "%s over %d days must end at chapter %d", book.Name, d, n)
		}
	}
}

func TestPartitionBook_MoreDaysThanChapters(t *testing.T) {
	spans := PartitionBook(4, 6)
	require.Len(t, spans, 6)

	want := []ChapterSpan{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {4, 4}, {4, 4}}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Errorf("PartitionBook(4, 6) mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []ChapterSpan{{1, 1}, {1, 1}, {1, 1}}, PartitionBook(1, 3))
	assert.Nil(t, PartitionBook(0, 3))
	assert.Nil(t, PartitionBook(3, 0))
}

func TestGenerateReadingPlan_BookStudyOverwritesReferences(t *testing.T) {
	reply := `{"title": "Romans Deep Dive", "description": "Four weeks in Romans", "days": [
		{"day": 1, "title": "All have sinned", "references": ["Genesis 1"], "devotional": "Grace meets us."},
		{"day": 2, "title": "Justified", "references": ["Exodus 3"], "devotional": "Peace with God."},
		{"day": 4, "references": ["Revelation 22"], "devotional": "Living sacrifices."}
	]}`
	c := &fakeCompleter{replies: []string{reply}}
	p := newTestPipeline(t, c, &fakeStore{})

	plan, err := p.GenerateReadingPlan(context.Background(), "the book of Romans", 4)
	require.NoError(t, err)

	assert.Equal(t, PlanModeBook, plan.Mode)
	assert.Equal(t, "Romans Deep Dive", plan.Title)
	assert.Equal(t, 4, plan.DurationDays)
	require.Len(t, plan.Days, 4)

	var refs []string
	for _, d := range plan.Days {
		refs = append(refs, d.References...)
		assert.True(t, d.Verified)
	}
	assert.Equal(t, []string{"Romans 1-4", "Romans 5-8", "Romans 9-12", "Romans 13-16"}, refs)

	assert.Equal(t, "All have sinned", plan.Days[0].Title)
	assert.Equal(t, "Romans 9-12", plan.Days[2].Title, "days the model skipped fall back to the reading")
	assert.Empty(t, plan.Days[2].Devotional)
	assert.Equal(t, "Living sacrifices.", plan.Days[3].Devotional)

	require.Len(t, c.prompts, 1)
	for _, ref := range refs {
		assert.Contains(t, c.prompts[0], ref)
	}
}

func TestGenerateReadingPlan_ThematicFlagsUnverifiedDays(t *testing.T) {
	reply := `{"title": "Walking in Faith", "days": [
		{"day": 1, "title": "Substance", "references": ["Hebrews 11:1-6"], "devotional": "Faith is..."},
		{"day": 2, "title": "Invented", "references": ["Romans 8", "Hezekiah 3:4"]},
		{"day": 3, "reference": "Jude 4"},
		{"day": 4, "title": "Out of range", "references": ["Romans 17"]}
	]}`
	p := newTestPipeline(t, &fakeCompleter{replies: []string{reply}}, &fakeStore{})

	plan, err := p.GenerateReadingPlan(context.Background(), "faith", 3)
	require.NoError(t, err)

	assert.Equal(t, PlanModeThematic, plan.Mode)
	require.Len(t, plan.Days, 3, "extra days are dropped")

	verified := make([]bool, len(plan.Days))
	for i, d := range plan.Days {
		verified[i] = d.Verified
	}
	assert.Equal(t, []bool{true, false, true}, verified)
	assert.Equal(t, []string{"Jude 4"}, plan.Days[2].References)
	assert.Equal(t, "Day 3", plan.Days[2].Title)
}

func TestGenerateReadingPlan_InvalidRequests(t *testing.T) {
	c := &fakeCompleter{replies: []string{`{}`}}
	p := newTestPipeline(t, c, &fakeStore{})

	for _, tc := range []struct {
		topic string
		days  int
	}{
		{"", 7},
		{"Romans", 0},
		{"Romans", MaxPlanDays + 1},
	} {
		t.Run(fmt.Sprintf("%q/%d", tc.topic, tc.days), func(t *testing.T) {
			_, err := p.GenerateReadingPlan(context.Background(), tc.topic, tc.days)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
	assert.Zero(t, c.calls())
}
