package scripture

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidReference  = errors.New("invalid scripture reference")
	ErrUnknownBook       = errors.New("unknown book")
	ErrChapterOutOfRange = errors.New("chapter out of range")
)

// book, start chapter, optional start verse, optional end (chapter or verse),
// optional end verse.
var referencePattern = regexp.MustCompile(
	`^\s*((?:[1-3]\s*)?[A-Za-z][A-Za-z.' ]*?)\.?\s*(\d+)(?:\s*:\s*(\d+))?(?:\s*[-–]\s*(\d+)(?:\s*:\s*(\d+))?)?\s*$`,
)

// Reference is a parsed passage such as "John 3:16", "Romans 1-4" or
// "Genesis 1:1-2:3". Verse fields are zero when the passage covers whole
// chapters.
type Reference struct {
	Book         string
	StartChapter int
	StartVerse   int
	EndChapter   int
	EndVerse     int
}

// ParseReference parses a human-written passage reference and resolves the
// book to its canonical name. The chapter range is not checked; see Validate.
func ParseReference(s string) (Reference, error) {
	m := referencePattern.FindStringSubmatch(s)
	if m == nil {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
	}

	book, ok := LookupBook(m[1])
	if !ok {
		return Reference{}, fmt.Errorf("%w: %q", ErrUnknownBook, strings.TrimSpace(m[1]))
	}

	// Single-chapter books are cited by verse alone: "Jude 4", "Philemon 8-10".
	if book.Chapters == 1 && m[3] == "" && m[5] == "" {
		start := atoi(m[2])
		end := start
		if m[4] != "" {
			end = atoi(m[4])
		}
		return Reference{Book: book.Name, StartChapter: 1, StartVerse: start, EndChapter: 1, EndVerse: end}, nil
	}

	ref := Reference{Book: book.Name, StartChapter: atoi(m[2]), StartVerse: atoi(m[3])}
	ref.EndChapter, ref.EndVerse = ref.StartChapter, ref.StartVerse

	switch {
	case m[4] == "":
	case m[5] != "":
		ref.EndChapter, ref.EndVerse = atoi(m[4]), atoi(m[5])
	case m[3] != "":
		// "John 3:16-18" continues within the chapter.
		ref.EndVerse = atoi(m[4])
	default:
		ref.EndChapter = atoi(m[4])
	}
	return ref, nil
}

// Validate checks the reference against the canonical chapter counts.
func (r Reference) Validate() error {
	book, ok := LookupBook(r.Book)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBook, r.Book)
	}
	if r.StartChapter < 1 || r.StartChapter > book.Chapters {
		return fmt.Errorf("%w: %s has %d chapters, got %d", ErrChapterOutOfRange, book.Name, book.Chapters, r.StartChapter)
	}
	if r.EndChapter < r.StartChapter || r.EndChapter > book.Chapters {
		return fmt.Errorf("%w: %s has %d chapters, got %d-%d", ErrChapterOutOfRange, book.Name, book.Chapters, r.StartChapter, r.EndChapter)
	}
	if r.EndChapter == r.StartChapter && r.EndVerse < r.StartVerse {
		return fmt.Errorf("%w: verse range ends before it starts", ErrInvalidReference)
	}
	return nil
}

// String renders the reference in its canonical form.
func (r Reference) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d", r.Book, r.StartChapter)
	if r.StartVerse > 0 {
		fmt.Fprintf(&b, ":%d", r.StartVerse)
	}

	switch {
	case r.EndChapter == r.StartChapter && r.EndVerse == r.StartVerse:
	case r.EndChapter == r.StartChapter:
		fmt.Fprintf(&b, "-%d", r.EndVerse)
	case r.EndVerse > 0:
		fmt.Fprintf(&b, "-%d:%d", r.EndChapter, r.EndVerse)
	default:
		fmt.Fprintf(&b, "-%d", r.EndChapter)
	}
	return b.String()
}

// ChapterRange formats a whole-chapter passage, collapsing single chapters.
func ChapterRange(book string, start, end int) string {
	if start == end {
		return fmt.Sprintf("%s %d", book, start)
	}
	return fmt.Sprintf("%s %d-%d", book, start, end)
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
