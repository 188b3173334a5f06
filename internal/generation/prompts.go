package generation

import (
	"fmt"
	"strings"
)

const (
	verseSystemPrompt = "You are a careful Bible scholar. You only ever quote real scripture, word for word, " +
		"in the translation you are asked for. You reply with JSON only, no commentary."

	confessionSystemPrompt = "You write short faith confessions: first person, present tense, rooted in the exact " +
		"wording of a Bible verse. You reply with JSON only, no commentary."

	planSystemPrompt = "You design Bible reading plans with short devotionals. You reply with JSON only, no commentary."

	// How many recent references/styles are listed as exclusions in prompts.
	recentReferencesInPrompt = 10
	recentStylesInPrompt     = 5
)

func versePrompt(theme, translation string, avoid []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Give me one Bible verse about %q from the %s translation.\n", theme, translation)
	fmt.Fprintf(&b, "Quote the verse exactly as it appears in the %s. Do not paraphrase and do not invent verses.\n", translation)
	writeExclusions(&b, "Do not use any of these references", avoid)
	b.WriteString("Respond with a single JSON object with exactly these fields:\n")
	b.WriteString(`{"text": string, "reference": string, "book": string, "chapter": number, "verse": number, "translation": string, "theme": string}`)
	return b.String()
}

func confessionPrompt(v Verse, style string, avoidStyles []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Verse (%s, %s): %q\n", v.Reference, v.Translation, v.Text)
	fmt.Fprintf(&b, "Write a confession in the style of a %s.\n", style)
	b.WriteString("It must reuse key phrases from the verse directly, be in the first person and present tense, and be one or two sentences long.\n")
	writeExclusions(&b, "Avoid sounding like these recent styles", avoidStyles)
	b.WriteString("Respond with a single JSON object with exactly these fields:\n")
	b.WriteString(`{"title": string, "text": string, "style": string}`)
	return b.String()
}

func topicVersesPrompt(topic, translation string, count int, existing []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Give me %d different Bible verses about %q from the %s translation.\n", count, topic, translation)
	b.WriteString("Quote every verse exactly. Do not paraphrase and do not invent verses.\n")
	writeExclusions(&b, "Do not include any of these", existing)
	b.WriteString("Respond with a JSON array where every element has exactly these fields:\n")
	b.WriteString(`{"text": string, "reference": string, "book": string, "chapter": number, "verse": number, "translation": string, "theme": string}`)
	return b.String()
}

func topicConfessionsPrompt(topic string, count int, exclusions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d different faith confessions about %q.\n", count, topic)
	b.WriteString("Each must be first person, present tense, one or two sentences, and grounded in scripture.\n")
	writeExclusions(&b, "Do not repeat any of these", exclusions)
	b.WriteString("Respond with a JSON array where every element has exactly these fields:\n")
	b.WriteString(`{"title": string, "text": string, "style": string}`)
	return b.String()
}

func bookPlanPrompt(book string, days []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-day reading plan through the book of %s.\n", len(days), book)
	b.WriteString("The readings are fixed; write a short title and a devotional of two or three sentences for each day:\n")
	for i, ref := range days {
		fmt.Fprintf(&b, "Day %d: %s\n", i+1, ref)
	}
	b.WriteString("Respond with a single JSON object with exactly these fields:\n")
	b.WriteString(`{"title": string, "description": string, "days": [{"day": number, "title": string, "references": [string], "devotional": string}]}`)
	return b.String()
}

func thematicPlanPrompt(topic string, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-day Bible reading plan on the topic %q.\n", days, topic)
	b.WriteString("For each day pick one to three real passages written like \"John 3:16-18\" or \"Romans 8\", a short title and a devotional of two or three sentences.\n")
	b.WriteString("Respond with a single JSON object with exactly these fields:\n")
	b.WriteString(`{"title": string, "description": string, "days": [{"day": number, "title": string, "references": [string], "devotional": string}]}`)
	return b.String()
}

func writeExclusions(b *strings.Builder, lead string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s.\n", lead, strings.Join(items, "; "))
}
