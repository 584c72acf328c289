// Package language normalizes locale tags and decides when a translation
// call can be skipped.
package language

import (
	"strings"

	textlang "golang.org/x/text/language"
)

// English is the canonical code translation is skipped for.
const English = "en"

var codeMap = map[string]string{
	"en-US": "en",
	"en":    "en",
	"hi-IN": "hi",
	"hi":    "hi",
	"bn-IN": "bn",
	"bn":    "bn",
	"te-IN": "te",
	"te":    "te",
	"ta-IN": "ta",
	"ta":    "ta",
	"gu-IN": "gu",
	"gu":    "gu",
	"kn-IN": "kn",
	"kn":    "kn",
	"ml-IN": "ml",
	"ml":    "ml",
	"mr-IN": "mr",
	"mr":    "mr",
	"pa-IN": "pa",
	"pa":    "pa",
	"or-IN": "or",
	"or":    "or",
	"as-IN": "as",
	"as":    "as",
	"ur-IN": "ur",
	"ur":    "ur",
}

// Canonicalize maps a locale tag such as "hi-IN" to its two-letter code.
// Tags outside the table pass through lower-cased and cut at the first
// hyphen, so legacy codes like "tl" or "iw" reach the backend as sent.
func Canonicalize(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if code, ok := codeMap[tag]; ok {
		return code
	}
	code := strings.ToLower(tag)
	if i := strings.IndexByte(code, '-'); i >= 0 {
		code = code[:i]
	}
	return code
}

// Valid reports whether tag is a well-formed locale identifier.
func Valid(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	if _, ok := codeMap[tag]; ok {
		return true
	}
	_, err := textlang.Parse(tag)
	return err == nil
}

var englishWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
		"you", "i", "a", "an", "is", "are", "was", "were", "be", "been", "have", "has",
		"had", "do", "does", "did", "will", "would", "could", "should", "may", "might",
		"can", "this", "that", "these", "those",
		// conversational words short UI strings consist of
		"hello", "hi", "yes", "no", "please", "thanks", "thank", "my", "me", "it", "not",
	} {
		englishWords[w] = struct{}{}
	}
}

// englishThreshold is the share of stop words above which text is treated as
// English.
const englishThreshold = 0.3

// IsLikelyEnglish reports whether more than 30% of the whitespace-separated
// words of text are common English function words. Empty text is not English.
func IsLikelyEnglish(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return false
	}
	matches := 0
	for _, w := range words {
		if _, ok := englishWords[w]; ok {
			matches++
		}
	}
	return float64(matches)/float64(len(words)) > englishThreshold
}
