package extract

import (
	"math"
	"regexp"
	"strings"

	"github.com/ppiankov/trustlens/internal/model"
)

// referenceIndicators are attribution phrases counted in article text
var referenceIndicators = []string{
	"according to",
	"reported by",
	"sources say",
	"study shows",
	"research found",
	"data from",
	"officials said",
	"spokesman said",
	"statement",
	"confirmed by",
	"published in",
	"journal",
	"university",
	"institute",
	"agency",
	"government",
	"citing",
}

// headWindow is how much of the text is searched for a byline and dateline
const headWindow = 500

var (
	authorPattern   = regexp.MustCompile(`\b(?:[Bb]y|BY)\s+[A-Z][a-z]+\s+[A-Z][a-z]+`)
	datePattern     = regexp.MustCompile(`(?i)\d{4}|\d{1,2}/\d{1,2}/\d{2,4}|january|february|march|april|may|june|july|august|september|october|november|december`)
	quotePattern    = regexp.MustCompile(`["“][\w\s,.!?'’-]+["”]`)
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
)

// References counts attribution phrases in text
func References(text string) model.References {
	lower := strings.ToLower(text)

	refs := model.References{}
	for _, indicator := range referenceIndicators {
		if n := strings.Count(lower, indicator); n > 0 {
			refs.Count += n
			refs.Indicators = append(refs.Indicators, indicator)
		}
	}
	refs.Found = refs.Count > 0

	return refs
}

// Metadata derives structural hints from article text. Byline and dateline
// are only looked for near the top.
func Metadata(text string) model.ArticleMetadata {
	if strings.TrimSpace(text) == "" {
		return model.ArticleMetadata{}
	}

	head := text
	if len(head) > headWindow {
		head = head[:headWindow]
	}

	return model.ArticleMetadata{
		HasAuthor:             authorPattern.MatchString(head),
		HasDate:               datePattern.MatchString(head),
		QuoteCount:            len(quotePattern.FindAllString(text, -1)),
		ParagraphCount:        strings.Count(text, "\n\n") + 1,
		AverageSentenceLength: AverageSentenceLength(text),
		WordCount:             WordCount(text),
		ReferenceCount:        References(text).Count,
	}
}

// AverageSentenceLength returns the mean number of words per sentence, rounded
func AverageSentenceLength(text string) int {
	var sentences, words int
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if n := len(strings.Fields(s)); n > 0 {
			sentences++
			words += n
		}
	}
	if sentences == 0 {
		return 0
	}
	return int(math.Round(float64(words) / float64(sentences)))
}

// WordCount counts whitespace-separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}
