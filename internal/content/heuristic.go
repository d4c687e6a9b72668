package content

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/trustlens/internal/model"
)

var (
	sensationalWords = []string{
		"shocking", "unbelievable", "outrageous", "devastating", "horrific",
		"stunning", "massive", "explosive", "breaking", "bombshell",
	}
	emotionalWords = []string{
		"terrifying", "furious", "outraged", "heartbreaking", "tragic",
		"horrible", "nightmare", "crisis", "disaster",
	}
	clickbaitPhrases = []struct {
		phrase string
		weight int
	}{
		{"what happens next", 30},
		{"you won't believe", 40},
		{"this is why", 20},
		{"will shock you", 35},
	}
	citationPhrases = []string{
		"according to", "reported", "study", "research", "officials", "data from",
		"published in", "journal", "university", "institute", "statement", "confirmed",
	}

	listicleRe = regexp.MustCompile(`(?i)\d+\s+(reasons|ways|things|facts|secrets|tips)`)
)

// Heuristic scores content without a model. Output depends only on the input.
func Heuristic(in Input) model.ContentSignals {
	title := in.Title
	titleLower := strings.ToLower(title)

	body := in.FullText
	if body == "" {
		body = in.Excerpt
	}
	if body == "" {
		body = title
	}
	body = strings.ToLower(body)

	sensationalism, emotional, clickbait, bias, evidence := 30, 30, 30, 40, 50

	for _, w := range sensationalWords {
		if strings.Contains(titleLower, w) {
			sensationalism += 15
		}
	}
	for _, w := range emotionalWords {
		if strings.Contains(titleLower, w) {
			emotional += 15
		}
	}
	for _, c := range clickbaitPhrases {
		if strings.Contains(titleLower, c.phrase) {
			clickbait += c.weight
		}
	}
	if listicleRe.MatchString(title) {
		clickbait += 25
	}

	bangs := strings.Count(title, "!")
	sensationalism += bangs * 15
	emotional += bangs * 15

	if hasShoutedWord(title) {
		sensationalism += 10
	}

	citations := 0
	for _, p := range citationPhrases {
		citations += strings.Count(body, p)
	}
	switch {
	case citations >= 5:
		evidence -= 30
	case citations >= 3:
		evidence -= 20
	case citations >= 1:
		evidence -= 10
	default:
		evidence += 20
	}

	if strings.Contains(body, "anonymous") || strings.Contains(body, "unnamed source") {
		evidence += 15
		bias += 10
	}
	if strings.Contains(body, "however") || strings.Contains(body, "on the other hand") || strings.Contains(body, "meanwhile") {
		bias -= 15
	}

	return model.ContentSignals{
		Sensationalism:        clamp(sensationalism),
		EmotionalManipulation: clamp(emotional),
		ClickbaitProbability:  clamp(clickbait),
		BiasIndicators:        clamp(bias),
		EvidenceLack:          clamp(evidence),
	}
}

// hasShoutedWord reports an all-caps word of at least four letters
func hasShoutedWord(title string) bool {
	for _, word := range strings.FieldsFunc(title, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if len([]rune(word)) < 4 {
			continue
		}
		shouted := true
		for _, r := range word {
			if !unicode.IsUpper(r) {
				shouted = false
				break
			}
		}
		if shouted {
			return true
		}
	}
	return false
}
