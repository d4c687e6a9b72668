package content

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ppiankov/trustlens/internal/llm"
	"github.com/ppiankov/trustlens/internal/model"
)

const (
	minFullTextForPrompt = 200
	minExcerptForPrompt  = 50
)

const systemPrompt = "You rate news articles for credibility risk. Reply with numbers only."

var numberRe = regexp.MustCompile(`\d+`)

// BuildPrompt renders the five-metric rating prompt with bounded article text
func BuildPrompt(in Input, fullBudget, excerptBudget int) string {
	return fmt.Sprintf(`Rate this news article on 5 metrics (0-100 each). Return ONLY 5 numbers separated by commas.

Title: %s
Text: %s

Metrics (0=best,100=worst):
1 sensationalism
2 emotional manipulation
3 clickbait
4 bias
5 lack of evidence

Format: 30,20,45,25,40`, in.Title, promptText(in, fullBudget, excerptBudget))
}

func promptText(in Input, fullBudget, excerptBudget int) string {
	if len([]rune(in.FullText)) > minFullTextForPrompt {
		return truncate(in.FullText, fullBudget)
	}
	text := in.Title
	if len([]rune(in.Excerpt)) > minExcerptForPrompt {
		text = in.Excerpt
	}
	return truncate(text, excerptBudget)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ParseSignals reads the first five integers of a model reply
func ParseSignals(text string) (model.ContentSignals, error) {
	tokens := numberRe.FindAllString(text, 5)
	if len(tokens) < 5 {
		return model.ContentSignals{}, fmt.Errorf("%w: expected 5 integers, found %d", llm.ErrMalformedResponse, len(tokens))
	}

	v := make([]int, 5)
	for i, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil {
			// overflowing digit runs
			v[i] = 50
			continue
		}
		v[i] = clamp(n)
	}

	return model.ContentSignals{
		Sensationalism:        v[0],
		EmotionalManipulation: v[1],
		ClickbaitProbability:  v[2],
		BiasIndicators:        v[3],
		EvidenceLack:          v[4],
	}, nil
}
