package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// EntityKind classifies a named entity found in a headline
type EntityKind string

const (
	KindPerson       EntityKind = "person"
	KindPlace        EntityKind = "place"
	KindOrganization EntityKind = "organization"
	KindOther        EntityKind = "other"
)

// Entity is a named span pulled from a title
type Entity struct {
	Text string     `json:"text"`
	Kind EntityKind `json:"kind"`
}

// Terms holds the entities and keywords of a title, in title order
type Terms struct {
	Entities []Entity `json:"entities"`
	Keywords []string `json:"keywords"`
}

// Texts returns entity texts followed by keywords
func (t Terms) Texts() []string {
	out := make([]string, 0, len(t.Entities)+len(t.Keywords))
	for _, e := range t.Entities {
		out = append(out, e.Text)
	}
	return append(out, t.Keywords...)
}

const (
	maxKeywords   = 5
	minKeywordLen = 4
)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "been": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "he": true, "her": true, "his": true, "how": true,
	"in": true, "into": true, "is": true, "it": true, "its": true, "new": true,
	"of": true, "on": true, "or": true, "over": true, "says": true, "she": true,
	"that": true, "the": true, "their": true, "them": true, "they": true,
	"this": true, "to": true, "up": true, "was": true, "what": true, "when": true,
	"where": true, "which": true, "who": true, "why": true, "will": true,
	"with": true, "after": true, "about": true, "before": true, "could": true,
	"should": true, "would": true, "there": true, "these": true, "those": true,
	"than": true, "then": true, "just": true, "more": true, "most": true,
	"amid": true, "against": true, "also": true, "during": true, "here": true,
	"said": true, "your": true, "you": true, "were": true, "being": true,
}

var orgSuffixes = map[string]bool{
	"inc": true, "corp": true, "corporation": true, "ltd": true, "llc": true,
	"plc": true, "co": true, "company": true, "group": true, "bank": true,
	"party": true, "council": true, "ministry": true, "department": true,
	"university": true, "agency": true, "association": true, "institute": true,
	"commission": true, "committee": true, "court": true, "foundation": true,
	"union": true, "senate": true, "parliament": true, "congress": true,
	"police": true, "army": true, "fund": true, "organization": true,
	"organisation": true, "federation": true, "board": true, "times": true,
	"post": true, "news": true,
}

var places = map[string]bool{
	"afghanistan": true, "africa": true, "america": true, "amazon": true,
	"asia": true, "australia": true, "beijing": true, "berlin": true,
	"brazil": true, "britain": true, "california": true, "canada": true,
	"chicago": true, "china": true, "delhi": true, "egypt": true,
	"england": true, "europe": true, "france": true, "gaza": true,
	"germany": true, "india": true, "iran": true, "iraq": true, "israel": true,
	"italy": true, "japan": true, "kenya": true, "kyiv": true, "london": true,
	"los angeles": true, "mexico": true, "moscow": true, "mumbai": true,
	"new delhi": true, "new york": true, "nigeria": true, "pakistan": true,
	"paris": true, "russia": true, "saudi arabia": true, "scotland": true,
	"south africa": true, "south korea": true, "north korea": true,
	"spain": true, "syria": true, "taiwan": true, "texas": true, "tokyo": true,
	"turkey": true, "ukraine": true, "united kingdom": true,
	"united states": true, "washington": true, "wales": true,
}

// acronyms that name places rather than organizations
var placeAcronyms = map[string]bool{"US": true, "USA": true, "UK": true, "UAE": true, "EU": true}

type token struct {
	text  string
	start bool // first word of the title or of a clause
}

// ExtractTerms finds named entities and up to five keywords in a title.
// Capitalized runs are entities unless the title is written in title case,
// in which case only acronyms, known places and organization names count.
func ExtractTerms(title string) Terms {
	tokens := tokenize(title)
	if len(tokens) == 0 {
		return Terms{}
	}

	titleCase := isTitleCase(tokens)

	var terms Terms
	used := make(map[int]bool)
	seen := make(map[string]bool)

	add := func(text string, kind EntityKind) {
		key := strings.ToLower(text)
		if seen[key] {
			return
		}
		seen[key] = true
		terms.Entities = append(terms.Entities, Entity{Text: text, Kind: kind})
	}

	for i := 0; i < len(tokens); {
		// Two-word places first, then single words
		if i+1 < len(tokens) && places[strings.ToLower(tokens[i].text+" "+tokens[i+1].text)] && isCapitalized(tokens[i].text) {
			add(tokens[i].text+" "+tokens[i+1].text, KindPlace)
			used[i], used[i+1] = true, true
			i += 2
			continue
		}

		tok := tokens[i].text
		switch {
		case isAcronym(tok):
			kind := KindOrganization
			if placeAcronyms[tok] {
				kind = KindPlace
			}
			add(tok, kind)
			used[i] = true
			i++
			continue
		case places[strings.ToLower(tok)] && isCapitalized(tok):
			add(tok, KindPlace)
			used[i] = true
			i++
			continue
		}

		if !isCapitalized(tok) || stopWords[strings.ToLower(tok)] {
			i++
			continue
		}

		// Collect a capitalized run
		j := i
		for j < len(tokens) && isCapitalized(tokens[j].text) && !isAcronym(tokens[j].text) &&
			!places[strings.ToLower(tokens[j].text)] && !stopWords[strings.ToLower(tokens[j].text)] {
			j++
			if j < len(tokens) && tokens[j].start {
				break
			}
		}
		if j == i {
			i++
			continue
		}

		run := tokens[i:j]
		words := make([]string, len(run))
		for k, t := range run {
			words[k] = t.text
		}
		text := strings.Join(words, " ")
		last := strings.ToLower(words[len(words)-1])

		switch {
		case orgSuffixes[last] && len(words) > 1:
			add(text, KindOrganization)
		case titleCase:
			// Capitalization carries no signal in title-case headlines
			i = j
			continue
		case len(words) >= 2:
			add(text, KindPerson)
		case !tokens[i].start:
			add(text, KindOther)
		default:
			i = j
			continue
		}

		for k := i; k < j; k++ {
			used[k] = true
		}
		i = j
	}

	kwSeen := make(map[string]bool)
	for i, t := range tokens {
		if used[i] || len(terms.Keywords) >= maxKeywords {
			continue
		}
		lower := strings.ToLower(t.text)
		if len(lower) < minKeywordLen || stopWords[lower] || kwSeen[lower] || !hasLetter(lower) {
			continue
		}
		kwSeen[lower] = true
		terms.Keywords = append(terms.Keywords, lower)
	}

	return terms
}

// tokenize splits a title into words, trimming punctuation and marking
// words that start a clause
func tokenize(title string) []token {
	var tokens []token
	start := true
	for _, field := range strings.Fields(title) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		// Possessives: "Biden's" -> "Biden"
		word = strings.TrimSuffix(strings.TrimSuffix(word, "'s"), "’s")

		if word != "" {
			tokens = append(tokens, token{text: word, start: start})
			start = false
		}

		switch field[len(field)-1] {
		case ':', '.', '!', '?', ';', '|':
			start = true
		}
		if field == "-" || field == "–" || field == "—" {
			start = true
		}
	}
	return tokens
}

func isTitleCase(tokens []token) bool {
	var content, capped int
	for _, t := range tokens {
		if stopWords[strings.ToLower(t.text)] || !hasLetter(t.text) {
			continue
		}
		content++
		if isCapitalized(t.text) {
			capped++
		}
	}
	return content >= 3 && capped*10 >= content*8
}

func isCapitalized(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

func isAcronym(word string) bool {
	letters := 0
	for _, r := range word {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		} else if !unicode.IsDigit(r) {
			return false
		}
	}
	return letters >= 2 && len(word) <= 6
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
