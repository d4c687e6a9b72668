package model

import "time"

// Article is a search hit returned by a news search provider
type Article struct {
	URI         string    `json:"uri,omitempty"` // Provider-side identifier, if any
	Title       string    `json:"title"`
	SourceName  string    `json:"sourceName"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt,omitempty"`
}

// SimilarArticleMatch is a corroborating article found during verification
type SimilarArticleMatch struct {
	Title           string    `json:"title"`
	SourceName      string    `json:"sourceName"`
	URL             string    `json:"url"`
	SimilarityScore float64   `json:"similarityScore"` // Dice coefficient, 0..1
	PublishedAt     time.Time `json:"publishedAt,omitempty"`
}

// References summarizes attribution phrases found in article text
type References struct {
	Found      bool     `json:"found"`
	Count      int      `json:"count"`
	Indicators []string `json:"indicators,omitempty"`
}

// ArticleMetadata holds structural hints scraped from the full article text
type ArticleMetadata struct {
	HasAuthor             bool `json:"hasAuthor"`
	HasDate               bool `json:"hasDate"`
	QuoteCount            int  `json:"quoteCount"`
	ParagraphCount        int  `json:"paragraphCount"`
	AverageSentenceLength int  `json:"averageSentenceLength"`
	WordCount             int  `json:"wordCount"`
	ReferenceCount        int  `json:"referenceCount"`
	ExternalLinks         int  `json:"externalLinks"`
}

// FullText is the result of a successful full-article fetch
type FullText struct {
	URL         string          `json:"url"`
	FinalURL    string          `json:"finalUrl"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	SiteName    string          `json:"siteName,omitempty"`
	Text        string          `json:"-"`
	WordCount   int             `json:"wordCount"`
	References  References      `json:"references"`
	Metadata    ArticleMetadata `json:"metadata"`
}
