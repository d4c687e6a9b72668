package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/trustlens/internal/model"
)

// Assessor scores one article URL
type Assessor interface {
	AssessURL(ctx context.Context, rawURL string) (*model.AssessResult, error)
}

// Item is the outcome of assessing one URL in a batch
type Item struct {
	URL      string
	Result   *model.AssessResult
	Error    error
	Duration time.Duration
}

// errNotRun marks items skipped because the batch was cancelled
var errNotRun = errors.New("not assessed: batch cancelled")

// BatchProcessor assesses many URLs concurrently
type BatchProcessor struct {
	assessor    Assessor
	concurrency int
	itemTimeout time.Duration
}

// NewBatchProcessor creates a batch processor. A zero itemTimeout means
// each URL runs until the batch context ends.
func NewBatchProcessor(assessor Assessor, concurrency int, itemTimeout time.Duration) *BatchProcessor {
	return &BatchProcessor{
		assessor:    assessor,
		concurrency: concurrency,
		itemTimeout: itemTimeout,
	}
}

// ProcessURLs assesses urls and returns one item per URL, in input order
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*Item {
	if len(urls) == 0 {
		return []*Item{}
	}

	pool := NewPool[*Item](ctx, b.concurrency)
	pool.Start()

	for _, u := range urls {
		pool.Submit(b.task(u))
	}

	done := pool.Wait()

	items := make([]*Item, len(urls))
	for i, u := range urls {
		if i < len(done) && done[i] != nil {
			items[i] = done[i]
			continue
		}
		items[i] = &Item{URL: u, Error: errNotRun}
	}

	return items
}

func (b *BatchProcessor) task(rawURL string) Task[*Item] {
	return func(ctx context.Context) *Item {
		if b.itemTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.itemTimeout)
			defer cancel()
		}

		start := time.Now()
		result, err := b.assessor.AssessURL(ctx, rawURL)
		return &Item{
			URL:      rawURL,
			Result:   result,
			Error:    err,
			Duration: time.Since(start),
		}
	}
}

// ProcessFile reads URLs from a file and assesses them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*Item, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// Summary aggregates a batch run
type Summary struct {
	Total     int                     `json:"total"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
	FromCache int                     `json:"fromCache"`
	ByRisk    map[model.RiskLevel]int `json:"byRisk"`
	MeanScore float64                 `json:"meanScore"`
}

// Summarize counts outcomes and risk levels across items
func Summarize(items []*Item) Summary {
	s := Summary{
		Total:  len(items),
		ByRisk: make(map[model.RiskLevel]int),
	}

	var scoreSum int
	for _, item := range items {
		if item.Error != nil || item.Result == nil || item.Result.Assessment == nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		if item.Result.FromCache {
			s.FromCache++
		}
		a := item.Result.Assessment
		s.ByRisk[a.RiskLevel]++
		scoreSum += a.FinalScore
	}

	if s.Succeeded > 0 {
		s.MeanScore = float64(scoreSum) / float64(s.Succeeded)
	}

	return s
}

// ReadURLsFromFile reads URLs from a file (one per line)
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
