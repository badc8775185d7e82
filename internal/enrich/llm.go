package enrich

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"

	"github.com/panjf2000/ants/v2"
	"github.com/tmc/langchaingo/llms"
)

const insightsTop = 10

var scorePattern = regexp.MustCompile(`SCORE:\s*(\d+)`)

// LLM asks a language model for a 0..100 score per record, one request per
// record, and for a prose market summary of the best ten.
type LLM struct {
	model   llms.Model
	name    string
	workers int
}

func NewLLM(name string, model llms.Model, workers int) *LLM {
	if workers <= 0 {
		workers = 1
	}
	return &LLM{model: model, name: name, workers: workers}
}

func (l *LLM) Name() string { return l.name }

// Enrich scores every record on an ants pool. Records whose request failed
// or whose reply carries no score are left out; the error reports the first
// such failure. Once ctx ends no new requests start, so a cancelled Enrich
// returns the scores finished so far.
func (l *LLM) Enrich(ctx context.Context, recs []domain.JobRecord, c domain.SearchCriteria) (Result, error) {
	pool, err := ants.NewPool(l.workers)
	if err != nil {
		return Result{}, fmt.Errorf("enrich pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		scores   = make(map[string]float64, len(recs))
		firstErr error
	)
	record := func(key string, s float64, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		scores[key] = s
	}

	for _, r := range recs {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				record("", 0, err)
				return
			}
			s, err := l.score(ctx, r, c)
			if err != nil {
				err = fmt.Errorf("%q at %q: %w", r.Title, r.Company, err)
			}
			record(r.Key(), s, err)
		})
		if err != nil {
			wg.Done()
			record("", 0, fmt.Errorf("submit: %w", err))
		}
	}
	wg.Wait()

	insights, err := l.insights(ctx, recs, c)
	if err != nil {
		log.Printf("[enrich] insights failed: %v", err)
	}
	return Result{Scores: scores, Insights: insights}, firstErr
}

var errNoScore = errors.New("reply has no SCORE line")

func (l *LLM) score(ctx context.Context, r domain.JobRecord, c domain.SearchCriteria) (float64, error) {
	text, err := l.generate(ctx, scorePrompt(r, c))
	if err != nil {
		return 0, err
	}
	return ParseScore(text)
}

func (l *LLM) insights(ctx context.Context, recs []domain.JobRecord, c domain.SearchCriteria) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := l.generate(ctx, insightsPrompt(recs, c))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (l *LLM) generate(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}
	resp, err := l.model.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("no choices returned from model")
	}
	return resp.Choices[0].Content, nil
}

// ParseScore reads the first "SCORE: n" of reply, case-insensitively.
func ParseScore(reply string) (float64, error) {
	m := scorePattern.FindStringSubmatch(strings.ToUpper(reply))
	if m == nil {
		return 0, errNoScore
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("score %q: %w", m[1], err)
	}
	return float64(n), nil
}

func scorePrompt(r domain.JobRecord, c domain.SearchCriteria) string {
	var b strings.Builder
	b.WriteString("Analyze this job posting for relevance to the search criteria.\n\n")
	b.WriteString("Job Details:\n")
	fmt.Fprintf(&b, "- Title: %s\n", r.Title)
	fmt.Fprintf(&b, "- Company: %s\n", r.Company)
	fmt.Fprintf(&b, "- Location: %s\n", r.Location)
	fmt.Fprintf(&b, "- Summary: %s\n", util.Clip(r.Summary, 500))
	if r.HasSalary() {
		fmt.Fprintf(&b, "- Salary: %s (numeric: $%.0f)\n", r.Salary, r.SalaryNumeric)
	} else {
		fmt.Fprintf(&b, "- Salary: %s\n", r.Salary)
	}
	b.WriteString("\nSearch Criteria:\n")
	fmt.Fprintf(&b, "- Keywords: %s\n", strings.Join(c.Keywords, ", "))
	fmt.Fprintf(&b, "- Location: %s\n", c.Location)
	b.WriteString(`
Rate the long-term career value of this opportunity from 0 to 100. Consider skill
match, location fit, career level, company reputation, salary competitiveness and
growth potential. Salaries of $120k or more and published salaries deserve credit.

Reply in this format:
SCORE: [0-100]
REASONING: [one short paragraph]
`)
	return b.String()
}

func insightsPrompt(recs []domain.JobRecord, c domain.SearchCriteria) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these job search results for %q in %q.\n", c.Term, c.Location)
	fmt.Fprintf(&b, "Jobs analyzed: %d\n\nTop jobs:\n", len(recs))
	for i, r := range recs {
		if i == insightsTop {
			break
		}
		fmt.Fprintf(&b, "- %s at %s (Score: %d, Location: %s, Salary: %s)\n", r.Title, r.Company, r.RelevanceScore, r.Location, r.Salary)
	}
	b.WriteString(`
Provide short sections on:
1. MARKET_TRENDS
2. SALARY_ANALYSIS
3. SKILL_REQUIREMENTS
4. LOCATION_INSIGHTS
5. COMPANY_ANALYSIS
6. CAREER_ADVICE
`)
	return b.String()
}
