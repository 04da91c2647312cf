// Package matcher 以关键词重叠的启发式方法为简历文本匹配在招职位。
package matcher

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"talento/internal/model"

	"github.com/rs/zerolog"
)

// Config 匹配阈值。
type Config struct {
	MinFound   int `yaml:"min_found" json:"min_found"`
	MinOverall int `yaml:"min_overall" json:"min_overall"`
	MinSkills  int `yaml:"min_skills" json:"min_skills"`
	Limit      int `yaml:"limit" json:"limit"`
}

func (c Config) withDefaults() Config {
	if c.MinFound <= 0 {
		c.MinFound = 50
	}
	if c.MinOverall <= 0 {
		c.MinOverall = 65
	}
	if c.MinSkills <= 0 {
		c.MinSkills = 60
	}
	if c.Limit <= 0 {
		c.Limit = 10
	}
	return c
}

// JobSource 提供参与匹配的职位。
type JobSource interface {
	ListActiveJobs(ctx context.Context) ([]model.Job, error)
}

// MatchedJob 匹配结果中的职位摘要。
type MatchedJob struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Company      MatchedCompany `json:"company"`
	Location     string         `json:"location"`
	Salary       string         `json:"salary,omitempty"`
	Requirements string         `json:"requirements"`
}

type MatchedCompany struct {
	Name string `json:"name"`
}

// Match 单个职位的匹配结果。
type Match struct {
	Job          MatchedJob `json:"job"`
	MatchScore   int        `json:"matchScore"`
	MatchDetails Details    `json:"matchDetails"`
}

// Matcher 对在招职位打分并筛选。
type Matcher struct {
	jobs   JobSource
	cfg    Config
	logger zerolog.Logger
}

// New 创建 Matcher。
func New(jobs JobSource, cfg Config, logger zerolog.Logger) *Matcher {
	return &Matcher{jobs: jobs, cfg: cfg.withDefaults(), logger: logger}
}

// FindMatches 为全部在招职位打分，保留总分不低于 MinFound 的结果并按分数降序排列。
// 内容为空时返回空切片。
func (m *Matcher) FindMatches(ctx context.Context, content string) ([]Match, error) {
	if strings.TrimSpace(content) == "" {
		return []Match{}, nil
	}

	jobs, err := m.jobs.ListActiveJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}

	out := make([]Match, 0, len(jobs))
	for _, job := range jobs {
		d := Score(content, job.Requirements)
		if d.Overall < m.cfg.MinFound {
			continue
		}
		out = append(out, toMatch(job, d))
	}
	sortByScore(out)

	m.logger.Debug().Int("jobs", len(jobs)).Int("found", len(out)).Msg("cv scored")
	return out, nil
}

// Recommend 在 FindMatches 的基础上按简历类别过滤，再应用总分与技能阈值，最多返回 Limit 条。
func (m *Matcher) Recommend(ctx context.Context, content string) ([]Match, error) {
	found, err := m.FindMatches(ctx, content)
	if err != nil {
		return nil, err
	}
	return m.Filter(content, found), nil
}

// Filter 对已找到的结果做类别与阈值过滤。
func (m *Matcher) Filter(content string, found []Match) []Match {
	out := []Match{}
	cat, ok := DetectCategory(content)
	if !ok {
		return out
	}
	for _, match := range found {
		if !cat.fits(match.Job) {
			continue
		}
		if match.MatchScore < m.cfg.MinOverall || match.MatchDetails.Skills < m.cfg.MinSkills {
			continue
		}
		out = append(out, match)
	}
	sortByScore(out)
	if len(out) > m.cfg.Limit {
		out = out[:m.cfg.Limit]
	}
	return out
}

// DetectCategory 根据简历文本中出现的职位名（每个 3 分）与关键词（每个 1 分）判定类别。
// 没有职位名命中且总分低于 3 时视为无法判定。
func DetectCategory(content string) (Category, bool) {
	text := strings.ToLower(content)

	var (
		best       Category
		bestTotal  int
		bestTitles int
		found      bool
	)
	for _, c := range categories {
		titles := 3 * countContained(text, c.Titles)
		total := titles + countContained(text, c.Keywords)
		if total > bestTotal || (total == bestTotal && titles > bestTitles) {
			best, bestTotal, bestTitles, found = c, total, titles, true
		}
	}
	if !found || (bestTitles == 0 && bestTotal < 3) {
		return Category{}, false
	}
	return best, true
}

// fits 职位标题或要求须命中该类别的职位名，且加权命中数不少于 4。
func (c Category) fits(job MatchedJob) bool {
	title := strings.ToLower(job.Title)
	req := strings.ToLower(job.Requirements)

	titleHits := 3*countContained(title, c.Titles) + 2*countContained(req, c.Titles)
	keywordHits := 2*countContained(title, c.Keywords) + countContained(req, c.Keywords)
	return titleHits > 0 && titleHits+keywordHits >= 4
}

func countContained(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			n++
		}
	}
	return n
}

func sortByScore(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].MatchScore > ms[j].MatchScore })
}

func toMatch(job model.Job, d Details) Match {
	m := Match{
		Job: MatchedJob{
			ID:           job.ID,
			Title:        job.Title,
			Location:     job.Location,
			Salary:       job.Salary,
			Requirements: job.Requirements,
		},
		MatchScore:   d.Overall,
		MatchDetails: d,
	}
	if job.Company != nil {
		m.Job.Company.Name = job.Company.Name
	}
	return m
}
