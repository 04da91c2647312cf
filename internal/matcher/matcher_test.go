package matcher

import (
	"context"
	"errors"
	"io"
	"testing"

	"talento/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cv   string
		req  string
		want Details
	}{
		{
			name: "empty requirements use defaults",
			want: Details{Experience: 80, Skills: 70, Education: 80, Overall: 77},
		},
		{
			name: "full and partial requirement hits",
			cv:   "I have 5 years experience in Go programming and teamwork",
			req:  "Go programming, 3 years experience, teamwork",
			want: Details{Experience: 100, Skills: 100, Education: 83, Overall: 92},
		},
		{
			name: "experience ratio",
			cv:   "1 жил туршлага",
			req:  "2 жил туршлага",
			want: Details{Experience: 50, Skills: 70, Education: 0, Overall: 31},
		},
		{
			name: "no experience required",
			cv:   "anything",
			req:  "Туршлага шаардахгүй",
			want: Details{Experience: 100, Skills: 70, Education: 0, Overall: 41},
		},
		{
			name: "strong requirements and skills lift overall to 80",
			cv:   "teamwork customer service years experience",
			req:  "Teamwork, customer service, 4 years experience",
			want: Details{Experience: 0, Skills: 100, Education: 83, Overall: 80},
		},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Score(tc.cv, tc.req), tc.name)
	}
}

func TestDetectCategory(t *testing.T) {
	t.Parallel()

	cat, ok := DetectCategory("Senior Graphic Designer, figma and photoshop")
	require.True(t, ok)
	assert.Equal(t, "design", cat.Name)

	_, ok = DetectCategory("hello world")
	assert.False(t, ok)

	_, ok = DetectCategory("")
	assert.False(t, ok)
}

func TestFindMatchesAndRecommend(t *testing.T) {
	t.Parallel()

	company := &model.Company{Name: "Acme"}
	src := stubJobs{jobs: []model.Job{
		{ID: "designer", Title: "Graphic Designer", Requirements: "figma, photoshop", Company: company},
		{ID: "accountant", Title: "Accountant", Company: company},
		{ID: "backend", Title: "Backend Developer", Requirements: "javascript, react, node, teamwork", Company: company},
		{ID: "frontend", Title: "Frontend Developer", Requirements: "javascript, communication skills", Company: company},
	}}
	m := New(src, Config{}, zerolog.New(io.Discard))
	cv := "Backend developer with javascript react node experience, teamwork"

	found, err := m.FindMatches(context.Background(), cv)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "backend", found[0].Job.ID)
	assert.Equal(t, 96, found[0].MatchScore)
	assert.Equal(t, "Acme", found[0].Job.Company.Name)
	assert.Equal(t, "accountant", found[1].Job.ID)
	assert.Equal(t, 77, found[1].MatchScore)

	recommended, err := m.Recommend(context.Background(), cv)
	require.NoError(t, err)
	require.Len(t, recommended, 1, "jobs outside the cv category are dropped")
	assert.Equal(t, "backend", recommended[0].Job.ID)

	strict := New(src, Config{MinOverall: 97}, zerolog.New(io.Discard))
	recommended, err = strict.Recommend(context.Background(), cv)
	require.NoError(t, err)
	assert.Empty(t, recommended)
}

func TestFindMatchesEmptyContent(t *testing.T) {
	t.Parallel()

	m := New(stubJobs{err: errors.New("must not be called")}, Config{}, zerolog.New(io.Discard))
	found, err := m.FindMatches(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestFindMatchesPropagatesSourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	m := New(stubJobs{err: boom}, Config{}, zerolog.New(io.Discard))
	_, err := m.FindMatches(context.Background(), "developer")
	assert.ErrorIs(t, err, boom)
}

func TestFilterCapsResults(t *testing.T) {
	t.Parallel()

	m := New(stubJobs{}, Config{Limit: 2}, zerolog.New(io.Discard))
	job := MatchedJob{Title: "Backend Developer", Requirements: "javascript, react"}
	found := []Match{
		{Job: job, MatchScore: 70, MatchDetails: Details{Skills: 70}},
		{Job: job, MatchScore: 90, MatchDetails: Details{Skills: 90}},
		{Job: job, MatchScore: 80, MatchDetails: Details{Skills: 50}},
		{Job: job, MatchScore: 85, MatchDetails: Details{Skills: 85}},
	}
	out := m.Filter("backend developer, javascript", found)
	require.Len(t, out, 2)
	assert.Equal(t, 90, out[0].MatchScore)
	assert.Equal(t, 85, out[1].MatchScore)
}

type stubJobs struct {
	jobs []model.Job
	err  error
}

func (s stubJobs) ListActiveJobs(ctx context.Context) ([]model.Job, error) {
	return s.jobs, s.err
}
