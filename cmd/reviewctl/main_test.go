package main

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ReviewSentiment/internal/domain"
	"github.com/utafrali/ReviewSentiment/internal/service"
)

type fakeBackend struct {
	stats      domain.Stats
	submitted  []service.SubmitReviewInput
	submitErr  error
	migrateErr error
	cleared    bool
	migrated   bool
	closed     bool
}

func (f *fakeBackend) Submit(_ context.Context, input service.SubmitReviewInput) (*domain.Review, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, input)
	f.stats.Counts.Total++
	f.stats.Counts.Positive++
	confidence := "0.90"
	return &domain.Review{
		ID:              int64(len(f.submitted)),
		CustomerName:    input.CustomerName,
		ReviewText:      input.ReviewText,
		Sentiment:       domain.SentimentPositive,
		ConfidenceScore: &confidence,
		CreatedAt:       *input.CreatedAt,
	}, nil
}

func (f *fakeBackend) Clear(context.Context) (int64, error) {
	n := f.stats.Counts.Total
	f.stats = domain.Stats{}
	f.cleared = true
	return n, nil
}

func (f *fakeBackend) Stats(context.Context) (*domain.Stats, error) {
	s := f.stats
	return &s, nil
}

func (f *fakeBackend) Migrate(context.Context) error {
	f.migrated = true
	return f.migrateErr
}

func (f *fakeBackend) Close() {
	f.closed = true
}

// execute runs rootCmd against b with default flag values.
func execute(t *testing.T, b backend, stdin string, args ...string) (string, error) {
	t.Helper()

	seedCount, seedDays, seedYes, clearYes = len(sampleReviews), 30, false, false
	openBackend = func(context.Context) (backend, error) { return b, nil }
	t.Cleanup(func() { openBackend = openCore })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBuildSeedInputs_CyclesSamplesWithinWindow(t *testing.T) {
	ref := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(1))

	inputs, err := buildSeedInputs(rng, 25, 30, ref)
	require.NoError(t, err)
	require.Len(t, inputs, 25)

	assert.Equal(t, sampleReviews[0].CustomerName, inputs[0].CustomerName)
	assert.Equal(t, sampleReviews[0].CustomerName, inputs[len(sampleReviews)].CustomerName)
	assert.Equal(t, sampleReviews[4].ReviewText, inputs[24].ReviewText)

	earliest := ref.AddDate(0, 0, -30)
	for _, in := range inputs {
		require.NotNil(t, in.CreatedAt)
		assert.Equal(t, time.UTC, in.CreatedAt.Location())
		assert.False(t, in.CreatedAt.After(ref), "created_at %s after reference", in.CreatedAt)
		assert.True(t, in.CreatedAt.After(earliest), "created_at %s before window", in.CreatedAt)
	}
}

func TestBuildSeedInputs_ZeroDaysUsesReference(t *testing.T) {
	ref := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	inputs, err := buildSeedInputs(rand.New(rand.NewSource(1)), 3, 0, ref)
	require.NoError(t, err)
	for _, in := range inputs {
		assert.True(t, in.CreatedAt.Equal(ref))
	}
}

func TestBuildSeedInputs_InvalidFlags(t *testing.T) {
	ref := time.Now()

	_, err := buildSeedInputs(rand.New(rand.NewSource(1)), 0, 30, ref)
	assert.EqualError(t, err, "--count must be at least 1")

	_, err = buildSeedInputs(rand.New(rand.NewSource(1)), 5, -1, ref)
	assert.EqualError(t, err, "--days must not be negative")
}

func TestSampleReviews_AreValidSubmissions(t *testing.T) {
	assert.Len(t, sampleReviews, 20)
	for _, s := range sampleReviews {
		assert.NotEmpty(t, strings.TrimSpace(s.CustomerName))
		assert.NotEmpty(t, strings.TrimSpace(s.ReviewText))
		assert.LessOrEqual(t, len([]rune(s.CustomerName)), domain.MaxCustomerNameLength)
	}
}

func TestSeed_EmptyDatabase(t *testing.T) {
	b := &fakeBackend{}

	out, err := execute(t, b, "", "seed", "--count", "3")
	require.NoError(t, err)

	assert.True(t, b.migrated)
	assert.True(t, b.closed)
	require.Len(t, b.submitted, 3)
	assert.Equal(t, "Maria Silva", b.submitted[0].CustomerName)
	assert.Contains(t, out, "Maria Silva")
	assert.Contains(t, out, "(confidence 0.90)")
	assert.Contains(t, out, "3 reviews created.")
	assert.Contains(t, out, "Total reviews: 3")
}

func TestSeed_ExistingDataDeclined(t *testing.T) {
	b := &fakeBackend{stats: domain.Stats{Counts: domain.SentimentCounts{Total: 5, Neutral: 5}}}

	out, err := execute(t, b, "n\n", "seed")
	require.NoError(t, err)

	assert.Empty(t, b.submitted)
	assert.Contains(t, out, "5 reviews already stored.")
	assert.Contains(t, out, "Cancelled.")
}

func TestSeed_ExistingDataConfirmed(t *testing.T) {
	b := &fakeBackend{stats: domain.Stats{Counts: domain.SentimentCounts{Total: 5, Neutral: 5}}}

	out, err := execute(t, b, "y\n", "seed")
	require.NoError(t, err)

	assert.Len(t, b.submitted, len(sampleReviews))
	assert.Contains(t, out, "Total reviews: 25")
}

func TestSeed_YesSkipsPrompt(t *testing.T) {
	b := &fakeBackend{stats: domain.Stats{Counts: domain.SentimentCounts{Total: 1, Neutral: 1}}}

	out, err := execute(t, b, "", "seed", "--yes", "--count", "2")
	require.NoError(t, err)

	assert.Len(t, b.submitted, 2)
	assert.NotContains(t, out, "[y/N]")
}

func TestSeed_SubmitError(t *testing.T) {
	b := &fakeBackend{submitErr: errors.New("connection refused")}

	_, err := execute(t, b, "", "seed", "--count", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Maria Silva")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, b.closed)
}

func TestSeed_MigrateError(t *testing.T) {
	b := &fakeBackend{migrateErr: errors.New("run migrations: boom")}

	_, err := execute(t, b, "", "seed")
	require.EqualError(t, err, "run migrations: boom")
	assert.Empty(t, b.submitted)
}

func TestClear_AlreadyEmpty(t *testing.T) {
	b := &fakeBackend{}

	out, err := execute(t, b, "", "clear")
	require.NoError(t, err)

	assert.False(t, b.cleared)
	assert.Contains(t, out, "Database is already empty.")
}

func TestClear_Confirmed(t *testing.T) {
	b := &fakeBackend{stats: domain.Stats{Counts: domain.SentimentCounts{Total: 7, Negative: 7}}}

	out, err := execute(t, b, "yes\n", "clear")
	require.NoError(t, err)

	assert.True(t, b.cleared)
	assert.Contains(t, out, "This will delete 7 reviews. Continue?")
	assert.Contains(t, out, "Deleted 7 reviews.")
}

func TestClear_Declined(t *testing.T) {
	b := &fakeBackend{stats: domain.Stats{Counts: domain.SentimentCounts{Total: 7, Negative: 7}}}

	out, err := execute(t, b, "\n", "clear")
	require.NoError(t, err)

	assert.False(t, b.cleared)
	assert.Contains(t, out, "Cancelled.")
}

func TestClear_YesFlag(t *testing.T) {
	b := &fakeBackend{stats: domain.Stats{Counts: domain.SentimentCounts{Total: 2, Positive: 2}}}

	out, err := execute(t, b, "", "clear", "-y")
	require.NoError(t, err)

	assert.True(t, b.cleared)
	assert.NotContains(t, out, "[y/N]")
	assert.Contains(t, out, "Deleted 2 reviews.")
}

func TestStats_RendersBreakdown(t *testing.T) {
	first := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	last := time.Date(2024, 2, 1, 8, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	b := &fakeBackend{stats: domain.Stats{
		Counts: domain.SentimentCounts{Total: 4, Positive: 2, Negative: 1, Neutral: 1},
		First:  &first,
		Last:   &last,
	}}

	out, err := execute(t, b, "", "stats")
	require.NoError(t, err)

	assert.Contains(t, out, "Review statistics")
	assert.Contains(t, out, "Total reviews: 4")
	assert.Contains(t, out, "( 50.0%)")
	assert.Contains(t, out, "( 25.0%)")
	assert.Contains(t, out, domain.SentimentPositive.Description())
	assert.Contains(t, out, domain.SentimentNeutral.Description())
	assert.Contains(t, out, "First review: 2024-01-15 10:30 UTC")
	assert.Contains(t, out, "Last review:  2024-02-01 11:00 UTC")
	assert.True(t, b.closed)
}

func TestStats_Empty(t *testing.T) {
	out, err := execute(t, &fakeBackend{}, "", "stats")
	require.NoError(t, err)

	assert.Contains(t, out, "No reviews stored.")
	assert.NotContains(t, out, "Total reviews")
}

func TestMigrate(t *testing.T) {
	b := &fakeBackend{}

	out, err := execute(t, b, "", "migrate")
	require.NoError(t, err)

	assert.True(t, b.migrated)
	assert.True(t, b.closed)
	assert.Contains(t, out, "Migrations applied.")
}

func TestOpenBackendError(t *testing.T) {
	_, _ = execute(t, &fakeBackend{}, "", "stats")
	openBackend = func(context.Context) (backend, error) {
		return nil, errors.New("connect to postgres: refused")
	}

	rootCmd.SetArgs([]string{"stats"})
	err := rootCmd.ExecuteContext(context.Background())
	assert.EqualError(t, err, "connect to postgres: refused")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: " s \n", want: true},
		{input: "sim", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
		{input: "maybe\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			got, err := confirm(strings.NewReader(tt.input), &out, "Proceed?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Proceed? [y/N]: ", out.String())
		})
	}
}
