package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/ReviewSentiment/internal/domain"
	"github.com/utafrali/ReviewSentiment/internal/service"
)

type sampleReview struct {
	CustomerName string
	ReviewText   string
}

var sampleReviews = []sampleReview{
	// Positive
	{"Maria Silva", "Excelente atendimento! Muito satisfeita com o serviço prestado."},
	{"João Santos", "Produto de alta qualidade, superou minhas expectativas!"},
	{"Ana Costa", "Equipe muito prestativa e eficiente. Recomendo!"},
	{"Pedro Oliveira", "Serviço rápido e profissional. Adorei a experiência!"},
	{"Carla Lima", "Fantástico! Tudo funcionou perfeitamente."},

	// Negative
	{"Roberto Ferreira", "Péssimo atendimento, muito demorado e ineficiente."},
	{"Juliana Rocha", "Produto com defeito e suporte não resolveu o problema."},
	{"Carlos Almeida", "Experiência terrível, não recomendo para ninguém."},
	{"Fernanda Dias", "Muito insatisfeita com o serviço prestado."},
	{"Ricardo Gomes", "Atendimento ruim e produto de baixa qualidade."},

	// Neutral
	{"Luciana Martins", "Serviço ok, nada excepcional mas cumpriu o básico."},
	{"Marcos Barbosa", "Produto mediano, funciona mas poderia ser melhor."},
	{"Patricia Souza", "Atendimento padrão, sem grandes problemas ou elogios."},
	{"André Ribeiro", "Experiência regular, dentro do esperado."},
	{"Camila Castro", "Serviço aceitável, mas há espaço para melhorias."},

	// English
	{"John Smith", "Amazing service! Very satisfied with the quality."},
	{"Sarah Johnson", "Terrible experience, would not recommend."},
	{"Mike Wilson", "Average service, nothing special but okay."},

	// Mixed
	{"Beatriz Lopes", "O produto é bom, mas o atendimento deixou a desejar."},
	{"Gabriel Moura", "Gostei do serviço em geral, mas houve alguns problemas."},
}

var (
	seedCount int
	seedDays  int
	seedYes   bool

	// now and newRand are replaced in tests.
	now     = time.Now
	newRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Classify and store sample reviews",
	Long: `Classify the built-in sample reviews through the review service and store
them with creation dates spread randomly over the last --days days.

Sample reviews cycle when --count exceeds the number of samples.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", len(sampleReviews), "number of reviews to create")
	seedCmd.Flags().IntVar(&seedDays, "days", 30, "spread creation dates over this many past days")
	seedCmd.Flags().BoolVarP(&seedYes, "yes", "y", false, "do not ask for confirmation when reviews exist")
}

// buildSeedInputs returns count submissions drawn from the samples in order,
// each backdated by a random offset of up to days days.
func buildSeedInputs(rng *rand.Rand, count, days int, ref time.Time) ([]service.SubmitReviewInput, error) {
	if count < 1 {
		return nil, errors.New("--count must be at least 1")
	}
	if days < 0 {
		return nil, errors.New("--days must not be negative")
	}

	inputs := make([]service.SubmitReviewInput, 0, count)
	for i := 0; i < count; i++ {
		sample := sampleReviews[i%len(sampleReviews)]
		createdAt := ref
		if days > 0 {
			offset := time.Duration(rng.Int63n(int64(days) * int64(24*time.Hour)))
			createdAt = ref.Add(-offset)
		}
		createdAt = createdAt.UTC()
		inputs = append(inputs, service.SubmitReviewInput{
			CustomerName: sample.CustomerName,
			ReviewText:   sample.ReviewText,
			CreatedAt:    &createdAt,
		})
	}
	return inputs, nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	inputs, err := buildSeedInputs(newRand(), seedCount, seedDays, now())
	if err != nil {
		return err
	}

	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.Migrate(ctx); err != nil {
		return err
	}

	stats, err := b.Stats(ctx)
	if err != nil {
		return err
	}
	if stats.Counts.Total > 0 && !seedYes {
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("%d reviews already stored.", stats.Counts.Total)))
		ok, err := confirm(cmd.InOrStdin(), out, "Add more sample data?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, mutedStyle.Render("Cancelled."))
			return nil
		}
	}

	for _, input := range inputs {
		review, err := b.Submit(ctx, input)
		if err != nil {
			return fmt.Errorf("seed review for %s: %w", input.CustomerName, err)
		}
		printSeeded(out, review)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("%d reviews created.", len(inputs))))

	stats, err = b.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	renderStats(out, stats)
	return nil
}

func printSeeded(w io.Writer, review *domain.Review) {
	score := "n/a"
	if review.ConfidenceScore != nil {
		score = *review.ConfidenceScore
	}
	fmt.Fprintf(w, "  #%-4d %s %s %s\n",
		review.ID,
		sentimentStyle(review.Sentiment).Render(fmt.Sprintf("%-8s", review.Sentiment)),
		review.CustomerName,
		mutedStyle.Render("(confidence "+score+")"),
	)
}
