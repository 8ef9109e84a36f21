package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/aerosense/aerosense/internal/airquality"
	"github.com/aerosense/aerosense/internal/session"
	"github.com/aerosense/aerosense/pkg/logger"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("insights are disabled: no API key configured")

const systemPrompt = `You are a cabin air-quality coach. Given flight CO2 ` +
	`statistics, write a short friendly summary (3-4 sentences) of how the ` +
	`air quality was, which flight phases were worst, and one practical tip ` +
	`for the traveler's next flight. Use plain language, no markdown.`

// Service generates natural-language post-flight summaries from
// session statistics.
type Service struct {
	client  openai.Client
	model   string
	enabled bool
	logger  *logger.Logger
}

// NewService creates the insights service. With an empty API key the
// service is constructed but disabled.
func NewService(apiKey, model string, logger *logger.Logger) *Service {
	log := logger.Named("insights")
	if apiKey == "" {
		log.Info("No OpenAI API key configured - post-flight insights disabled")
	}

	return &Service{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		enabled: apiKey != "",
		logger:  log,
	}
}

// Enabled reports whether summaries can be generated.
func (s *Service) Enabled() bool {
	return s.enabled
}

// Summarize produces a natural-language summary of a finished flight.
func (s *Service) Summarize(ctx context.Context, sess *session.FlightSession, stats session.Stats) (string, error) {
	if !s.enabled {
		return "", ErrDisabled
	}

	prompt := buildPrompt(sess, stats)

	s.logger.Debug("Requesting flight summary",
		logger.String("session_id", sess.ID),
		logger.String("model", s.model))

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// buildPrompt renders session stats into the model prompt.
func buildPrompt(sess *session.FlightSession, stats session.Stats) string {
	var b strings.Builder

	flight := "Flight"
	if sess.Airline != nil && sess.FlightNumber != nil {
		flight = fmt.Sprintf("%s %s", *sess.Airline, *sess.FlightNumber)
	}

	fmt.Fprintf(&b, "%s on %s\n", flight, sess.StartTime.Format("Jan 2, 2006"))
	fmt.Fprintf(&b, "Duration: %s\n", (time.Duration(stats.DurationMs) * time.Millisecond).Round(time.Minute))
	fmt.Fprintf(&b, "Average CO2: %d ppm (%s)\n", stats.AvgCO2, airquality.Classify(stats.AvgCO2))
	fmt.Fprintf(&b, "Peak CO2: %d ppm, lowest: %d ppm\n", stats.MaxCO2, stats.MinCO2)
	fmt.Fprintf(&b, "Readings: %d total, %d critical, %d warning, %d good\n",
		stats.TotalReadings, stats.CriticalCount, stats.WarningCount, stats.GoodCount)

	if len(stats.PhaseBreakdown) > 0 {
		b.WriteString("Per-phase averages:\n")
		for _, phase := range airquality.PhaseOrder {
			if ps, ok := stats.PhaseBreakdown[string(phase)]; ok {
				fmt.Fprintf(&b, "  %s: %d ppm over %d readings\n",
					airquality.PhaseLabels[phase], ps.AvgCO2, ps.Count)
			}
		}
	}

	if sess.HydrationMl > 0 {
		fmt.Fprintf(&b, "Water logged: %d ml\n", sess.HydrationMl)
	}

	return b.String()
}
