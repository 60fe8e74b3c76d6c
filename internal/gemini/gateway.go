package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"editiongen/internal/logger"
	"editiongen/internal/models"
)

// RawJSONPlaceholder marks where the payload is substituted into the
// instruction template.
const RawJSONPlaceholder = "{{RAW_JSON}}"

// Gateway wraps the service with a bounded retry policy: the transient
// overload class is retried with a fixed cooldown, every other failure class
// terminates immediately. The gateway never mutates its input payload.
type Gateway struct {
	service  Service
	attempts int
	cooldown time.Duration
	sleep    func(time.Duration)
	logger   *logger.Logger
}

// NewGateway creates a gateway performing at most attempts calls with the
// given cooldown between overload retries.
func NewGateway(service Service, attempts int, cooldown time.Duration, log *logger.Logger) *Gateway {
	return &Gateway{
		service:  service,
		attempts: attempts,
		cooldown: cooldown,
		sleep:    time.Sleep,
		logger:   log,
	}
}

// Normalize sends the stripped payload with the given instructions and
// parses the structured result. The instructions must contain
// RawJSONPlaceholder.
func (g *Gateway) Normalize(ctx context.Context, payload models.Snapshot, instructions string) (models.NormalizedCatalog, error) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	prompt := strings.ReplaceAll(instructions, RawJSONPlaceholder, string(raw))

	var text string

	for attempt := 1; attempt <= g.attempts; attempt++ {
		if g.logger != nil {
			g.logger.Info("sending normalization request", "attempt", attempt, "max_attempts", g.attempts)
		}

		text, err = g.service.GenerateContent(ctx, prompt)
		if err == nil {
			break
		}

		if errors.Is(err, ErrOverloaded) && attempt < g.attempts {
			if g.logger != nil {
				g.logger.Warn("service overloaded, retrying after cooldown",
					"cooldown", g.cooldown, "attempt", attempt, "max_attempts", g.attempts)
			}
			g.sleep(g.cooldown)

			continue
		}

		return nil, fmt.Errorf("normalization attempt %d/%d failed: %w", attempt, g.attempts, err)
	}

	var result models.NormalizedCatalog
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	return result, nil
}
