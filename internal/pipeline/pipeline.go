// Package pipeline orchestrates one worker run: fetch, override, diff,
// strip, normalize, rehydrate, publish.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"editiongen/internal/changelog"
	"editiongen/internal/config"
	"editiongen/internal/differ"
	"editiongen/internal/gemini"
	"editiongen/internal/logger"
	"editiongen/internal/models"
	"editiongen/internal/override"
	"editiongen/internal/sidemap"
	"editiongen/internal/store"
)

// Pipeline errors.
var (
	ErrPromptUnusable = errors.New("prompt template unusable")
	ErrEmptySnapshot  = errors.New("snapshot contains no locales")
)

// Outcome is the terminal state of one run.
type Outcome int

// Run outcomes. ExitCode maps them onto the worker's process exit codes.
const (
	OutcomeProcessed Outcome = iota
	OutcomeFailed
	OutcomeNoChange
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProcessed:
		return "processed"
	case OutcomeNoChange:
		return "no change"
	default:
		return "failed"
	}
}

// ExitCode returns the process exit code for the outcome.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeProcessed:
		return 0
	case OutcomeNoChange:
		return 2
	default:
		return 1
	}
}

// Fetcher retrieves the raw snapshot from the source feed.
type Fetcher interface {
	FetchAll(ctx context.Context) (*models.Snapshot, error)
}

// Normalizer sends a stripped snapshot out for normalization.
type Normalizer interface {
	Normalize(ctx context.Context, payload models.Snapshot, instructions string) (models.NormalizedCatalog, error)
}

// Storage persists the run's documents.
type Storage interface {
	SaveRaw(snap *models.Snapshot) error
	LoadPrior() (*models.Snapshot, error)
	SaveCatalog(catalog models.Catalog) error
	SaveChangelog(markdown string) error
	PromoteRaw() error
	DiscardRaw() error
}

// Runner executes the worker pipeline.
type Runner struct {
	fetcher    Fetcher
	normalizer Normalizer
	storage    Storage
	overrides  *override.Engine
	promptFile string
	timeout    time.Duration
	logger     *logger.Logger
}

// NewRunner wires a runner from its collaborators.
func NewRunner(fetcher Fetcher, normalizer Normalizer, storage Storage, cfg *config.Config, log *logger.Logger) *Runner {
	return &Runner{
		fetcher:    fetcher,
		normalizer: normalizer,
		storage:    storage,
		overrides:  override.NewEngine(cfg.Overrides),
		promptFile: cfg.Gemini.PromptFile,
		timeout:    cfg.Gemini.Timeout(),
		logger:     log,
	}
}

// Run executes one pipeline run. With skipFetch the prior snapshot is
// reprocessed instead of fetching, and no promotion happens afterward.
func (r *Runner) Run(ctx context.Context, skipFetch bool) (Outcome, error) {
	runID := uuid.NewString()
	log := r.logger.With("run_id", runID)

	log.Info("starting run", "skip_fetch", skipFetch)

	// The prompt template gates the whole run. Check it before any request.
	prompt, err := r.loadPrompt()
	if err != nil {
		return OutcomeFailed, err
	}

	snap, err := r.acquireSnapshot(ctx, skipFetch, log)
	if err != nil {
		return OutcomeFailed, err
	}

	patched, report := r.overrides.Apply(*snap)

	for _, entry := range report {
		if entry.Status != override.StatusApplied {
			log.Warn("override rule skipped",
				"edition_id", entry.Rule.EditionID, "field", entry.Rule.Field, "status", string(entry.Status))
		}
	}

	summary, changed, err := r.compare(patched, skipFetch, log)
	if err != nil {
		return OutcomeFailed, err
	}

	if !changed {
		log.Info("no changes detected, nothing to do")

		if err := r.storage.DiscardRaw(); err != nil {
			return OutcomeFailed, err
		}

		return OutcomeNoChange, nil
	}

	if err := r.validate(patched, log); err != nil {
		return OutcomeFailed, err
	}

	stripped, maps := sidemap.Extract(patched)

	if count := patched.EditionCount(); len(maps.Products) != count {
		log.Warn("side-map product count differs from edition count, duplicate entity ids likely",
			"products", len(maps.Products), "editions", count)
	}

	log.Info("normalizing stripped snapshot", "locales", len(stripped.Locales), "editions", stripped.EditionCount())

	normCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.normalizer.Normalize(normCtx, stripped, prompt)
	if err != nil {
		log.Error("normalization failed, prior snapshot and catalog stay in place", "error", err)

		if !skipFetch {
			if discardErr := r.storage.DiscardRaw(); discardErr != nil {
				log.Error("could not discard raw snapshot", "error", discardErr)
			}
		}

		return OutcomeFailed, err
	}

	catalog, anomalies := sidemap.Rehydrate(result, maps)
	for _, anomaly := range anomalies {
		log.Warn("rehydration anomaly",
			"kind", string(anomaly.Kind), "locale", anomaly.LocaleKey, "edition_id", anomaly.EditionID)
	}

	if err := r.storage.SaveCatalog(catalog); err != nil {
		return OutcomeFailed, err
	}

	if err := r.storage.SaveChangelog(changelog.Build(summary, report, runID)); err != nil {
		return OutcomeFailed, err
	}

	if !skipFetch {
		if err := r.storage.PromoteRaw(); err != nil {
			return OutcomeFailed, err
		}
	}

	log.Info("run complete", "locales", len(catalog))

	return OutcomeProcessed, nil
}

// acquireSnapshot fetches fresh raw data, or reloads the prior snapshot in
// skip-fetch mode. The fresh snapshot is persisted before any further
// processing so a later failure leaves evidence of what was fetched.
func (r *Runner) acquireSnapshot(ctx context.Context, skipFetch bool, log *logger.Logger) (*models.Snapshot, error) {
	if skipFetch {
		snap, err := r.storage.LoadPrior()
		if err != nil {
			return nil, fmt.Errorf("skip-fetch needs a readable prior snapshot: %w", err)
		}

		log.Info("reusing prior snapshot", "locales", len(snap.Locales))

		return snap, nil
	}

	snap, err := r.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	return snap, nil
}

// compare diffs the patched snapshot against the prior one. A missing prior
// means first run; an unreadable prior fails open into a full reprocess.
func (r *Runner) compare(patched models.Snapshot, skipFetch bool, log *logger.Logger) (differ.Summary, bool, error) {
	if skipFetch {
		return differ.Summary{Note: "Reprocessing prior snapshot."}, true, nil
	}

	if err := r.storage.SaveRaw(&patched); err != nil {
		return differ.Summary{}, false, err
	}

	prior, err := r.storage.LoadPrior()

	switch {
	case errors.Is(err, store.ErrNoPriorSnapshot):
		log.Info("no prior snapshot found, assuming first run")

		return differ.InitialSummary(), true, nil
	case err != nil:
		log.Error("could not read prior snapshot, processing everything", "error", err)

		return differ.FailOpen(err), true, nil
	}

	changed, summary := differ.Diff(patched, prior)

	return summary, changed, nil
}

// validate logs recoverable snapshot issues and rejects only an empty
// snapshot outright.
func (r *Runner) validate(snap models.Snapshot, log *logger.Logger) error {
	for _, issue := range snap.Validate() {
		if errors.Is(issue.Err, models.ErrNoLocales) {
			return ErrEmptySnapshot
		}

		log.Warn("snapshot issue",
			"error", issue.Err.Error(), "locale", issue.LocaleKey, "edition_id", issue.EditionID, "index", issue.Index)
	}

	return nil
}

func (r *Runner) loadPrompt() (string, error) {
	data, err := os.ReadFile(r.promptFile)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPromptUnusable, err)
	}

	prompt := string(data)
	if !strings.Contains(prompt, gemini.RawJSONPlaceholder) {
		return "", fmt.Errorf("%w: missing %s placeholder", ErrPromptUnusable, gemini.RawJSONPlaceholder)
	}

	return prompt, nil
}
