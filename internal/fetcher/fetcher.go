// Package fetcher pulls the raw edition catalog from the source feed: a
// locale directory endpoint, a per-locale featured-product list and a
// per-product detail endpoint.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"editiongen/internal/canon"
	"editiongen/internal/config"
	"editiongen/internal/logger"
	"editiongen/internal/models"
)

// Fetch errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrDirectoryUnavailable = errors.New("locale directory unavailable")
)

// idPrefix is stripped from entity ids before they enter the snapshot.
const idPrefix = "rrn:content:energy-drinks:"

// imageTransform expands the {op} placeholder of detail image URL
// templates: trim transparency, limit to 800x800, transparent border.
const imageTransform = "e_trim:1:transparent/c_limit,w_800,h_800/bo_5px_solid_rgb:00000000"

const maxResponseBytes = 10 * 1024 * 1024

var acaiPattern = canon.VariantPattern("Açaí")

// Fetcher retrieves raw edition data with config-driven retry logic.
type Fetcher struct {
	client *http.Client
	cfg    config.SourceConfig
	logger *logger.Logger
	sleep  func(time.Duration)
}

// New creates a fetcher for the configured source feed.
func New(cfg config.SourceConfig, log *logger.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Retry.GetTimeout()},
		cfg:    cfg,
		logger: log,
		sleep:  time.Sleep,
	}
}

// directoryResponse is the locale directory payload. The same endpoint
// serves both roles: queried with the start locale it lists every
// selectable locale, queried with a specific locale it lists that locale's
// featured products.
type directoryResponse struct {
	SelectableLocales    []localeInfo      `json:"selectableLocales"`
	FeaturedEnergyDrinks []featuredProduct `json:"featuredEnergyDrinks"`
}

type localeInfo struct {
	Domain      string `json:"domain"`
	CountryName string `json:"countryName"`
	FlagCode    string `json:"flagCode"`
}

type featuredProduct struct {
	Reference struct {
		ID string `json:"id"`
	} `json:"reference"`
}

// detailResponse is the per-product detail payload.
type detailResponse struct {
	Data detailData `json:"data"`
}

type detailData struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Flavour    string `json:"flavour"`
	Standfirst string `json:"standfirst"`
	Color      string `json:"brandingHexColorCode"`
	Image      struct {
		ImageEssence struct {
			ImageURL string `json:"imageURL"`
		} `json:"imageEssence"`
		AltText string `json:"altText"`
	} `json:"image"`
	Reference struct {
		ExternalURL string `json:"externalUrl"`
	} `json:"reference"`
}

// FetchAll retrieves the full raw snapshot across every selectable locale.
// A failure on the locale directory itself is fatal; individual locales
// that fail or carry no editions are logged and skipped.
func (f *Fetcher) FetchAll(ctx context.Context) (*models.Snapshot, error) {
	f.logger.Info("fetching locale directory", "start_locale", f.cfg.StartLocale)

	var directory directoryResponse
	if err := f.getJSON(ctx, f.directoryURL(f.cfg.StartLocale), &directory); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	if len(directory.SelectableLocales) == 0 {
		return nil, fmt.Errorf("%w: directory lists no locales", ErrDirectoryUnavailable)
	}

	snap := &models.Snapshot{Locales: make(map[string]models.Locale)}

	for _, info := range directory.SelectableLocales {
		locale, err := f.fetchLocale(ctx, info)
		if err != nil {
			f.logger.Error("could not process locale", "locale", info.Domain, "error", err)

			continue
		}

		if locale == nil {
			continue
		}

		snap.Locales[info.CountryName] = *locale
	}

	f.logger.Info("finished fetching raw data", "locales", len(snap.Locales))

	return snap, nil
}

// fetchLocale retrieves one locale's editions. Returns (nil, nil) when the
// locale has no featured editions.
func (f *Fetcher) fetchLocale(ctx context.Context, info localeInfo) (*models.Locale, error) {
	flagCode := info.FlagCode
	if flagCode == "" || strings.Contains(flagCode, "INT") {
		flagCode = "Worldwide"
	}

	f.logger.Info("fetching locale", "country", info.CountryName, "locale", info.Domain)

	var listing directoryResponse
	if err := f.getJSON(ctx, f.directoryURL(info.Domain), &listing); err != nil {
		return nil, err
	}

	if len(listing.FeaturedEnergyDrinks) == 0 {
		f.logger.Warn("no editions found, skipping", "country", info.CountryName)

		return nil, nil
	}

	editions := make([]models.Edition, 0, len(listing.FeaturedEnergyDrinks))

	for _, product := range listing.FeaturedEnergyDrinks {
		if product.Reference.ID == "" {
			continue
		}

		f.sleep(f.cfg.RequestDelay())

		var detail detailResponse
		if err := f.getJSON(ctx, f.detailURL(product.Reference.ID), &detail); err != nil {
			f.logger.Error("could not fetch product detail", "id", product.Reference.ID, "error", err)

			continue
		}

		editions = append(editions, buildEdition(detail.Data))
	}

	if len(editions) == 0 {
		return nil, nil
	}

	return &models.Locale{
		Flag:     flagCode,
		Editions: editions,
		FlagURL:  f.flagURL(flagCode),
	}, nil
}

// buildEdition massages one detail payload into snapshot shape.
func buildEdition(data detailData) models.Edition {
	name := data.Title
	if strings.Contains(name, "Edition") {
		name = "The " + name
	}

	name = canon.CollapseDuplicateWords(name)
	name = canon.FoldDiacriticVariant(name, "Açaí", acaiPattern)

	imageURL := data.Image.ImageEssence.ImageURL
	if imageURL != "" {
		imageURL = strings.ReplaceAll(imageURL, "{op}", imageTransform)
	}

	return models.Edition{
		ID:         strings.TrimPrefix(data.ID, idPrefix),
		Name:       name,
		Flavour:    data.Flavour,
		Standfirst: strings.Trim(data.Standfirst, ` "`),
		Color:      data.Color,
		ImageURL:   imageURL,
		AltText:    data.Image.AltText,
		ProductURL: strings.ReplaceAll(data.Reference.ExternalURL, "http://", "https://"),
	}
}

func (f *Fetcher) directoryURL(locale string) string {
	return strings.ReplaceAll(f.cfg.DirectoryURL, "{locale}", locale)
}

func (f *Fetcher) detailURL(id string) string {
	return strings.ReplaceAll(f.cfg.DetailURL, "{id}", id)
}

func (f *Fetcher) flagURL(flagCode string) string {
	return strings.ReplaceAll(f.cfg.FlagURL, "{flag_code}", flagCode)
}

// getJSON fetches a URL into dst, retrying transient failures per the
// configured policy.
func (f *Fetcher) getJSON(ctx context.Context, url string, dst any) error {
	var lastErr error

	for attempt := 1; attempt <= f.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			if delay := f.cfg.Retry.GetRetryDelay(attempt - 1); delay > 0 {
				f.sleep(delay)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; editiongen) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "application/json")

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, f.cfg.Retry.MaxAttempts, err)

			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)

			if !isRetryableStatus(resp.StatusCode) {
				return lastErr
			}

			continue
		}

		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", readErr)

			continue
		}

		if err := json.Unmarshal(body, dst); err != nil {
			return fmt.Errorf("failed to parse response from %s: %w", url, err)
		}

		return nil
	}

	return lastErr
}

// isRetryableStatus reports whether a status code is worth another attempt.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}

	return false
}
