// Package geocode suggests postal addresses for a partial query.
package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"github.com/iwvelando/tal-calculator/pkg/constants"
	"go.uber.org/zap"
)

// Suggestion is one candidate address.
type Suggestion struct {
	PlaceID     int64  `json:"placeId"`
	DisplayName string `json:"displayName"`
	Address     string `json:"address"`
	Latitude    string `json:"lat"`
	Longitude   string `json:"lon"`
	Type        string `json:"type"`
}

// Lookup searches addresses.
type Lookup interface {
	Search(ctx context.Context, query string) ([]Suggestion, error)
}

// Nominatim queries an OpenStreetMap Nominatim search endpoint.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *zap.Logger
}

// NewNominatim returns a client for baseURL. A nil client uses a 10 second
// timeout.
func NewNominatim(baseURL, userAgent string, client *http.Client, logger *zap.Logger) *Nominatim {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Nominatim{baseURL: baseURL, userAgent: userAgent, client: client, logger: logger}
}

type nominatimPlace struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
}

// Search returns up to six Canadian addresses matching query. Queries
// shorter than two characters return nothing without contacting the service.
func (n *Nominatim) Search(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < constants.GeocodeMinQueryLength {
		return nil, nil
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("countrycodes", "ca")
	params.Set("limit", strconv.Itoa(constants.GeocodeResultLimit))
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build address request: %w", err)
	}
	req.Header.Set("Accept-Language", "fr")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("address lookup failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("address lookup http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("failed to decode address suggestions: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(places))
	for _, p := range places {
		suggestions = append(suggestions, Suggestion{
			PlaceID:     p.PlaceID,
			DisplayName: p.DisplayName,
			Address:     CleanAddress(p.DisplayName),
			Latitude:    p.Lat,
			Longitude:   p.Lon,
			Type:        p.Type,
		})
	}

	n.logger.Debug("address lookup",
		zap.String("op", "geocode.Search"),
		zap.Int("results", len(suggestions)),
	)
	return suggestions, nil
}

// CleanAddress shortens a display name: repeated segments and "Canada" are
// dropped and at most five segments are kept.
func CleanAddress(displayName string) string {
	seen := make(map[string]bool)
	var kept []string
	for _, part := range strings.Split(displayName, ", ") {
		normalized := strings.ToLower(strings.TrimSpace(part))
		if seen[normalized] || normalized == "canada" {
			continue
		}
		seen[normalized] = true
		kept = append(kept, part)
		if len(kept) == 5 {
			break
		}
	}
	return strings.Join(kept, ", ")
}
