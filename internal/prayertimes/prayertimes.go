// Package prayertimes fetches the daily prayer schedule from the AlAdhan
// timings API.
package prayertimes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/ihsan/internal/constants"
	"github.com/julianstephens/ihsan/internal/logger"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/utils"
)

const DefaultBaseURL = "https://api.aladhan.com"

// Client talks to the AlAdhan API.
type Client struct {
	baseURL string
	method  int
	client  *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at another server, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithMethod selects the AlAdhan calculation method id.
func WithMethod(method int) Option {
	return func(c *Client) { c.method = method }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		method:  constants.DefaultCalculationMethod,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type timingsResponse struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type timingsData struct {
	Timings map[string]string `json:"timings"`
}

// Timings returns the five daily prayers for date at the given coordinates,
// in canonical order.
func (c *Client) Timings(ctx context.Context, date time.Time, lat, lon float64) ([]models.PrayerTime, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("method", strconv.Itoa(c.method))
	endpoint := fmt.Sprintf("%s/v1/timings/%s?%s", c.baseURL, date.Format("02-01-2006"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prayer times request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("prayer times service returned status %d: %s", resp.StatusCode, string(body))
	}

	var envelope timingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Code != http.StatusOK {
		return nil, fmt.Errorf("prayer times service error: %s", envelope.Status)
	}
	var data timingsData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode timings: %w", err)
	}
	return parseTimings(data.Timings)
}

// parseTimings picks the five prayers out of the API's timings map. Values
// may carry a zone suffix such as "05:12 (+03)".
func parseTimings(raw map[string]string) ([]models.PrayerTime, error) {
	out := make([]models.PrayerTime, 0, constants.PrayerCount)
	for _, name := range constants.PrayerNames {
		v, ok := raw[name]
		if !ok {
			return nil, fmt.Errorf("response is missing %s", name)
		}
		if i := strings.IndexByte(v, ' '); i >= 0 {
			v = v[:i]
		}
		if !utils.ValidateTimeFormat(v) {
			return nil, fmt.Errorf("invalid time %q for %s", raw[name], name)
		}
		out = append(out, models.PrayerTime{Name: name, Time: v})
	}
	return out, nil
}

// Placeholder returns the five prayers with unknown times.
func Placeholder() []models.PrayerTime {
	out := make([]models.PrayerTime, 0, constants.PrayerCount)
	for _, name := range constants.PrayerNames {
		out = append(out, models.PrayerTime{Name: name, Time: constants.PlaceholderPrayerTime})
	}
	return out
}

// Fetcher is the part of Client used by ForSettings.
type Fetcher interface {
	Timings(ctx context.Context, date time.Time, lat, lon float64) ([]models.PrayerTime, error)
}

// ForSettings returns the timings for the configured location, or the
// placeholder when no location is set or the lookup fails.
func ForSettings(ctx context.Context, f Fetcher, settings models.Settings, date time.Time) []models.PrayerTime {
	if f == nil || !settings.HasLocation() {
		return Placeholder()
	}
	times, err := f.Timings(ctx, date, settings.Latitude, settings.Longitude)
	if err != nil {
		logger.Warn("Prayer times unavailable", "date", utils.DateKey(date), "error", err)
		return Placeholder()
	}
	return times
}
