package tdx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"railctl/pkg/logging"
	"railctl/pkg/trainstatus"
)

const defaultBaseURL = "https://tdx.transportdata.tw/api/basic"

// Some TDX edge nodes reject the default Go user agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const maxAttempts = 3

// ErrNoToken means no bearer token could be obtained, so no request was sent.
var ErrNoToken = errors.New("cannot fetch live data: no access token")

// TokenSource provides the bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Options configure a Client. The zero value talks to the public TDX endpoint.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client fetches TRA timetables and live delays from the TDX API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	retryDelay time.Duration
}

func NewClient(tokens TokenSource, opts Options) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		tokens:     tokens,
		logger:     logging.OrNop(opts.Logger),
		retryDelay: time.Second,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return c
}

func isTransient(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// getWithRetries performs an authenticated GET, retrying transient failures with
// exponential backoff up to maxAttempts times. A non-transient non-200 status is
// returned as an error without retrying.
func (c *Client) getWithRetries(ctx context.Context, reqURL string) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoToken, err)
	}

	b := &backoff.ExponentialBackOff{
		InitialInterval:     c.retryDelay,
		RandomizationFactor: 0.2,
		Multiplier:          2,
		MaxInterval:         10 * c.retryDelay,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}

	attempt := 0
	permanent := false
	body, err := backoff.RetryNotifyWithData(
		func() ([]byte, error) {
			attempt++
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				permanent = true
				return nil, backoff.Permanent(err)
			}
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("User-Agent", userAgent)
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					permanent = true
					return nil, backoff.Permanent(ctx.Err())
				}
				return nil, err
			}
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()

			switch {
			case isTransient(resp.StatusCode):
				return nil, fmt.Errorf("transient status code: %d", resp.StatusCode)
			case resp.StatusCode != http.StatusOK:
				permanent = true
				return nil, backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
			case readErr != nil:
				return nil, fmt.Errorf("failed to read response body: %w", readErr)
			}
			return body, nil
		},
		backoff.WithContext(backoff.WithMaxRetries(b, maxAttempts-1), ctx),
		func(err error, d time.Duration) {
			c.logger.Warn("TDX request failed, retrying", "url", reqURL, "attempt", attempt, "backoff", d, "error", err)
		},
	)
	if err != nil {
		if permanent || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("failed after %d attempts: %w", attempt, err)
	}
	return body, nil
}

// FetchTimetable returns the trains that stop at originCode and later at destCode on
// the given date.
func (c *Client) FetchTimetable(ctx context.Context, originCode, destCode string, date time.Time) ([]trainstatus.ScheduledTrain, error) {
	reqURL := fmt.Sprintf("%s/v3/Rail/TRA/DailyTrainTimetable/OD/%s/to/%s/%s",
		c.baseURL, url.PathEscape(originCode), url.PathEscape(destCode), date.Format("2006-01-02"))

	body, err := c.getWithRetries(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timetable: %w", err)
	}

	var tt TimetableResponse
	if err := json.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("failed to decode timetable JSON: %w", err)
	}

	timetables, skipped := decodeTimetables(tt.TrainTimetables)
	if skipped > 0 {
		c.logger.Debug("skipped malformed timetable entries", "count", skipped)
	}

	trains := ExtractLegs(timetables, originCode, destCode)
	c.logger.Debug("fetched timetable", "origin", originCode, "destination", destCode,
		"trains", len(timetables), "serving_pair", len(trains))

	return trains, nil
}

// FetchLiveDelays returns the current delay per running train.
func (c *Client) FetchLiveDelays(ctx context.Context) (trainstatus.DelayMap, error) {
	body, err := c.getWithRetries(ctx, c.baseURL+"/v2/Rail/TRA/LiveTrainDelay")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch live delays: %w", err)
	}

	delays, skipped, err := ParseDelayFeed(body)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.logger.Debug("skipped malformed delay entries", "count", skipped)
	}
	return delays, nil
}

// decodeTimetables decodes each train on its own, returning the good ones and how
// many were skipped.
func decodeTimetables(raw []json.RawMessage) ([]TrainTimetable, int) {
	timetables := make([]TrainTimetable, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		var tt TrainTimetable
		if err := json.Unmarshal(r, &tt); err != nil {
			skipped++
			continue
		}
		timetables = append(timetables, tt)
	}
	return timetables, skipped
}

// ExtractLegs finds, for each train, the stop at originCode followed later in the
// route by the stop at destCode. Trains that miss either stop, or serve them in the
// opposite order, are dropped.
func ExtractLegs(timetables []TrainTimetable, originCode, destCode string) []trainstatus.ScheduledTrain {
	var trains []trainstatus.ScheduledTrain

	for _, tt := range timetables {
		if tt.TrainInfo.TrainNo == "" {
			continue
		}

		stops := orderedStops(tt.StopTimes)

		oi := indexOfStation(stops, originCode, 0)
		if oi < 0 {
			continue
		}
		di := indexOfStation(stops, destCode, oi+1)
		if di < 0 {
			continue
		}

		typeName := tt.TrainInfo.TrainTypeName.ZhTw
		if typeName == "" {
			typeName = tt.TrainInfo.TrainTypeName.En
		}

		trains = append(trains, trainstatus.ScheduledTrain{
			TrainNo:   tt.TrainInfo.TrainNo,
			Departure: stops[oi].DepartureTime,
			Arrival:   stops[di].ArrivalTime,
			TypeName:  typeName,
		})
	}

	return trains
}

// orderedStops sorts by StopSequence when every stop carries one, otherwise keeps
// the response order.
func orderedStops(stops []StopTime) []StopTime {
	for _, s := range stops {
		if s.StopSequence <= 0 {
			return stops
		}
	}
	sorted := make([]StopTime, len(stops))
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StopSequence < sorted[j].StopSequence })
	return sorted
}

func indexOfStation(stops []StopTime, code string, from int) int {
	for i := from; i < len(stops); i++ {
		if stops[i].StationID == code {
			return i
		}
	}
	return -1
}
