package tdx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"railctl/pkg/trainstatus"
)

type staticToken struct {
	token string
	err   error
	calls int
}

func (s *staticToken) Token(ctx context.Context) (string, error) {
	s.calls++
	return s.token, s.err
}

func newTestClient(serverURL string, tokens TokenSource) *Client {
	c := NewClient(tokens, Options{BaseURL: serverURL})
	c.retryDelay = time.Millisecond
	return c
}

const timetableJSON = `{
	"UpdateTime": "2026-03-02T04:00:00+08:00",
	"TrainDate": "2026-03-02",
	"TrainTimetables": [
		{
			"TrainInfo": {"TrainNo": "1107", "TrainTypeName": {"Zh_tw": "自強(3000)", "En": "Tze-Chiang"}},
			"StopTimes": [
				{"StopSequence": 1, "StationID": "1210", "ArrivalTime": "07:00", "DepartureTime": "07:02"},
				{"StopSequence": 2, "StationID": "1070", "ArrivalTime": "07:56", "DepartureTime": "07:58"},
				{"StopSequence": 3, "StationID": "1020", "ArrivalTime": "08:12", "DepartureTime": "08:13"},
				{"StopSequence": 4, "StationID": "1000", "ArrivalTime": "08:22", "DepartureTime": "08:25"}
			]
		},
		{
			"TrainInfo": {"TrainNo": "1105", "TrainTypeName": {"Zh_tw": "", "En": "Local"}},
			"StopTimes": [
				{"StopSequence": 2, "StationID": "1000", "ArrivalTime": "08:16", "DepartureTime": "08:16"},
				{"StopSequence": 1, "StationID": "1070", "ArrivalTime": "07:44", "DepartureTime": "07:45"}
			]
		},
		{
			"TrainInfo": {"TrainNo": "4172", "TrainTypeName": {"Zh_tw": "區間車"}},
			"StopTimes": [
				{"StopSequence": 1, "StationID": "1000", "ArrivalTime": "07:10", "DepartureTime": "07:10"},
				{"StopSequence": 2, "StationID": "1070", "ArrivalTime": "07:40", "DepartureTime": "07:40"}
			]
		},
		{
			"TrainInfo": {"TrainNo": "4180", "TrainTypeName": {"Zh_tw": "區間車"}},
			"StopTimes": [
				{"StopSequence": 1, "StationID": "1070", "ArrivalTime": "07:50", "DepartureTime": "07:50"}
			]
		}
	]
}`

func TestClient_FetchTimetable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/Rail/TRA/DailyTrainTimetable/OD/1070/to/1000/2026-03-02" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer token header, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(timetableJSON))
	}))
	defer server.Close()

	client := newTestClient(server.URL, &staticToken{token: "test-token"})

	date := time.Date(2026, 3, 2, 7, 0, 0, 0, time.FixedZone("CST", 8*3600))
	trains, err := client.FetchTimetable(context.Background(), "1070", "1000", date)
	if err != nil {
		t.Fatalf("unexpected error fetching mocked timetable: %v", err)
	}

	want := []trainstatus.ScheduledTrain{
		{TrainNo: "1107", Departure: "07:58", Arrival: "08:22", TypeName: "自強(3000)"},
		{TrainNo: "1105", Departure: "07:45", Arrival: "08:16", TypeName: "Local"},
	}
	if !reflect.DeepEqual(trains, want) {
		t.Errorf("unexpected legs.\nGot: %+v\nExpected: %+v", trains, want)
	}
}

func TestClient_FetchTimetable_MissingKeyIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"UpdateTime": "2026-03-02T04:00:00+08:00"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, &staticToken{token: "t"})
	trains, err := client.FetchTimetable(context.Background(), "1070", "1000", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trains) != 0 {
		t.Errorf("expected no trains, got %+v", trains)
	}
}

func TestClient_FetchTimetable_SkipsMalformedTrain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"TrainTimetables": [
			{
				"TrainInfo": {"TrainNo": "1", "TrainTypeName": {"En": "Local"}},
				"StopTimes": [
					{"StopSequence": 1, "StationID": "1070", "DepartureTime": "09:00"},
					{"StopSequence": 2, "StationID": "1000", "ArrivalTime": "09:30"}
				]
			},
			{
				"TrainInfo": {"TrainNo": "2", "TrainTypeName": {"En": "Local"}},
				"StopTimes": [
					{"StopSequence": "x", "StationID": "1070", "DepartureTime": "10:00"},
					{"StopSequence": 2, "StationID": "1000", "ArrivalTime": "10:30"}
				]
			}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, &staticToken{token: "t"})
	trains, err := client.FetchTimetable(context.Background(), "1070", "1000", time.Now())
	if err != nil {
		t.Fatalf("a single bad train should not fail the fetch: %v", err)
	}

	want := []trainstatus.ScheduledTrain{
		{TrainNo: "1", Departure: "09:00", Arrival: "09:30", TypeName: "Local"},
	}
	if !reflect.DeepEqual(trains, want) {
		t.Errorf("unexpected legs.\nGot: %+v\nExpected: %+v", trains, want)
	}
}

func TestClient_FetchLiveDelays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/Rail/TRA/LiveTrainDelay" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[{"TrainNo": "1107", "StationID": "1020", "DelayTime": 4}, {"TrainNo": "1105", "DelayTime": 0}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, &staticToken{token: "t"})
	delays, err := client.FetchLiveDelays(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(delays, trainstatus.DelayMap{"1107": 4, "1105": 0}) {
		t.Errorf("unexpected delays: %v", delays)
	}
}

func TestClient_NoTokenShortCircuits(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := newTestClient(server.URL, &staticToken{err: errors.New("exchange failed")})

	if _, err := client.FetchLiveDelays(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
	if _, err := client.FetchTimetable(context.Background(), "1070", "1000", time.Now()); !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
	if requests != 0 {
		t.Errorf("expected no requests without a token, got %d", requests)
	}
}

func TestClient_GetWithRetries_Success(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			// Simulate rate limiting, then an overloaded gateway
			if attempts == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
			} else {
				w.WriteHeader(http.StatusServiceUnavailable)
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, &staticToken{token: "t"})

	body, err := client.getWithRetries(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected robust retry to succeed on 3rd attempt, got error: %v", err)
	}
	if string(body) != `{"success": true}` {
		t.Errorf("unexpected body: %s", body)
	}
	if attempts != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", attempts)
	}
}

func TestClient_GetWithRetries_Fail(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, &staticToken{token: "t"})

	if _, err := client.getWithRetries(context.Background(), server.URL); err == nil {
		t.Fatalf("expected robust retry to completely fail after 3 attempts, but got nil error")
	}
	if attempts != maxAttempts {
		t.Errorf("expected %d attempts, got %d", maxAttempts, attempts)
	}
}

func TestClient_NonTransientStatusNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL, &staticToken{token: "expired"})

	if _, err := client.getWithRetries(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for 401")
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt for 401, got %d", attempts)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(&staticToken{token: "t"}, Options{
		BaseURL:    server.URL,
		HTTPClient: &http.Client{Timeout: 20 * time.Millisecond},
	})
	client.retryDelay = time.Millisecond

	start := time.Now()
	if _, err := client.FetchLiveDelays(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("expected the call to give up quickly, took %v", elapsed)
	}
}
