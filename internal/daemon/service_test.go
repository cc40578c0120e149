package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/snowball/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = model.Params{
	InitialBalance:      15000,
	MonthlyContribution: 1000,
	AnnualGrowthRate:    0.10,
	AnnualYieldRate:     0.069,
	BenchmarkRate:       0.1365,
}

type fakeRecorder struct {
	saved []model.Result
	err   error
}

func (f *fakeRecorder) SaveRun(res model.Result) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.saved = append(f.saved, res)
	return uuid.New(), nil
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/projections", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestPostProjectionGoal(t *testing.T) {
	rec := &fakeRecorder{}
	s := New(Config{Defaults: defaults, Recorder: rec})

	resp := post(t, s.Handler(), `{"monthly_contribution": 1100, "annual_growth_rate": 0.105, "target_income": 1320}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var ev Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ev))
	require.NotNil(t, ev.Result)
	assert.Equal(t, "projection", ev.Type)
	assert.Equal(t, int64(1), ev.ID)
	assert.Equal(t, 85, ev.Result.Months)
	assert.True(t, ev.Result.ReachedTarget)
	assert.Equal(t, 15000.0, ev.Result.Params.InitialBalance, "defaults fill missing fields")
	assert.NotEmpty(t, ev.RunID)
	require.Len(t, rec.saved, 1)
}

func TestPostProjectionHorizon(t *testing.T) {
	s := New(Config{Defaults: defaults})

	resp := post(t, s.Handler(), `{"duration_months": 120}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var ev Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ev))
	assert.Equal(t, model.ModeHorizon, ev.Result.Mode)
	assert.InDelta(t, 381558.7003719085, ev.Result.Final.Balance, 1e-6)
	assert.Empty(t, ev.RunID)
}

func TestPostProjectionRejectsBadInput(t *testing.T) {
	s := New(Config{Defaults: defaults, MaxDurationMonths: 600})
	h := s.Handler()

	for name, body := range map[string]string{
		"malformed":     `{"target_income": `,
		"unknown field": `{"target": 10}`,
		"wrong type":    `{"target_income": "lots"}`,
		"too long":      `{"duration_months": 601}`,
	} {
		resp := post(t, h, body)
		assert.Equal(t, http.StatusBadRequest, resp.Code, name)
		assert.Contains(t, resp.Body.String(), "error", name)
	}
	assert.Equal(t, int64(4), s.snapshotStatus().Rejected)
	assert.Zero(t, s.snapshotStatus().Projections)
}

func TestPostProjectionUnreachable(t *testing.T) {
	s := New(Config{Defaults: defaults, MaxDurationMonths: 24})

	resp := post(t, s.Handler(), `{"annual_yield_rate": 0, "target_income": 100}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var ev Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ev))
	assert.Contains(t, ev.Error, "target income not reached")
	assert.Equal(t, 24, ev.Result.Months)
	assert.False(t, ev.Result.ReachedTarget)

	st := s.snapshotStatus()
	assert.Equal(t, int64(1), st.Unreachable)
	assert.NotEmpty(t, st.LastError)
}

func TestRecorderFailureStillServes(t *testing.T) {
	s := New(Config{Defaults: defaults, Recorder: &fakeRecorder{err: errors.New("disk full")}})

	resp := post(t, s.Handler(), `{"duration_months": 12}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var ev Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ev))
	assert.Empty(t, ev.RunID)
}

func TestListAndStatusEndpoints(t *testing.T) {
	s := New(Config{Defaults: defaults, Recorder: &fakeRecorder{}})
	h := s.Handler()

	post(t, h, `{"duration_months": 12}`)
	post(t, h, `{"duration_months": 24}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/projections", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var events []Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&events))
	require.Len(t, events, 2)
	assert.Equal(t, 24, events[1].Result.Months)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	var st Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.Equal(t, int64(2), st.Projections)
	assert.Equal(t, 2, st.EventCount)
	assert.True(t, st.HistoryEnabled)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/projections", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestStreamDeliversProjections(t *testing.T) {
	s := New(Config{Defaults: defaults})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := r.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				return name, data
			}
		}
	}

	name, _ := readEvent()
	require.Equal(t, "ready", name)

	_, err = s.Project(defaults.WithDuration(1, 0))
	require.NoError(t, err)

	name, data := readEvent()
	require.Equal(t, "projection", name)
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, 12, ev.Result.Months)
}

func TestPostProjectionNonFinite(t *testing.T) {
	rec := &fakeRecorder{}
	s := New(Config{Defaults: defaults, Recorder: rec})

	resp := post(t, s.Handler(), `{"annual_growth_rate": -2, "duration_months": 12}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var ev Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ev))
	assert.Nil(t, ev.Result)
	assert.Equal(t, ErrNonFinite.Error(), ev.Error)
	assert.Empty(t, rec.saved, "non-finite runs are not recorded")

	st := s.snapshotStatus()
	assert.Equal(t, int64(1), st.Projections)
	assert.Zero(t, st.Unreachable)
}

func TestWriteJSONReportsEncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"balance": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "encoding response")
}
