// Package daemon serves projections over HTTP and streams each new result to
// subscribers.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/projection"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 64 << 10

// ErrNonFinite is returned by Project when the inputs drive the projection to
// NaN or Inf, which JSON cannot carry.
var ErrNonFinite = errors.New("projection produced non-finite values")

// Recorder persists finished projections. *store.Store satisfies it.
type Recorder interface {
	SaveRun(res model.Result) (uuid.UUID, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int

	// Defaults fills request fields the client leaves out.
	Defaults model.Params

	// MaxDurationMonths rejects longer horizon requests and caps goal seeking.
	MaxDurationMonths int

	Recorder Recorder // optional
	Logger   *logrus.Logger
}

// Event is emitted for every projection the service runs.
type Event struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	RunID     string        `json:"run_id,omitempty"`
	Result    *model.Result `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Addr            string    `json:"addr"`
	Projections     int64     `json:"projections"`
	Unreachable     int64     `json:"unreachable"`
	Rejected        int64     `json:"rejected"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
	HistoryEnabled  bool      `json:"history_enabled"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *logrus.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	projections int64
	unreachable int64
	rejected    int64
	lastError   string
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.MaxDurationMonths < 1 {
		cfg.MaxDurationMonths = projection.DefaultMaxMonths
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Service{
		cfg:       cfg,
		log:       logger,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/projections", s.handleProjections)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return s.logRequests(mux)
}

// Run serves the HTTP API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.WithField("addr", s.cfg.Addr).Info("snowball daemon listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("snowball daemon shutting down")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// Project runs one projection, records it when history is enabled and
// publishes it to subscribers. The returned error wraps
// projection.ErrTargetUnreachable when goal seeking hit its cap, or is
// ErrNonFinite, in which case the event carries no result.
func (s *Service) Project(p model.Params) (Event, error) {
	if p.MaxMonths <= 0 || p.MaxMonths > s.cfg.MaxDurationMonths {
		p.MaxMonths = s.cfg.MaxDurationMonths
	}

	res, runErr := projection.Run(p)
	fields := logrus.Fields{
		"mode":    res.Mode,
		"months":  res.Months,
		"balance": res.Final.Balance,
		"income":  res.Final.Income,
	}

	ev := Event{Type: "projection", Timestamp: time.Now(), Result: &res}
	if !res.Finite() {
		runErr = ErrNonFinite
		ev.Result = nil
		fields["balance"] = fmt.Sprint(res.Final.Balance)
		fields["income"] = fmt.Sprint(res.Final.Income)
	}
	if runErr != nil {
		ev.Error = runErr.Error()
	}

	if s.cfg.Recorder != nil && ev.Result != nil {
		id, err := s.cfg.Recorder.SaveRun(res)
		if err != nil {
			s.log.WithError(err).Warn("saving run to history")
		} else {
			ev.RunID = id.String()
			fields["run_id"] = ev.RunID
		}
	}

	s.mu.Lock()
	s.projections++
	if errors.Is(runErr, projection.ErrTargetUnreachable) {
		s.unreachable++
	}
	if runErr != nil {
		s.lastError = runErr.Error()
	}
	s.nextEventID++
	ev.ID = s.nextEventID
	s.mu.Unlock()

	if runErr != nil {
		s.log.WithFields(fields).WithError(runErr).Warn("projection incomplete")
	} else {
		s.log.WithFields(fields).Info("projection")
	}

	s.publishEvent(ev)
	return ev, runErr
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		Addr:            s.cfg.Addr,
		Projections:     s.projections,
		Unreachable:     s.unreachable,
		Rejected:        s.rejected,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		HistoryEnabled:  s.cfg.Recorder != nil,
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleProjections(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.RLock()
		events := make([]Event, len(s.events))
		copy(events, s.events)
		s.mu.RUnlock()
		writeJSON(w, http.StatusOK, events)

	case http.MethodPost:
		params, err := s.decodeParams(w, r)
		if err != nil {
			s.mu.Lock()
			s.rejected++
			s.lastError = err.Error()
			s.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		ev, err := s.Project(params)
		status := http.StatusOK
		if errors.Is(err, projection.ErrTargetUnreachable) || errors.Is(err, ErrNonFinite) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, ev)

	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// decodeParams reads a Params body on top of the configured defaults.
func (s *Service) decodeParams(w http.ResponseWriter, r *http.Request) (model.Params, error) {
	params := s.cfg.Defaults

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		return model.Params{}, fmt.Errorf("decoding params: %w", err)
	}

	if params.DurationMonths > s.cfg.MaxDurationMonths {
		return model.Params{}, fmt.Errorf("duration_months %d exceeds limit %d",
			params.DurationMonths, s.cfg.MaxDurationMonths)
	}
	return params, nil
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	writeSSE(w, Event{Type: "ready", Timestamp: time.Now()})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(map[string]string{"error": "encoding response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// statusWriter records the response code for request logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}
