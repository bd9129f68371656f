package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"coeating/internal/events"
	"coeating/internal/llm/client"
	"coeating/internal/models"
	"coeating/internal/repositories"
)

// ScanService drives one scan request to completion: it builds the prompt
// from the user's preferences, calls the model, persists the result and
// publishes the request lifecycle as observable state.
//
// Every Submit takes a monotonic token. A response is only persisted and
// published if its token is still the most recent one, so an overlapping
// submit can never be overwritten by a stale result.
type ScanService struct {
	scans    repositories.ScanRepository
	analyzer client.Analyzer

	mu      sync.Mutex
	latest  uint64
	state   models.RequestState
	history []models.ScanRecord
	subs    map[uint64]chan models.RequestState
	nextSub uint64
}

// NewScanService builds the orchestrator and loads stored scan history into
// memory. A failed load surfaces as an error event and an empty history; the
// service stays usable.
func NewScanService(ctx context.Context, scans repositories.ScanRepository, analyzer client.Analyzer) *ScanService {
	s := &ScanService{
		scans:    scans,
		analyzer: analyzer,
		state:    models.RequestState{Phase: models.ScanIdle},
		subs:     make(map[uint64]chan models.RequestState),
	}

	records, err := scans.List(ctx)
	if err != nil {
		events.Emit(ctx, events.ScanHistory, events.NewError(fmt.Sprintf("load scan history: %v", err)))
		return s
	}
	s.history = records
	return s
}

// SetAnalyzer installs the AI client. The app wires this lazily because most
// commands never talk to the model.
func (s *ScanService) SetAnalyzer(analyzer client.Analyzer) {
	s.mu.Lock()
	s.analyzer = analyzer
	s.mu.Unlock()
}

// State returns the currently published request state.
func (s *ScanService) State() models.RequestState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a snapshot of the in-memory scan history in completion order.
func (s *ScanService) History() []models.ScanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ScanRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Subscribe returns a channel that immediately receives the current state
// and then every transition, plus a func that cancels the subscription.
func (s *ScanService) Subscribe() (<-chan models.RequestState, func()) {
	ch := make(chan models.RequestState, 16)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.state
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Submit starts one scan request. InFlight is published synchronously before
// the request is dispatched; the model call and persistence run on a
// background goroutine so the caller is never blocked. The returned token
// identifies this request in published states.
func (s *ScanService) Submit(ctx context.Context, image []byte, mimeType, imagePath string, prefs models.PreferenceSet) uint64 {
	s.mu.Lock()
	s.latest++
	token := s.latest
	analyzer := s.analyzer
	s.setStateLocked(ctx, models.RequestState{Phase: models.ScanInFlight, Token: token})
	s.mu.Unlock()

	go s.run(ctx, token, analyzer, image, mimeType, imagePath, prefs)
	return token
}

func (s *ScanService) run(ctx context.Context, token uint64, analyzer client.Analyzer, image []byte, mimeType, imagePath string, prefs models.PreferenceSet) {
	if analyzer == nil {
		s.fail(ctx, token, "no AI client configured")
		return
	}

	prompt := client.BuildScanPrompt(prefs.DietaryPreferences, prefs.CosmeticPreferences)
	output, err := analyzer.AnalyzeImage(ctx, image, mimeType, prompt)
	if err != nil {
		s.fail(ctx, token, err.Error())
		return
	}

	details := strings.TrimSpace(output)
	if details == "" {
		// An empty response is indistinguishable from a null one; both fail
		// the request.
		s.fail(ctx, token, "response text was empty")
		return
	}

	s.complete(ctx, token, details, imagePath)
}

// complete persists the record and publishes success. Persistence happens
// strictly before the history append and before the state is published, all
// under one critical section so a competing submit cannot interleave between
// the staleness check and the publication.
func (s *ScanService) complete(ctx context.Context, token uint64, details, imagePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.latest {
		s.discardLocked(ctx, token)
		return
	}

	rec := models.ScanRecord{
		DisplayName: ExtractDisplayName(details),
		Details:     details,
		ImagePath:   imagePath,
	}
	if err := s.scans.Insert(ctx, &rec); err != nil {
		s.setStateLocked(ctx, models.RequestState{
			Phase:   models.ScanFailed,
			Token:   token,
			Message: fmt.Sprintf("persist scan: %v", err),
		})
		return
	}

	s.history = append(s.history, rec)
	s.setStateLocked(ctx, models.RequestState{
		Phase:  models.ScanSucceeded,
		Token:  token,
		Output: details,
		Pass:   OverallPass(details),
	})
}

func (s *ScanService) fail(ctx context.Context, token uint64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.latest {
		s.discardLocked(ctx, token)
		return
	}
	s.setStateLocked(ctx, models.RequestState{
		Phase:   models.ScanFailed,
		Token:   token,
		Message: message,
	})
}

func (s *ScanService) discardLocked(ctx context.Context, token uint64) {
	evt := events.NewWarn("discarding result of superseded scan request")
	evt.Token = token
	events.Emit(ctx, events.ScanDiscarded, evt)
}

// DeleteScan removes the record with the given ID from the store and from
// the in-memory history. An unknown ID is a no-op; only a store failure is
// an error.
func (s *ScanService) DeleteScan(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.scans.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete scan %d: %w", id, err)
	}
	for i, rec := range s.history {
		if rec.ID == id {
			s.history = append(s.history[:i], s.history[i+1:]...)
			break
		}
	}
	return nil
}

// setStateLocked publishes a state transition to subscribers and the event
// emitter. Callers must hold s.mu.
func (s *ScanService) setStateLocked(ctx context.Context, state models.RequestState) {
	s.state = state

	for _, sub := range s.subs {
		select {
		case sub <- state:
		default:
			// Subscriber is not draining; it keeps the terminal state via State().
		}
	}

	evt := events.NewInfo(string(state.Phase))
	switch state.Phase {
	case models.ScanSucceeded:
		evt = events.NewSuccess(string(state.Phase))
	case models.ScanFailed:
		evt = events.NewError(state.Message)
	}
	evt.Token = state.Token
	events.Emit(ctx, events.ScanState, evt)
}
