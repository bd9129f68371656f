package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"coeating/internal/events"
	"coeating/internal/models"
	"coeating/internal/tests/mocks"
)

func waitForPhase(t *testing.T, ch <-chan models.RequestState, token uint64, phase models.ScanPhase) models.RequestState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case state := <-ch:
			if state.Token == token && state.Phase == phase {
				return state
			}
		case <-deadline:
			t.Fatalf("timed out waiting for phase %s (token %d)", phase, token)
		}
	}
}

func TestScanService_InitialStateIsIdle(t *testing.T) {
	svc := NewScanService(context.Background(), &mocks.ScanRepositoryMock{}, &mocks.AnalyzerMock{})

	state := svc.State()
	require.Equal(t, models.ScanIdle, state.Phase)
	require.Empty(t, svc.History())
}

func TestScanService_SubmitSuccess(t *testing.T) {
	repo := &mocks.ScanRepositoryMock{}
	analyzer := &mocks.AnalyzerMock{
		AnalyzeImageFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
			return "Product Type: Snack Bar\n\nIngredients Assessment:\nContains oats and honey.", nil
		},
	}
	svc := NewScanService(context.Background(), repo, analyzer)

	states, cancel := svc.Subscribe()
	defer cancel()
	require.Equal(t, models.ScanIdle, (<-states).Phase)

	token := svc.Submit(context.Background(), []byte("jpeg-bytes"), "image/jpeg", "/tmp/label.jpg", models.PreferenceSet{DietaryPreferences: "vegan"})

	waitForPhase(t, states, token, models.ScanInFlight)
	state := waitForPhase(t, states, token, models.ScanSucceeded)

	require.Equal(t, "Product Type: Snack Bar\n\nIngredients Assessment:\nContains oats and honey.", state.Output)
	require.False(t, state.Pass)

	history := svc.History()
	require.Len(t, history, 1)
	require.Equal(t, "Snack Bar", history[0].DisplayName)
	require.Equal(t, state.Output, history[0].Details)
	require.Equal(t, "/tmp/label.jpg", history[0].ImagePath)
	require.NotZero(t, history[0].ID)

	// The in-memory history mirrors the store field for field, ID included.
	stored, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, stored, history)
}

func TestScanService_SubmitPassHeuristic(t *testing.T) {
	repo := &mocks.ScanRepositoryMock{}
	analyzer := &mocks.AnalyzerMock{
		AnalyzeImageFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
			return "Product Type: Granola\n\nVerdict: this product is vegan-friendly.", nil
		},
	}
	svc := NewScanService(context.Background(), repo, analyzer)

	states, cancel := svc.Subscribe()
	defer cancel()

	token := svc.Submit(context.Background(), []byte("img"), "image/png", "", models.PreferenceSet{})
	state := waitForPhase(t, states, token, models.ScanSucceeded)
	require.True(t, state.Pass)
}

func TestScanService_SubmitUsesPreferencesInPrompt(t *testing.T) {
	var seenPrompt string
	analyzer := &mocks.AnalyzerMock{
		AnalyzeImageFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
			seenPrompt = prompt
			return "Product Type: Soap", nil
		},
	}
	svc := NewScanService(context.Background(), &mocks.ScanRepositoryMock{}, analyzer)

	states, cancel := svc.Subscribe()
	defer cancel()

	token := svc.Submit(context.Background(), []byte("img"), "image/jpeg", "", models.PreferenceSet{
		DietaryPreferences:  "halal, no alcohol",
		CosmeticPreferences: "fragrance free",
	})
	waitForPhase(t, states, token, models.ScanSucceeded)

	require.Contains(t, seenPrompt, "halal, no alcohol")
	require.Contains(t, seenPrompt, "fragrance free")
}

func TestScanService_SubmitAnalyzerError(t *testing.T) {
	repo := &mocks.ScanRepositoryMock{}
	analyzer := &mocks.AnalyzerMock{
		AnalyzeImageFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
			return "", errors.New("service unavailable")
		},
	}
	svc := NewScanService(context.Background(), repo, analyzer)

	states, cancel := svc.Subscribe()
	defer cancel()

	token := svc.Submit(context.Background(), []byte("img"), "image/jpeg", "", models.PreferenceSet{})

	waitForPhase(t, states, token, models.ScanInFlight)
	state := waitForPhase(t, states, token, models.ScanFailed)
	require.Equal(t, "service unavailable", state.Message)

	// Failed scans persist nothing, anywhere.
	require.Empty(t, repo.Records)
	require.Empty(t, svc.History())
}

func TestScanService_SubmitEmptyResponse(t *testing.T) {
	repo := &mocks.ScanRepositoryMock{}
	analyzer := &mocks.AnalyzerMock{
		AnalyzeImageFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
			return "   \n", nil
		},
	}
	svc := NewScanService(context.Background(), repo, analyzer)

	states, cancel := svc.Subscribe()
	defer cancel()

	token := svc.Submit(context.Background(), []byte("img"), "image/jpeg", "", models.PreferenceSet{})
	state := waitForPhase(t, states, token, models.ScanFailed)
	require.Equal(t, "response text was empty", state.Message)
	require.Empty(t, repo.Records)
}

func TestScanService_SubmitInsertFailure(t *testing.T) {
	repo := &mocks.ScanRepositoryMock{
		InsertFunc: func(ctx context.Context, rec *models.ScanRecord) error {
			return errors.New("disk full")
		},
	}
	analyzer := &mocks.AnalyzerMock{
		AnalyzeImageFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
			return "Product Type: Crackers", nil
		},
	}
	svc := NewScanService(context.Background(), repo, analyzer)

	states, cancel := svc.Subscribe()
	defer cancel()

	token := svc.Submit(context.Background(), []byte("img"), "image/jpeg", "", models.PreferenceSet{})
	state := waitForPhase(t, states, token, models.ScanFailed)
	require.Contains(t, state.Message, "persist scan")
	require.Empty(t, svc.History())
}

func TestScanService_SubmitWithoutAnalyzer(t *testing.T) {
	svc := NewScanService(context.Background(), &mocks.ScanRepositoryMock{}, nil)

	states, cancel := svc.Subscribe()
	defer cancel()

	token := svc.Submit(context.Background(), []byte("img"), "image/jpeg", "", models.PreferenceSet{})
	state := waitForPhase(t, states, token, models.ScanFailed)
	require.Equal(t, "no AI client configured", state.Message)
}

func TestScanService_LoadsHistoryInStoreOrder(t *testing.T) {
	repo := &mocks.ScanRepositoryMock{}
	repo.Seed(
		models.ScanRecord{ID: 1, DisplayName: "Granola", Details: "first"},
		models.ScanRecord{ID: 2, DisplayName: "Shampoo", Details: "second"},
		models.ScanRecord{ID: 3, DisplayName: "Tea", Details: "third"},
	)

	svc := NewScanService(context.Background(), repo, &mocks.AnalyzerMock{})

	first := svc.History()
	second := svc.History()
	require.Equal(t, first, second)
	require.Equal(t, []string{"Granola", "Shampoo", "Tea"}, []string{first[0].DisplayName, first[1].DisplayName, first[2].DisplayName})
}

func TestScanService_LoadHistoryFailureYieldsEmptyHistory(t *testing.T) {
	repo := &mocks.ScanRepositoryMock{
		ListFunc: func(ctx context.Context) ([]models.ScanRecord, error) {
			return nil, errors.New("corrupt table")
		},
	}

	svc := NewScanService(context.Background(), repo, &mocks.AnalyzerMock{})
	require.Empty(t, svc.History())
	require.Equal(t, models.ScanIdle, svc.State().Phase)
}

func TestScanService_DeleteScan(t *testing.T) {
	repo := &mocks.ScanRepositoryMock{}
	repo.Seed(
		models.ScanRecord{ID: 1, DisplayName: "Granola", Details: "first"},
		models.ScanRecord{ID: 2, DisplayName: "Shampoo", Details: "second"},
	)
	svc := NewScanService(context.Background(), repo, &mocks.AnalyzerMock{})

	require.NoError(t, svc.DeleteScan(context.Background(), 1))
	require.Len(t, svc.History(), 1)
	require.Equal(t, "Shampoo", svc.History()[0].DisplayName)
	require.Len(t, repo.Records, 1)

	// Deleting an unknown ID changes nothing and does not error.
	require.NoError(t, svc.DeleteScan(context.Background(), 99))
	require.Len(t, svc.History(), 1)
	require.Len(t, repo.Records, 1)
}

func TestScanService_DeleteScanStoreFailure(t *testing.T) {
	repo := &mocks.ScanRepositoryMock{
		DeleteFunc: func(ctx context.Context, id uint) error {
			return errors.New("database is locked")
		},
	}
	repo.Seed(models.ScanRecord{ID: 1, DisplayName: "Granola", Details: "first"})
	svc := NewScanService(context.Background(), repo, &mocks.AnalyzerMock{})

	err := svc.DeleteScan(context.Background(), 1)
	require.Error(t, err)
	// The history must not drop a record the store still holds.
	require.Len(t, svc.History(), 1)
}

func TestScanService_StaleResultDiscarded(t *testing.T) {
	discarded := make(chan events.Event, 16)
	events.SetCustomEmitter(func(ctx context.Context, name string, evt events.Event) {
		if name == events.ScanDiscarded {
			select {
			case discarded <- evt:
			default:
			}
		}
	})
	defer events.SetCustomEmitter(nil)

	started := make(chan struct{})
	release := make(chan struct{})
	repo := &mocks.ScanRepositoryMock{}
	analyzer := &mocks.AnalyzerMock{
		AnalyzeImageFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
			if string(image) == "slow" {
				close(started)
				<-release
				return "Product Type: Stale Result", nil
			}
			return "Product Type: Fresh Result", nil
		},
	}
	svc := NewScanService(context.Background(), repo, analyzer)

	states, cancel := svc.Subscribe()
	defer cancel()

	staleToken := svc.Submit(context.Background(), []byte("slow"), "image/jpeg", "", models.PreferenceSet{})
	<-started

	freshToken := svc.Submit(context.Background(), []byte("fast"), "image/jpeg", "", models.PreferenceSet{})
	waitForPhase(t, states, freshToken, models.ScanSucceeded)

	close(release)
	select {
	case evt := <-discarded:
		require.Equal(t, staleToken, evt.Token)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stale result to be discarded")
	}

	// The superseded request neither persisted a record nor touched the
	// published state.
	require.Len(t, svc.History(), 1)
	require.Equal(t, "Fresh Result", svc.History()[0].DisplayName)
	require.Equal(t, freshToken, svc.State().Token)
	require.Equal(t, models.ScanSucceeded, svc.State().Phase)
}
