package personality

import (
	"context"
	"strings"
	"sync"
	"testing"

	"castpress/internal/testsupport"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	podcastStore := testsupport.MustOpenStore(t, cfg)
	return NewStore(podcastStore.DB())
}

func TestGetReturnsNeutralDefault(t *testing.T) {
	store := newTestStore(t)
	state, err := store.Get(context.Background(), "en")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.EpisodeCount != 0 {
		t.Errorf("episode count = %d", state.EpisodeCount)
	}
	for trait, value := range state.Traits {
		if value != 0.5 {
			t.Errorf("trait %s = %v, want 0.5", trait, value)
		}
	}
}

func TestAdvanceIncrementsAndDrifts(t *testing.T) {
	store := newTestStore(t)
	script := "HOST: [excitedly] This is amazing!\nGUEST: [enthusiastically] Absolutely!"

	state, err := store.Advance(context.Background(), "en", script)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if state.EpisodeCount != 1 {
		t.Errorf("episode count = %d, want 1", state.EpisodeCount)
	}
	if state.Traits[TraitEnthusiasm] <= 0.5 {
		t.Errorf("enthusiasm = %v, want > 0.5", state.Traits[TraitEnthusiasm])
	}
	if state.Traits[TraitHumor] >= 0.5 {
		t.Errorf("humor = %v, want < 0.5 (no humor markers)", state.Traits[TraitHumor])
	}

	// Persisted: a fresh read sees the advanced state.
	reloaded, err := store.Get(context.Background(), "en")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if reloaded.EpisodeCount != 1 {
		t.Errorf("reloaded episode count = %d", reloaded.EpisodeCount)
	}
}

func TestAdvancePausedIsNoOp(t *testing.T) {
	store := newTestStore(t)
	if err := store.SetPaused(context.Background(), "de", true); err != nil {
		t.Fatalf("SetPaused: %v", err)
	}
	state, err := store.Advance(context.Background(), "de", "HOST: [laughing] Ha!")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if state.EpisodeCount != 0 {
		t.Errorf("episode count = %d, want 0 while paused", state.EpisodeCount)
	}
}

func TestAdvanceRejectsUnsupportedLocale(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Advance(context.Background(), "tlh", "HOST: Hi."); err == nil {
		t.Error("expected error for unsupported locale")
	}
}

func TestAdvanceTraitsStayInRange(t *testing.T) {
	store := newTestStore(t)
	excited := strings.Repeat("HOST: [excitedly] Wow!\n", 5)
	for i := 0; i < 30; i++ {
		if _, err := store.Advance(context.Background(), "fr", excited); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	state, err := store.Get(context.Background(), "fr")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for trait, value := range state.Traits {
		if value < 0 || value > 1 {
			t.Errorf("trait %s = %v, out of [0,1]", trait, value)
		}
	}
}

func TestAdvanceSerializesPerLocale(t *testing.T) {
	store := newTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Advance(context.Background(), "es", "GUEST: [calmly] Sure."); err != nil {
				t.Errorf("Advance: %v", err)
			}
		}()
	}
	wg.Wait()

	state, err := store.Get(context.Background(), "es")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.EpisodeCount != 8 {
		t.Errorf("episode count = %d, want 8 (lost update)", state.EpisodeCount)
	}
}
