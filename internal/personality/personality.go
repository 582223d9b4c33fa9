// Package personality tracks the slowly-evolving per-locale traits that
// flavor future script generation. State advances only after an episode
// completes, and writes for the same locale are serialized so two jobs
// cannot interleave a read-modify-write.
package personality

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"castpress/internal/locales"
)

// Traits the advancement step nudges. Values live in [0,1].
const (
	TraitEnthusiasm = "enthusiasm"
	TraitCuriosity  = "curiosity"
	TraitSkepticism = "skepticism"
	TraitHumor      = "humor"
	TraitCalm       = "calm"
)

// advancement step size per episode, scaled by signal strength.
const traitStep = 0.05

// State is one locale's personality record.
type State struct {
	Locale       string
	EpisodeCount int
	Traits       map[string]float64
	Paused       bool
	UpdatedAt    time.Time
}

// Store persists personality state in the shared job database.
type Store struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore wraps an open database handle. The handle is shared with the
// job store; this store only touches the personality_state table.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, locks: make(map[string]*sync.Mutex)}
}

// localeLock serializes advancement per locale. Different locales may
// advance concurrently.
func (s *Store) localeLock(locale string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[locale]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[locale] = lock
	}
	return lock
}

// Get loads a locale's state, returning a fresh neutral record when
// none has been persisted yet.
func (s *Store) Get(ctx context.Context, locale string) (*State, error) {
	locale, err := locales.NormalizeSupported(locale)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT locale, episode_count, traits_json, paused, updated_at FROM personality_state WHERE locale = ?`,
		locale)

	var (
		state      State
		traitsJSON string
		updatedAt  string
	)
	err = row.Scan(&state.Locale, &state.EpisodeCount, &traitsJSON, &state.Paused, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultState(locale), nil
	}
	if err != nil {
		return nil, fmt.Errorf("personality: load %s: %w", locale, err)
	}
	if err := json.Unmarshal([]byte(traitsJSON), &state.Traits); err != nil {
		return nil, fmt.Errorf("personality: decode traits for %s: %w", locale, err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		state.UpdatedAt = ts
	}
	return &state, nil
}

// SetPaused toggles advancement for a locale without touching traits.
func (s *Store) SetPaused(ctx context.Context, locale string, paused bool) error {
	locale, err := locales.NormalizeSupported(locale)
	if err != nil {
		return err
	}
	state, err := s.Get(ctx, locale)
	if err != nil {
		return err
	}
	state.Paused = paused
	return s.save(ctx, state)
}

// Advance feeds one completed episode's script into the locale's
// state: episode count increments and traits drift toward the tone the
// script actually carried. Paused locales are left untouched.
func (s *Store) Advance(ctx context.Context, locale, scriptText string) (*State, error) {
	locale, err := locales.NormalizeSupported(locale)
	if err != nil {
		return nil, err
	}

	lock := s.localeLock(locale)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.Get(ctx, locale)
	if err != nil {
		return nil, err
	}
	if state.Paused {
		return state, nil
	}

	state.EpisodeCount++
	applySignals(state.Traits, measureSignals(scriptText))
	state.UpdatedAt = time.Now().UTC()

	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Store) save(ctx context.Context, state *State) error {
	traitsJSON, err := json.Marshal(state.Traits)
	if err != nil {
		return fmt.Errorf("personality: encode traits: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO personality_state (locale, episode_count, traits_json, paused, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(locale) DO UPDATE SET
			episode_count = excluded.episode_count,
			traits_json = excluded.traits_json,
			paused = excluded.paused,
			updated_at = excluded.updated_at`,
		state.Locale, state.EpisodeCount, string(traitsJSON), state.Paused,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("personality: save %s: %w", state.Locale, err)
	}
	return nil
}

func defaultState(locale string) *State {
	return &State{
		Locale: locale,
		Traits: map[string]float64{
			TraitEnthusiasm: 0.5,
			TraitCuriosity:  0.5,
			TraitSkepticism: 0.5,
			TraitHumor:      0.5,
			TraitCalm:       0.5,
		},
	}
}

// signal markers per trait, matched case-insensitively against the
// script text. Emotion tags are the strongest signal the script carries
// about its own tone.
var traitMarkers = map[string][]string{
	TraitEnthusiasm: {"[excitedly]", "[enthusiastically]", "[cheerfully]", "!"},
	TraitCuriosity:  {"[curiously]", "[thoughtfully]", "?"},
	TraitSkepticism: {"[skeptically]", "[seriously]"},
	TraitHumor:      {"[laughing]", "[dramatically]"},
	TraitCalm:       {"[calmly]", "[whispering]", "[sighing]"},
}

// measureSignals returns a per-trait strength in [0,1] derived from
// marker frequency relative to script length.
func measureSignals(scriptText string) map[string]float64 {
	lowered := strings.ToLower(scriptText)
	lineCount := strings.Count(lowered, "\n") + 1

	signals := make(map[string]float64, len(traitMarkers))
	for trait, markers := range traitMarkers {
		count := 0
		for _, marker := range markers {
			count += strings.Count(lowered, marker)
		}
		strength := float64(count) / float64(lineCount)
		if strength > 1 {
			strength = 1
		}
		signals[trait] = strength
	}
	return signals
}

// applySignals drifts each trait toward 1 proportionally to its signal
// and gently toward 0 when the signal is absent, clamped to [0,1].
func applySignals(traits map[string]float64, signals map[string]float64) {
	for trait, strength := range signals {
		current := traits[trait]
		if strength > 0 {
			current += traitStep * strength
		} else {
			current -= traitStep / 2
		}
		if current > 1 {
			current = 1
		}
		if current < 0 {
			current = 0
		}
		traits[trait] = current
	}
}
