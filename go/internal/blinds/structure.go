package blinds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/toondeboer/pokerkit/go/internal/kvstore"
	"github.com/toondeboer/pokerkit/go/internal/models"
)

const (
	keyCurrentIndex = "blinds.currentIndex"
	keyLevels       = "blinds.levels"
)

var ErrInvalidLevels = errors.New("invalid blind levels")

// Cursor points at the blind level currently in play.
type Cursor interface {
	// Index is 0-based.
	Index() int
	Current() models.BlindLevel
	// Next reports false on the last level.
	Next() (models.BlindLevel, bool)
	Advance(ctx context.Context) error
}

// Structure is the persisted blind schedule and its cursor.
type Structure struct {
	mu     sync.Mutex
	store  kvstore.Store
	levels []models.BlindLevel
	index  int
}

// NewStructure returns a structure holding the default levels. Call Load to
// restore the persisted state.
func NewStructure(store kvstore.Store) *Structure {
	return &Structure{
		store:  store,
		levels: models.DefaultBlindLevels(),
	}
}

// Load restores levels and index. Missing or corrupt values fall back to
// the defaults; a read error leaves the structure unchanged.
func (s *Structure) Load(ctx context.Context) error {
	values, err := s.store.MultiGet(ctx, []string{keyCurrentIndex, keyLevels})
	if err != nil {
		return fmt.Errorf("failed to load blinds: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	levels := models.DefaultBlindLevels()
	if raw := values[keyLevels]; raw != "" {
		var saved []models.BlindLevel
		if err := json.Unmarshal([]byte(raw), &saved); err != nil || validate(saved) != nil {
			log.Warn().Err(err).Msg("stored blind levels are unreadable - using defaults")
		} else {
			levels = saved
		}
	}

	index := 0
	if raw := values[keyCurrentIndex]; raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			index = parsed
		}
	}

	s.levels = levels
	s.index = clamp(index, len(levels))
	return nil
}

func (s *Structure) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Structure) Current() models.BlindLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[s.index]
}

func (s *Structure) Next() (models.BlindLevel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index+1 >= len(s.levels) {
		return models.BlindLevel{}, false
	}
	return s.levels[s.index+1], true
}

// Levels returns a copy of the schedule.
func (s *Structure) Levels() []models.BlindLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BlindLevel(nil), s.levels...)
}

// Advance moves to the next level, staying on the last one.
func (s *Structure) Advance(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = clamp(s.index+1, len(s.levels))
	log.Info().Int("level", s.index+1).Int("small", s.levels[s.index].Small).Int("big", s.levels[s.index].Big).Msg("blinds increased")
	return s.saveIndexLocked(ctx)
}

// Decrease moves back one level, staying on the first one.
func (s *Structure) Decrease(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = clamp(s.index-1, len(s.levels))
	log.Info().Int("level", s.index+1).Msg("blinds decreased")
	return s.saveIndexLocked(ctx)
}

// SetLevels replaces the schedule and restarts from the first level.
func (s *Structure) SetLevels(ctx context.Context, levels []models.BlindLevel) error {
	if err := validate(levels); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = append([]models.BlindLevel(nil), levels...)
	s.index = 0
	return s.saveLocked(ctx)
}

// AppendLevel extends the schedule by repeating the step between the last two levels.
func (s *Structure) AppendLevel(ctx context.Context) (models.BlindLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := s.levels[len(s.levels)-1]
	next := models.BlindLevel{Small: last.Small * 2, Big: last.Big * 2}
	if len(s.levels) >= 2 {
		prev := s.levels[len(s.levels)-2]
		next = models.BlindLevel{
			Small: last.Small + (last.Small - prev.Small),
			Big:   last.Big + (last.Big - prev.Big),
		}
	}
	if err := validate([]models.BlindLevel{next}); err != nil {
		return models.BlindLevel{}, err
	}

	s.levels = append(s.levels, next)
	return next, s.saveLocked(ctx)
}

// ResetToDefault restores the default schedule at the first level.
func (s *Structure) ResetToDefault(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = models.DefaultBlindLevels()
	s.index = 0
	return s.saveLocked(ctx)
}

func (s *Structure) saveIndexLocked(ctx context.Context) error {
	if err := s.store.MultiSet(ctx, map[string]string{
		keyCurrentIndex: strconv.Itoa(s.index),
	}); err != nil {
		return fmt.Errorf("failed to save blind index: %w", err)
	}
	return nil
}

func (s *Structure) saveLocked(ctx context.Context) error {
	encoded, err := json.Marshal(s.levels)
	if err != nil {
		return fmt.Errorf("failed to encode blind levels: %w", err)
	}
	if err := s.store.MultiSet(ctx, map[string]string{
		keyCurrentIndex: strconv.Itoa(s.index),
		keyLevels:       string(encoded),
	}); err != nil {
		return fmt.Errorf("failed to save blinds: %w", err)
	}
	return nil
}

func validate(levels []models.BlindLevel) error {
	if len(levels) == 0 {
		return fmt.Errorf("%w: at least one level is required", ErrInvalidLevels)
	}
	for i, level := range levels {
		if level.Small <= 0 || level.Big < level.Small {
			return fmt.Errorf("%w: level %d has %d / %d", ErrInvalidLevels, i+1, level.Small, level.Big)
		}
	}
	return nil
}

func clamp(index, n int) int {
	if index < 0 {
		return 0
	}
	if index >= n {
		return n - 1
	}
	return index
}
