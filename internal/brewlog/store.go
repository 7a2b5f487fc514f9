package brewlog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"brewlog/internal/database"
	"brewlog/internal/files"
	"brewlog/internal/imaging"
	"brewlog/internal/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultKey is the persistence key holding the whole collection
	DefaultKey = "brewLogEntries"

	// DefaultPlaceholder replaces images whose local file has gone missing
	DefaultPlaceholder = "assets/placeholder.jpg"

	imagesDirName = "images"
)

// Store owns the brew log collection and the photos tied to its entries.
// The whole collection lives under a single key, so every read and write
// touches every entry. Mutations within one Store are serialized; writers
// in other processes are not coordinated.
type Store struct {
	kv          database.Store
	fs          files.FileSystem
	normalizer  imaging.Normalizer
	key         string
	placeholder string
	logger      zerolog.Logger
	now         func() time.Time

	mu sync.Mutex
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithPlaceholder(path string) Option {
	return func(s *Store) { s.placeholder = path }
}

func WithNormalizer(n imaging.Normalizer) Option {
	return func(s *Store) { s.normalizer = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store over the given key-value and filesystem providers.
func New(kv database.Store, fs files.FileSystem, opts ...Option) *Store {
	s := &Store{
		kv:          kv,
		fs:          fs,
		key:         DefaultKey,
		placeholder: DefaultPlaceholder,
		logger:      log.Logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.normalizer == nil {
		s.normalizer = imaging.JPEGNormalizer{}
	}
	return s
}

// Placeholder returns the image path substituted for missing local photos.
func (s *Store) Placeholder() string {
	return s.placeholder
}

// LoadAll returns every entry with its image validated. A missing collection
// is an empty list.
func (s *Store) LoadAll(ctx context.Context) ([]models.BrewLogEntry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Image = s.ValidateImage(ctx, entries[i].Image)
	}
	return entries, nil
}

// load reads the collection exactly as stored, without image validation.
func (s *Store) load(ctx context.Context) ([]models.BrewLogEntry, error) {
	payload, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read brew log: %w", err)
	}
	if !ok {
		return []models.BrewLogEntry{}, nil
	}

	entries, version, err := decodeEntries(payload)
	if err != nil {
		return nil, &StorageCorruptionError{Key: s.key, Err: err}
	}
	if version < SchemaVersion {
		s.logger.Debug().Int("version", version).Msg("Read brew log from older schema version")
	}
	return entries, nil
}

// SaveAll replaces the stored collection with entries.
func (s *Store) SaveAll(ctx context.Context, entries []models.BrewLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, entries)
}

func (s *Store) save(ctx context.Context, entries []models.BrewLogEntry) error {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", entries[i].ID, err)
		}
	}
	payload, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, payload); err != nil {
		return fmt.Errorf("failed to write brew log: %w", err)
	}
	return nil
}

// Get returns the first entry with the given id, image validated for display.
// Use Modify to change an entry based on its stored state.
func (s *Store) Get(ctx context.Context, id int64) (models.BrewLogEntry, error) {
	entries, err := s.LoadAll(ctx)
	if err != nil {
		return models.BrewLogEntry{}, err
	}
	if i := indexOf(entries, id); i >= 0 {
		return entries[i], nil
	}
	return models.BrewLogEntry{}, fmt.Errorf("%w: %d", ErrEntryNotFound, id)
}

// Add appends entry to the collection. A zero ID is assigned from the clock
// and an empty image becomes the placeholder. The stored entry is returned.
func (s *Store) Add(ctx context.Context, entry models.BrewLogEntry) (models.BrewLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return models.BrewLogEntry{}, err
	}

	switch {
	case entry.ID == 0:
		entry.ID = NextID(entries, s.now())
	case entry.ID < 0 || entry.ID > models.MaxEntryID:
		return models.BrewLogEntry{}, fmt.Errorf("%w: id %d outside [1, %d]", models.ErrInvalidEntry, entry.ID, models.MaxEntryID)
	case indexOf(entries, entry.ID) >= 0:
		return models.BrewLogEntry{}, fmt.Errorf("%w: %d", ErrDuplicateID, entry.ID)
	}
	if entry.Image == "" {
		entry.Image = s.placeholder
	}
	if entry.Date.IsZero() {
		entry.Date = models.Date{Time: s.now().UTC()}
	}
	if err := entry.Validate(); err != nil {
		return models.BrewLogEntry{}, err
	}

	if err := s.save(ctx, append(entries, entry)); err != nil {
		return models.BrewLogEntry{}, err
	}
	return entry, nil
}

// Update replaces the first entry whose ID matches entry.ID.
func (s *Store) Update(ctx context.Context, entry models.BrewLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(entries, entry.ID)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrEntryNotFound, entry.ID)
	}
	if entry.Image == "" {
		entry.Image = s.placeholder
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	entries[i] = entry
	return s.save(ctx, entries)
}

// Modify applies fn to the stored entry with the given id and saves the
// result, all under the store lock. fn sees the entry exactly as stored, so
// the placeholder substitution LoadAll does for display never leaks back into
// storage. The id cannot be changed. The saved entry is returned with its
// image validated.
func (s *Store) Modify(ctx context.Context, id int64, fn func(*models.BrewLogEntry) error) (models.BrewLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, _, err := s.modify(ctx, id, fn)
	if err != nil {
		return models.BrewLogEntry{}, err
	}
	updated.Image = s.ValidateImage(ctx, updated.Image)
	return updated, nil
}

// modify must be called with s.mu held. It returns the saved entry and the
// entry as it was before fn ran.
func (s *Store) modify(ctx context.Context, id int64, fn func(*models.BrewLogEntry) error) (updated, previous models.BrewLogEntry, err error) {
	entries, err := s.load(ctx)
	if err != nil {
		return updated, previous, err
	}
	i := indexOf(entries, id)
	if i < 0 {
		return updated, previous, fmt.Errorf("%w: %d", ErrEntryNotFound, id)
	}

	previous = entries[i]
	updated = previous
	if err := fn(&updated); err != nil {
		return models.BrewLogEntry{}, previous, err
	}
	updated.ID = id
	if updated.Image == "" {
		updated.Image = s.placeholder
	}
	if err := updated.Validate(); err != nil {
		return models.BrewLogEntry{}, previous, err
	}

	entries[i] = updated
	if err := s.save(ctx, entries); err != nil {
		return models.BrewLogEntry{}, previous, err
	}
	return updated, previous, nil
}

// AttachImage points the entry at path and removes the local photo it
// replaces. If the entry no longer exists the new photo is removed instead,
// since nothing would own it.
func (s *Store) AttachImage(ctx context.Context, id int64, path string) (models.BrewLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, previous, err := s.modify(ctx, id, func(e *models.BrewLogEntry) error {
		e.Image = path
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			s.discardImage(ctx, path, id)
		}
		return models.BrewLogEntry{}, err
	}
	if previous.Image != updated.Image {
		s.discardImage(ctx, previous.Image, id)
	}
	updated.Image = s.ValidateImage(ctx, updated.Image)
	return updated, nil
}

// discardImage removes a photo no entry points at any more. Failures are
// logged and otherwise ignored.
func (s *Store) discardImage(ctx context.Context, image string, id int64) {
	status, err := s.removeImage(ctx, image)
	if err != nil {
		s.logger.Warn().Err(err).Int64("entry_id", id).Str("image", image).
			Msg("Failed to remove replaced brew log photo")
		return
	}
	if status == CleanupRemoved {
		s.logger.Debug().Int64("entry_id", id).Str("image", image).Msg("Removed replaced brew log photo")
	}
}

// CleanupStatus describes what happened to an entry's local photo on delete.
type CleanupStatus string

const (
	// CleanupNone: the image was remote, the placeholder, or already gone.
	CleanupNone    CleanupStatus = "none"
	CleanupRemoved CleanupStatus = "removed"
	CleanupFailed  CleanupStatus = "failed"
)

// DeleteResult reports a delete. Cleanup failures never undo the delete.
type DeleteResult struct {
	Deleted    bool          `json:"deleted"`
	Cleanup    CleanupStatus `json:"cleanup"`
	CleanupErr error         `json:"-"`
}

// DeleteByID removes the first entry with id, then tries to remove its local
// photo. Deleting an id that is not present is a no-op.
func (s *Store) DeleteByID(ctx context.Context, id int64) (DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return DeleteResult{}, err
	}
	i := indexOf(entries, id)
	if i < 0 {
		return DeleteResult{Cleanup: CleanupNone}, nil
	}

	removed := entries[i]
	remaining := make([]models.BrewLogEntry, 0, len(entries)-1)
	remaining = append(remaining, entries[:i]...)
	remaining = append(remaining, entries[i+1:]...)

	if err := s.save(ctx, remaining); err != nil {
		return DeleteResult{}, err
	}

	result := DeleteResult{Deleted: true, Cleanup: CleanupNone}
	status, cleanupErr := s.removeImage(ctx, removed.Image)
	result.Cleanup = status
	if cleanupErr != nil {
		result.CleanupErr = cleanupErr
		s.logger.Warn().Err(cleanupErr).Int64("entry_id", id).Str("image", removed.Image).
			Msg("Failed to remove photo of deleted brew log entry")
	}
	return result, nil
}

func (s *Store) removeImage(ctx context.Context, image string) (CleanupStatus, error) {
	if image == "" || image == s.placeholder || models.IsRemoteImage(image) {
		return CleanupNone, nil
	}
	exists, err := s.fs.Exists(ctx, image)
	if err != nil {
		return CleanupFailed, err
	}
	if !exists {
		return CleanupNone, nil
	}
	if err := s.fs.Delete(ctx, image); err != nil {
		return CleanupFailed, err
	}
	return CleanupRemoved, nil
}

// NextID derives an id from now in milliseconds, moving past the largest
// existing id if the clock would collide with one.
func NextID(entries []models.BrewLogEntry, now time.Time) int64 {
	id := now.UnixMilli()
	for _, e := range entries {
		if e.ID >= id {
			id = e.ID + 1
		}
	}
	return id
}

func indexOf(entries []models.BrewLogEntry, id int64) int {
	for i := range entries {
		if entries[i].ID == id {
			return i
		}
	}
	return -1
}
