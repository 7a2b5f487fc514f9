package brewlog

import (
	"context"
	"fmt"
	"path/filepath"

	"brewlog/internal/imaging"
	"brewlog/internal/models"
)

// ValidateImage returns path if it is remote or exists locally, otherwise the
// placeholder. It never fails; filesystem errors also map to the placeholder.
func (s *Store) ValidateImage(ctx context.Context, path string) string {
	if models.IsRemoteImage(path) {
		return path
	}
	if path == "" {
		return s.placeholder
	}
	exists, err := s.fs.Exists(ctx, path)
	if err != nil {
		s.logger.Warn().Err(err).Str("image", path).Msg("Failed to check brew log photo, using placeholder")
		return s.placeholder
	}
	if !exists {
		return s.placeholder
	}
	return path
}

// ImagesDir is where durable copies of photos are kept.
func (s *Store) ImagesDir() string {
	return filepath.Join(s.fs.DocumentsDir(), imagesDirName)
}

// StoreImagePermanently copies sourceURI into the images directory and
// returns the new path.
//
// It fails open: on any error the returned string is sourceURI itself and the
// error is an *ImagePersistError. Callers that prefer a working but
// unpersisted photo over none can use the returned path either way.
func (s *Store) StoreImagePermanently(ctx context.Context, sourceURI string, ownerID int64) (string, error) {
	dest, err := s.persistImage(ctx, sourceURI, ownerID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("entry_id", ownerID).Str("source", sourceURI).
			Msg("Failed to persist photo, keeping original URI")
		return sourceURI, err
	}
	return dest, nil
}

func (s *Store) persistImage(ctx context.Context, sourceURI string, ownerID int64) (string, error) {
	dir := s.ImagesDir()
	ext := imaging.ExtensionOf(sourceURI, "jpg")
	millis := s.now().UnixMilli()
	destFor := func(ms int64) string {
		return filepath.Join(dir, fmt.Sprintf("brew_%d_%d.%s", ownerID, ms, ext))
	}
	dest := destFor(millis)

	fail := func(err error) (string, error) {
		return "", &ImagePersistError{Source: sourceURI, Destination: dest, Err: err}
	}

	exists, err := s.fs.Exists(ctx, dir)
	if err != nil {
		return fail(err)
	}
	if !exists {
		if err := s.fs.MakeDir(ctx, dir, true); err != nil {
			return fail(err)
		}
	}

	// Two photos for one entry within the same millisecond must not share a
	// file, or replacing one would delete the other.
	for {
		taken, err := s.fs.Exists(ctx, dest)
		if err != nil {
			return fail(err)
		}
		if !taken {
			break
		}
		millis++
		dest = destFor(millis)
	}

	if err := s.fs.Copy(ctx, sourceURI, dest); err != nil {
		return fail(err)
	}

	copied, err := s.fs.Exists(ctx, dest)
	if err != nil {
		return fail(err)
	}
	if !copied {
		return fail(fmt.Errorf("copy reported success but %s is missing", dest))
	}
	return dest, nil
}

// PickAndStoreImage asks picker for a photo, normalizes it to JPEG and stores
// it durably for ownerID. picked is false when the user cancelled.
//
// Like StoreImagePermanently, a failed copy still returns a usable path (the
// normalized scratch file) alongside the *ImagePersistError.
func (s *Store) PickAndStoreImage(ctx context.Context, picker imaging.Picker, ownerID int64) (path string, picked bool, err error) {
	res, err := picker.PickImage(ctx)
	if err != nil {
		return "", false, fmt.Errorf("pick image: %w", err)
	}
	if res.Cancelled {
		return "", false, nil
	}

	normalized, err := s.normalizer.Normalize(ctx, res.URI, imaging.DefaultOptions)
	if err != nil {
		return "", true, fmt.Errorf("normalize image: %w", err)
	}

	stored, err := s.StoreImagePermanently(ctx, normalized, ownerID)
	if err != nil {
		return stored, true, err
	}
	if rmErr := s.fs.Delete(ctx, normalized); rmErr != nil {
		s.logger.Debug().Err(rmErr).Str("path", normalized).Msg("Failed to remove normalized scratch image")
	}
	return stored, true, nil
}
