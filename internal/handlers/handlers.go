package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"

	"brewlog/internal/atproto"
	"brewlog/internal/brewlog"
	"brewlog/internal/imaging"
	"brewlog/internal/models"
	"brewlog/internal/tastewheel"

	"github.com/rs/zerolog"
)

// Config holds handler configuration options
type Config struct {
	// ScratchDir receives uploaded photos before they are normalized.
	// Empty means os.TempDir().
	ScratchDir string
}

type Handler struct {
	store  *brewlog.Store
	wheel  tastewheel.Wheel
	config Config
}

func NewHandler(store *brewlog.Store, wheel tastewheel.Wheel) *Handler {
	return &Handler{store: store, wheel: wheel}
}

// SetConfig sets the handler configuration
func (h *Handler) SetConfig(config Config) {
	h.config = config
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps store errors to HTTP statuses. Anything unrecognised is a
// 500 and gets logged with the request logger.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var corrupt *brewlog.StorageCorruptionError
	switch {
	case errors.Is(err, brewlog.ErrEntryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidEntry):
		status = http.StatusBadRequest
	case errors.Is(err, brewlog.ErrDuplicateID):
		status = http.StatusConflict
	case errors.As(err, &corrupt):
		zerolog.Ctx(r.Context()).Error().Err(err).Str("key", corrupt.Key).Msg("Brew log storage is corrupt")
		writeJSON(w, status, errorResponse{Error: "brew log storage is corrupt"})
		return
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// List all brews
func (h *Handler) HandleBrewList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.LoadAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) HandleBrewGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid brew id")
		return
	}
	entry, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Create a brew. A zero or missing id is assigned by the store.
func (h *Handler) HandleBrewCreate(w http.ResponseWriter, r *http.Request) {
	var entry models.BrewLogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		badRequest(w, err.Error())
		return
	}
	stored, err := h.store.Add(r.Context(), entry)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// Update a brew. The id in the path wins over any id in the body.
func (h *Handler) HandleBrewUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid brew id")
		return
	}
	var entry models.BrewLogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		badRequest(w, err.Error())
		return
	}
	entry.ID = id
	if err := h.store.Update(r.Context(), entry); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete a brew. Deleting an unknown id succeeds with deleted=false.
func (h *Handler) HandleBrewDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid brew id")
		return
	}
	result, err := h.store.DeleteByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type photoResponse struct {
	Entry     models.BrewLogEntry `json:"entry"`
	Persisted bool                `json:"persisted"`
	Warning   string              `json:"warning,omitempty"`
}

// HandleBrewPhoto accepts a multipart "photo" upload, stores it durably and
// points the entry at it, removing the photo it replaces. If the durable copy
// fails the entry still gets the normalized scratch copy and persisted=false.
func (h *Handler) HandleBrewPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid brew id")
		return
	}
	if _, err := h.store.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		badRequest(w, "photo is required: "+err.Error())
		return
	}
	defer file.Close()

	upload, err := os.CreateTemp(h.config.ScratchDir, "upload-*."+imaging.ExtensionOf(header.Filename, "jpg"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer os.Remove(upload.Name())
	if _, err := io.Copy(upload, file); err != nil {
		upload.Close()
		badRequest(w, "failed to read photo: "+err.Error())
		return
	}
	if err := upload.Close(); err != nil {
		writeError(w, r, err)
		return
	}

	path, picked, err := h.store.PickAndStoreImage(r.Context(), imaging.StaticPicker{URI: upload.Name()}, id)
	resp := photoResponse{Persisted: err == nil}
	var persistErr *brewlog.ImagePersistError
	switch {
	case err == nil:
	case errors.As(err, &persistErr) && path != "":
		resp.Warning = err.Error()
	default:
		badRequest(w, err.Error())
		return
	}
	if !picked {
		badRequest(w, "no photo selected")
		return
	}

	entry, err := h.store.AttachImage(r.Context(), id, path)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp.Entry = entry
	writeJSON(w, http.StatusOK, resp)
}

// HandleBrewExport returns every entry as AT Protocol records owned by the
// did query parameter. Entries that cannot be converted are left out and
// counted in X-Skipped-Entries.
func (h *Handler) HandleBrewExport(w http.ResponseWriter, r *http.Request) {
	did, err := atproto.ParseDID(r.URL.Query().Get("did"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	entries, err := h.store.LoadAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	records, skipped := atproto.ExportEntries(did, entries)
	if len(skipped) > 0 {
		zerolog.Ctx(r.Context()).Warn().Interface("skipped", skipped).Msg("Some brews could not be exported")
		w.Header().Set("X-Skipped-Entries", strconv.Itoa(len(skipped)))
	}

	w.Header().Set("Content-Disposition", "attachment; filename=brewlog-records.json")
	writeJSON(w, http.StatusOK, records)
}

type wheelResponse struct {
	Radius   float64                           `json:"radius"`
	Rings    [tastewheel.Rings]tastewheel.Band `json:"rings"`
	Segments []tastewheel.SegmentLayout        `json:"segments"`
}

// HandleWheel returns the wheel layout, filled from ?entry= when given.
func (h *Handler) HandleWheel(w http.ResponseWriter, r *http.Request) {
	var rating models.TasteRating
	if raw := r.URL.Query().Get("entry"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(w, "invalid entry id")
			return
		}
		entry, err := h.store.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		rating = entry.TasteRating
	}
	writeJSON(w, http.StatusOK, wheelResponse{
		Radius:   h.wheel.Radius,
		Rings:    h.wheel.RingBands(),
		Segments: h.wheel.Layout(rating),
	})
}

type hitRequest struct {
	DX      float64 `json:"dx"`
	DY      float64 `json:"dy"`
	EntryID int64   `json:"entryId,omitempty"`
}

type hitResponse struct {
	Hit   bool                 `json:"hit"`
	Taste *tastewheel.Hit      `json:"taste,omitempty"`
	Entry *models.BrewLogEntry `json:"entry,omitempty"`
}

// HandleWheelHit classifies a tap. With entryId the hit is applied to that
// entry's taste rating and saved.
func (h *Handler) HandleWheelHit(w http.ResponseWriter, r *http.Request) {
	var req hitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err.Error())
		return
	}

	hit, ok := h.wheel.HitTest(req.DX, req.DY)
	if !ok {
		writeJSON(w, http.StatusOK, hitResponse{Hit: false})
		return
	}
	resp := hitResponse{Hit: true, Taste: &hit}

	if req.EntryID != 0 {
		entry, err := h.store.Modify(r.Context(), req.EntryID, func(e *models.BrewLogEntry) error {
			return hit.Apply(&e.TasteRating)
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Entry = &entry
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleHealth reports whether the brew log can be read.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.LoadAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}
