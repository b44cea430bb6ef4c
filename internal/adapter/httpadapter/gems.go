package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/hidden-gems-service/internal/auth"
	"github.com/couchcryptid/hidden-gems-service/internal/domain"
)

// Multipart bodies above the image limit plus this much form overhead are
// rejected before parsing.
const formOverhead = 1 << 20

// GemReader is the read side of the gem store.
type GemReader interface {
	Snapshot() []domain.Gem
	Get(id string) (domain.Gem, bool)
}

// Refresher reloads the gem list.
type Refresher interface {
	FetchAndEnrich(ctx context.Context) error
}

// Submitter accepts new gems.
type Submitter interface {
	Submit(ctx context.Context, sub domain.Submission) (domain.Gem, error)
	Submitting() bool
}

// GemHandler serves the /gems routes.
type GemHandler struct {
	store         GemReader
	refresher     Refresher
	submitter     Submitter
	maxImageBytes int64
	logger        *slog.Logger
}

// NewGemHandler creates the gem route handler.
func NewGemHandler(store GemReader, refresher Refresher, submitter Submitter, maxImageBytes int64, logger *slog.Logger) *GemHandler {
	return &GemHandler{
		store:         store,
		refresher:     refresher,
		submitter:     submitter,
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

func (h *GemHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /gems", h.handleList)
	mux.HandleFunc("GET /gems/markers", h.handleMarkers)
	mux.HandleFunc("GET /gems/submitting", h.handleSubmitting)
	mux.HandleFunc("GET /gems/{id}", h.handleGet)
	mux.HandleFunc("POST /gems", h.handleSubmit)
	mux.HandleFunc("POST /gems/refresh", h.handleRefresh)
}

func (h *GemHandler) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"gems": h.store.Snapshot()})
}

func (h *GemHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	g, ok := h.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "gem not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"gem": g})
}

func (h *GemHandler) handleMarkers(w http.ResponseWriter, _ *http.Request) {
	fc := domain.MarkersGeoJSON(domain.Markers(h.store.Snapshot()))
	data, err := json.Marshal(fc)
	if err != nil {
		h.logger.Error("encode markers", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to encode markers")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client may have gone away
}

func (h *GemHandler) handleSubmitting(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"submitting": h.submitter.Submitting()})
}

func (h *GemHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.refresher.FetchAndEnrich(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, domain.ErrListFetchFailed.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": len(h.store.Snapshot())})
}

func (h *GemHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	limit := h.maxImageBytes + formOverhead
	if r.ContentLength > limit {
		writeError(w, http.StatusRequestEntityTooLarge, domain.ErrImageTooLarge.Error())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(formOverhead); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, domain.ErrImageTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	sub := domain.Submission{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Address:     r.FormValue("address"),
		Lat:         r.FormValue("lat"),
		Lng:         r.FormValue("lng"),
	}
	img, err := readImage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image")
		return
	}
	sub.Image = img

	ctx := auth.WithToken(r.Context(), auth.BearerToken(r))
	g, err := h.submitter.Submit(ctx, sub)
	if err != nil {
		status, msg := submitErrorStatus(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"gem": g})
}

func readImage(r *http.Request) (*domain.ImageFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &domain.ImageFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// submitErrorStatus maps a submission failure to a status and the
// user-facing message, without the wrapped cause.
func submitErrorStatus(err error) (int, string) {
	for _, c := range []struct {
		target error
		status int
	}{
		{domain.ErrAuthRequired, http.StatusUnauthorized},
		{domain.ErrNameRequired, http.StatusBadRequest},
		{domain.ErrImageTooLarge, http.StatusBadRequest},
		{domain.ErrUploadFailed, http.StatusBadGateway},
		{domain.ErrCreateFailed, http.StatusBadGateway},
	} {
		if errors.Is(err, c.target) {
			return c.status, c.target.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
