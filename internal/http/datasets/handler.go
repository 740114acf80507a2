package datasets

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/retailboard/internal/dashboard"
	"github.com/MrJamesThe3rd/retailboard/internal/dataset"
	"github.com/MrJamesThe3rd/retailboard/internal/http/respond"
	"github.com/MrJamesThe3rd/retailboard/internal/session"
	"github.com/MrJamesThe3rd/retailboard/internal/upload"
)

type Handler struct {
	uploads   *upload.Service
	sessions  *session.Manager
	dashboard *dashboard.Service
	maxBytes  int64
}

func NewHandler(uploads *upload.Service, sessions *session.Manager, dash *dashboard.Service, maxBytes int64) *Handler {
	return &Handler{
		uploads:   uploads,
		sessions:  sessions,
		dashboard: dash,
		maxBytes:  maxBytes,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.upload)
	r.Get("/current", h.current)
}

type previewResponse struct {
	ID         uuid.UUID         `json:"id"`
	Filename   string            `json:"filename"`
	Format     dataset.Format    `json:"format"`
	Charset    string            `json:"charset,omitempty"`
	LoadedAt   time.Time         `json:"loaded_at"`
	Columns    []string          `json:"columns"`
	Rows       [][]string        `json:"rows"`
	Schema     map[string]string `json:"schema"`
	Notes      []respond.Note    `json:"notes"`
	Dropped    map[string]int    `json:"dropped"`
	RawRows    int               `json:"raw_rows"`
	CleanRows  int               `json:"clean_rows"`
	PreviewLen int               `json:"preview_rows"`
}

func (h *Handler) toPreview(ds *upload.Dataset) previewResponse {
	p := h.dashboard.Preview(ds)

	resp := previewResponse{
		ID:         ds.Upload.ID,
		Filename:   p.Filename,
		Format:     ds.Upload.Format,
		Charset:    p.Charset,
		LoadedAt:   ds.Upload.CreatedAt,
		Columns:    p.Columns,
		Rows:       p.Rows,
		Schema:     make(map[string]string, len(p.Schema)),
		Notes:      respond.Notes(p.Notes),
		Dropped:    make(map[string]int, len(p.Dropped)),
		RawRows:    p.RawRows,
		CleanRows:  p.Total,
		PreviewLen: len(p.Rows),
	}

	for role, name := range p.Schema {
		resp.Schema[string(role)] = name
	}

	for reason, n := range p.Dropped {
		resp.Dropped[string(reason)] = n
	}

	return resp
}

// upload ingests the multipart "file" field into the caller's session.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, r, upload.ErrTooLarge)
			return
		}

		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)

		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	id, _ := session.ID(r.Context())

	ds, err := h.uploads.Ingest(r.Context(), id, header.Filename, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.sessions.Attach(r.Context(), ds); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, h.toPreview(ds))
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	ds, err := h.sessions.Dataset(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.toPreview(ds))
}
