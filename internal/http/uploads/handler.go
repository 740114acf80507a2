package uploads

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/retailboard/internal/dataset"
	"github.com/MrJamesThe3rd/retailboard/internal/http/respond"
	"github.com/MrJamesThe3rd/retailboard/internal/session"
	"github.com/MrJamesThe3rd/retailboard/internal/upload"
)

type Handler struct {
	svc *upload.Service
}

func NewHandler(svc *upload.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
}

type uploadResponse struct {
	ID        uuid.UUID      `json:"id"`
	Filename  string         `json:"filename"`
	Format    dataset.Format `json:"format"`
	RawRows   int            `json:"raw_rows"`
	Rows      int            `json:"rows"`
	Columns   int            `json:"columns"`
	Degraded  bool           `json:"degraded"`
	CreatedAt time.Time      `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, ok := session.ID(r.Context())
	if !ok {
		respond.JSON(w, http.StatusOK, []uploadResponse{})
		return
	}

	uploads, err := h.svc.History(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]uploadResponse, 0, len(uploads))
	for _, u := range uploads {
		resp = append(resp, uploadResponse{
			ID:        u.ID,
			Filename:  u.Filename,
			Format:    u.Format,
			RawRows:   u.RawRows,
			Rows:      u.Rows,
			Columns:   u.Columns,
			Degraded:  u.Degraded,
			CreatedAt: u.CreatedAt,
		})
	}

	respond.JSON(w, http.StatusOK, resp)
}
