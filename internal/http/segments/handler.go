package segments

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/retailboard/internal/dashboard"
	"github.com/MrJamesThe3rd/retailboard/internal/export"
	"github.com/MrJamesThe3rd/retailboard/internal/http/respond"
	"github.com/MrJamesThe3rd/retailboard/internal/segment"
	"github.com/MrJamesThe3rd/retailboard/internal/session"
)

type Handler struct {
	sessions  *session.Manager
	dashboard *dashboard.Service
}

func NewHandler(sessions *session.Manager, dash *dashboard.Service) *Handler {
	return &Handler{sessions: sessions, dashboard: dash}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/scatter", h.scatter)
}

type recordResponse struct {
	CustomerID   string  `json:"customer_id"`
	Recency      int     `json:"recency"`
	Frequency    int     `json:"frequency"`
	Monetary     float64 `json:"monetary"`
	MonetaryLog  float64 `json:"monetary_log"`
	Segment      int     `json:"segment"`
	LastPurchase string  `json:"last_purchase"`
}

type segmentsResponse struct {
	Records      []recordResponse `json:"records"`
	Clusters     int              `json:"clusters"`
	Status       segment.Status   `json:"status"`
	ZeroVariance []string         `json:"zero_variance,omitempty"`
	Source       respond.Status   `json:"source"`
}

type scatterResponse struct {
	Axes   []string              `json:"axes"`
	Points []export.ScatterPoint `json:"points"`
	Status segment.Status        `json:"status"`
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) (segment.Result, bool) {
	ds, err := h.sessions.Dataset(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return segment.Result{}, false
	}

	res, err := h.dashboard.Segments(r.Context(), ds)
	if err != nil {
		respond.Error(w, r, err)
		return segment.Result{}, false
	}

	return res, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}

	resp := segmentsResponse{
		Records:      make([]recordResponse, 0, len(res.Records)),
		Clusters:     res.Clusters,
		Status:       res.Status,
		ZeroVariance: res.ZeroVariance,
		Source:       respond.FromStatus(res.Source),
	}

	for _, rec := range res.Records {
		resp.Records = append(resp.Records, recordResponse{
			CustomerID:   rec.CustomerID,
			Recency:      rec.Recency,
			Frequency:    rec.Frequency,
			Monetary:     rec.Monetary.InexactFloat64(),
			MonetaryLog:  rec.MonetaryLog,
			Segment:      rec.Segment,
			LastPurchase: rec.LastPurchase.Format("2006-01-02 15:04:05"),
		})
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) scatter(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}

	respond.JSON(w, http.StatusOK, scatterResponse{
		Axes:   []string{"recency", "frequency", "monetary"},
		Points: export.Scatter(res),
		Status: res.Status,
	})
}
