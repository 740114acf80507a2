package eda

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/retailboard/internal/aggregate"
	"github.com/MrJamesThe3rd/retailboard/internal/dashboard"
	"github.com/MrJamesThe3rd/retailboard/internal/http/respond"
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
	r.Get("/sales-over-time", h.salesOverTime)
	r.Get("/top-products", h.topProducts)
	r.Get("/countries", h.countries)
}

type dayResponse struct {
	Date  string  `json:"date"`
	Sales float64 `json:"sales"`
}

type seriesResponse struct {
	Days   []dayResponse  `json:"days"`
	Status respond.Status `json:"status"`
}

type itemResponse struct {
	Name  string  `json:"name"`
	Sales float64 `json:"sales"`
}

type rankingResponse struct {
	Items  []itemResponse `json:"items"`
	Status respond.Status `json:"status"`
}

func toRanking(r aggregate.Ranking) rankingResponse {
	resp := rankingResponse{
		Items:  make([]itemResponse, 0, len(r.Items)),
		Status: respond.FromStatus(r.Status),
	}

	for _, it := range r.Items {
		resp.Items = append(resp.Items, itemResponse{Name: it.Name, Sales: it.Sales.InexactFloat64()})
	}

	return resp
}

func (h *Handler) salesOverTime(w http.ResponseWriter, r *http.Request) {
	ds, err := h.sessions.Dataset(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	daily := h.dashboard.SalesOverTime(ds)

	resp := seriesResponse{
		Days:   make([]dayResponse, 0, len(daily.Days)),
		Status: respond.FromStatus(daily.Status),
	}

	for _, d := range daily.Days {
		resp.Days = append(resp.Days, dayResponse{Date: d.Date.Format("2006-01-02"), Sales: d.Sales.InexactFloat64()})
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	n := aggregate.DefaultTopN

	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}

		n = parsed
	}

	ds, err := h.sessions.Dataset(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toRanking(h.dashboard.TopProducts(ds, n)))
}

func (h *Handler) countries(w http.ResponseWriter, r *http.Request) {
	ds, err := h.sessions.Dataset(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toRanking(h.dashboard.Countries(ds)))
}
