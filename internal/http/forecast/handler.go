package forecast

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/retailboard/internal/dashboard"
	"github.com/MrJamesThe3rd/retailboard/internal/export"
	"github.com/MrJamesThe3rd/retailboard/internal/forecast"
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
	r.Get("/", h.forecast)
	r.Get("/export.xlsx", h.spreadsheet)
	r.Get("/report.txt", h.report)
}

type pointResponse struct {
	DS        string  `json:"ds"`
	Yhat      float64 `json:"yhat"`
	YhatLower float64 `json:"yhat_lower"`
	YhatUpper float64 `json:"yhat_upper"`
}

type forecastResponse struct {
	Points  []pointResponse `json:"points"`
	History int             `json:"history"`
	Horizon int             `json:"horizon"`
	Status  respond.Status  `json:"status"`
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) (forecast.Result, bool) {
	ds, err := h.sessions.Dataset(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return forecast.Result{}, false
	}

	res, err := h.dashboard.Forecast(r.Context(), ds)
	if err != nil {
		respond.Error(w, r, err)
		return forecast.Result{}, false
	}

	return res, true
}

func (h *Handler) forecast(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}

	resp := forecastResponse{
		Points:  make([]pointResponse, 0, len(res.Points)),
		History: res.History,
		Horizon: res.Horizon,
		Status:  respond.FromStatus(res.Status),
	}

	for _, p := range res.Points {
		resp.Points = append(resp.Points, pointResponse{
			DS:        p.Date.Format("2006-01-02"),
			Yhat:      p.Yhat,
			YhatLower: p.YhatLower,
			YhatUpper: p.YhatUpper,
		})
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) spreadsheet(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.ForecastXLSX(&buf, res.Points); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ForecastFilename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write spreadsheet", "error", err)
	}
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", export.ReportFilename))

	if err := export.ForecastReport(w, res.Points); err != nil {
		slog.Error("failed to write report", "error", err)
	}
}
