package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/jgoulah/carbonform/internal/chart"
	"github.com/jgoulah/carbonform/internal/emissions"
	"github.com/jgoulah/carbonform/internal/export"
	"github.com/jgoulah/carbonform/internal/log"
	"github.com/jgoulah/carbonform/internal/recommend"
	"github.com/jgoulah/carbonform/internal/usage"
	"github.com/jgoulah/carbonform/pkg/models"
)

var templateFuncs = map[string]any{
	"monthName": emissions.MonthLabel,
	"inc":       func(i int) int { return i + 1 },
	"selected":  func(raw string, month int) bool { return raw == strconv.Itoa(month) },
	"checked":   func(equipment []string, v string) bool { return slices.Contains(equipment, v) },
	"months":    func() []int { return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12} },
}

type tabButton struct {
	ID     Tab
	Title  string
	Active bool
}

type pageData struct {
	Tabs       []tabButton
	Active     Tab
	Business   models.Business
	Size       string
	Rows       []usage.Row
	Industries []recommend.Option
	Equipment  []recommend.Option

	FormError    string
	Pending      bool
	Results      *ResultsView
	ResultsError string
	Charts       []chart.Snippet
	AssetsHost   string

	Recommendations []models.Recommendation
}

func (c *Controller) handleIndex(w http.ResponseWriter, r *http.Request) {
	task := c.runner.Snapshot()
	snap := c.state.snapshot()

	data := pageData{
		Active:          snap.Active,
		Business:        snap.Business,
		Size:            snap.BuildingSize,
		Rows:            snap.Rows,
		Industries:      recommend.Industries(),
		Equipment:       recommend.EquipmentOptions(),
		Pending:         task.Status == StatusPending,
		Results:         snap.Results,
		AssetsHost:      c.assetsHost(),
		Recommendations: snap.Recommendations,
	}
	for _, t := range Tabs {
		data.Tabs = append(data.Tabs, tabButton{ID: t, Title: t.Title(), Active: t == snap.Active})
	}
	if snap.FormErr != nil {
		data.FormError = snap.FormErr.Error()
	}
	if snap.ResultsErr != nil {
		data.ResultsError = snap.ResultsErr.Error()
	}

	if !data.Pending && data.Results != nil {
		for _, target := range []string{chart.TargetEmissions, chart.TargetCostEmissions} {
			s, ok, err := c.board.Snippet(target)
			if err != nil {
				log.Errorw("rendering chart", "target", target, "error", err)
				continue
			}
			if ok {
				data.Charts = append(data.Charts, s)
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.tmpl.Execute(w, data); err != nil {
		log.Errorw("rendering page", "error", err)
	}
}

func (c *Controller) assetsHost() string {
	if host := c.cfg.GetAssetsHost(); host != "" {
		return strings.TrimRight(host, "/") + "/"
	}
	return chart.DefaultAssetsHost
}

func (c *Controller) handleSelectTab(w http.ResponseWriter, r *http.Request) {
	tab, err := ParseTab(mux.Vars(r)["tab"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// tab buttons post the business form so typed values survive the switch
	if _, ok := r.PostForm[FieldBusinessName]; ok {
		c.state.UpdateForm(r.PostForm)
	}
	if err := c.state.SelectTab(tab); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	redirectHome(w, r)
}

func (c *Controller) handleAddRow(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(r.PostForm) > 0 {
		c.state.UpdateForm(r.PostForm)
	}
	c.state.AddRow()
	redirectHome(w, r)
}

func (c *Controller) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.state.UpdateForm(r.PostForm)

	// results of an earlier submission no longer match the form
	c.runner.Cancel()

	business, entries, err := c.state.Submit()
	if err != nil {
		log.Infow("usage rejected", "error", err)
		c.board.Clear()
		redirectHome(w, r)
		return
	}

	id := c.runner.Start(c.ctx, computeTask(business, entries))
	log.Debugw("started emissions computation", "task", id, "entries", len(entries))
	redirectHome(w, r)
}

func computeTask(b models.Business, entries []models.UsageEntry) ComputeFunc {
	return func(_ context.Context) (*models.EmissionsResult, error) {
		return emissions.Compute(b.ZipCode, entries, b.BuildingSize, b.Industry)
	}
}

func (c *Controller) handleViewRecommendations(w http.ResponseWriter, r *http.Request) {
	if err := c.state.ViewRecommendations(); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	redirectHome(w, r)
}

type statusResponse struct {
	Task       string     `json:"task,omitempty"`
	Status     TaskStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (c *Controller) handleResultsStatus(w http.ResponseWriter, r *http.Request) {
	task := c.runner.Snapshot()
	resp := statusResponse{Task: task.ID, Status: task.Status}
	if task.Err != nil {
		resp.Error = task.Err.Error()
	}
	if !task.StartedAt.IsZero() {
		resp.StartedAt = &task.StartedAt
	}
	if !task.FinishedAt.IsZero() {
		resp.FinishedAt = &task.FinishedAt
	}
	sendJSON(w, http.StatusOK, resp)
}

func (c *Controller) handleExport(w http.ResponseWriter, r *http.Request) {
	view := c.state.Results()
	if view == nil {
		http.Error(w, "no results to export", http.StatusNotFound)
		return
	}
	business := c.state.Business()

	var buf bytes.Buffer
	err := export.WriteWorkbook(&buf, export.Report{
		Business:        business,
		Result:          view.Result,
		Recommendations: recommend.For(business.Industry, business.Equipment),
	})
	if err != nil {
		log.Errorw("exporting workbook", "error", err)
		http.Error(w, "cannot export results", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="carbon-footprint.xlsx"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Errorw("writing workbook response", "error", err)
	}
}

// EmissionsRequest is the body of POST /api/v1/emissions
type EmissionsRequest struct {
	ZipCode      string              `json:"zip_code"`
	BuildingSize float64             `json:"building_size"`
	Industry     string              `json:"industry"`
	Entries      []models.UsageEntry `json:"entries"`
}

// EmissionsResponse is the body returned by POST /api/v1/emissions
type EmissionsResponse struct {
	Result        *models.EmissionsResult `json:"result"`
	Equivalencies emissions.Equivalency   `json:"equivalencies"`
}

func (c *Controller) handleAPIEmissions(w http.ResponseWriter, r *http.Request) {
	var req EmissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := emissions.Compute(req.ZipCode, req.Entries, req.BuildingSize, req.Industry)
	if err != nil {
		var verr *emissions.ValidationError
		var cerr *emissions.ComputationError
		if errors.As(err, &verr) || errors.As(err, &cerr) {
			sendError(w, http.StatusUnprocessableEntity, "cannot compute emissions", err)
			return
		}
		sendError(w, http.StatusInternalServerError, "cannot compute emissions", err)
		return
	}

	sendJSON(w, http.StatusOK, EmissionsResponse{
		Result:        result,
		Equivalencies: emissions.Equivalencies(result.AnnualEstimateTons),
	})
}

func (c *Controller) handleAPIRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sendJSON(w, http.StatusOK, recommend.For(q.Get("industry"), q["equipment"]))
}

type factorRange struct {
	Range  string  `json:"range"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Factor float64 `json:"factor"`
}

type factorsResponse struct {
	Ranges  []factorRange `json:"ranges"`
	Default float64       `json:"default"`
}

func (c *Controller) handleAPIFactors(w http.ResponseWriter, r *http.Request) {
	resp := factorsResponse{Default: emissions.DefaultTable.DefaultFactor()}
	for _, rg := range emissions.DefaultTable.Ranges() {
		resp.Ranges = append(resp.Ranges, factorRange{Range: rg.Label(), Min: rg.Min, Max: rg.Max, Factor: rg.Factor})
	}
	sendJSON(w, http.StatusOK, resp)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Errorw("encoding response", "error", err)
	}
}

func sendError(w http.ResponseWriter, status int, message string, err error) {
	resp := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		resp["details"] = err.Error()
	}
	sendJSON(w, status, resp)
}
