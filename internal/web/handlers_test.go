package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jgoulah/carbonform/internal/chart"
	"github.com/jgoulah/carbonform/internal/config"
	"github.com/jgoulah/carbonform/internal/export"
	"github.com/jgoulah/carbonform/internal/log"
	"github.com/jgoulah/carbonform/pkg/models"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	log.SetLogger(zap.NewNop())

	cfg := &config.Config{Server: config.ServerConfig{ComputeDelay: -1}}
	c, err := NewController(cfg)
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() {
		c.cancel()
		c.runner.Wait()
	})
	return c
}

func do(t *testing.T, c *Controller, method, target string, body url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)
	return rec
}

func businessForm() url.Values {
	return url.Values{
		FieldBusinessName: {"Corner Cafe"},
		FieldIndustry:     {"restaurant"},
		FieldLocation:     {"55000"},
		FieldBuildingSize: {"1000"},
		FieldEquipment:    {"hvac", "cooking"},
		"month":           {"1"},
		"year":            {"2023"},
		"kwh":             {"1000"},
		"cost":            {"150"},
	}
}

func TestIndex_RendersForm(t *testing.T) {
	c := newTestController(t)
	rec := do(t, c, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, id := range []string{
		`id="businessName"`, `id="industry"`, `id="location"`, `id="buildingSize"`,
		`id="usageEntries"`, `id="addMonthBtn"`, `id="equipment"`,
		`data-tab="input"`, `data-tab="results"`, `data-tab="recommendations"`,
		`id="recommendationsContainer"`,
	} {
		assert.Contains(t, body, id)
	}
	assert.Equal(t, 1, strings.Count(body, `class="usage-entry"`))
	assert.Contains(t, body, `class="tab-btn active" data-tab="input"`)
}

func TestAddRow_KeepsTypedValues(t *testing.T) {
	c := newTestController(t)
	rec := do(t, c, http.MethodPost, "/entries", businessForm())
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := do(t, c, http.MethodGet, "/", nil).Body.String()
	assert.Equal(t, 2, strings.Count(body, `class="usage-entry"`))
	assert.Contains(t, body, `value="Corner Cafe"`)
	assert.Contains(t, body, `value="1000"`)
}

func TestSubmit_ComputesResults(t *testing.T) {
	c := newTestController(t)
	rec := do(t, c, http.MethodPost, "/submit", businessForm())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	c.runner.Wait()

	assert.Equal(t, StatusDone, c.runner.Snapshot().Status)

	body := do(t, c, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `class="tab-btn active" data-tab="results"`)
	assert.Contains(t, body, `id="resultsContent"`)
	assert.Contains(t, body, `<div class="summary-value" id="annualEmissions">6.60</div>`)
	assert.Contains(t, body, `<div class="summary-value" id="monthlyEmissions">0.55</div>`)
	assert.Contains(t, body, `<div class="summary-value" id="emissionsIntensity">0.55</div>`)
	assert.Contains(t, body, `id="emissionsChart"`)
	assert.Contains(t, body, `id="costEmissionsChart"`)
	assert.NotContains(t, body, `id="loadingResults"`)
	assert.Contains(t, body, chart.DefaultAssetsHost+"echarts.min.js")

	assert.Equal(t, []string{chart.TargetCostEmissions, chart.TargetEmissions}, c.board.Targets())
}

func TestSubmit_ResubmitReplacesCharts(t *testing.T) {
	c := newTestController(t)
	do(t, c, http.MethodPost, "/submit", businessForm())
	c.runner.Wait()

	form := businessForm()
	form["month"] = []string{"1", "2"}
	form["year"] = []string{"2023", "2023"}
	form["kwh"] = []string{"1000", "2000"}
	form["cost"] = []string{"150", "300"}
	do(t, c, http.MethodPost, "/submit", form)
	c.runner.Wait()

	body := do(t, c, http.MethodGet, "/", nil).Body.String()
	assert.Equal(t, 1, strings.Count(body, `id="emissionsChart"`))
	assert.Equal(t, 1, strings.Count(body, `id="costEmissionsChart"`))

	line, ok := c.board.Get(chart.TargetEmissions)
	require.True(t, ok)
	assert.Len(t, line.Points, 2)
}

func TestSubmit_ValidationErrorStaysOnInput(t *testing.T) {
	c := newTestController(t)
	form := businessForm()
	form.Set("kwh", "lots")

	do(t, c, http.MethodPost, "/submit", form)
	c.runner.Wait()

	assert.Equal(t, StatusIdle, c.runner.Snapshot().Status)
	body := do(t, c, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `class="tab-btn active" data-tab="input"`)
	assert.Contains(t, body, "row 1: kWh")
}

func TestSubmit_ZeroBuildingSizeShowsComputationError(t *testing.T) {
	c := newTestController(t)
	form := businessForm()
	form.Set(FieldBuildingSize, "0")

	do(t, c, http.MethodPost, "/submit", form)
	c.runner.Wait()

	assert.Equal(t, StatusFailed, c.runner.Snapshot().Status)
	body := do(t, c, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, "cannot compute emissions intensity")
	assert.NotContains(t, body, `id="resultsContent"`)
	assert.Empty(t, c.board.Targets())
}

func TestSubmit_PendingShowsLoading(t *testing.T) {
	c := newPendingController(t, time.Hour)
	do(t, c, http.MethodPost, "/submit", businessForm())

	body := do(t, c, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `id="loadingResults"`)
	assert.Contains(t, body, `<meta http-equiv="refresh" content="1">`)
	assert.Contains(t, body, `id="calculateBtn" disabled`)

	rec := do(t, c, http.MethodGet, "/results/status", nil)
	var status statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, StatusPending, status.Status)
	assert.NotEmpty(t, status.Task)
}

func newPendingController(t *testing.T, delay time.Duration) *Controller {
	t.Helper()
	log.SetLogger(zap.NewNop())
	cfg := &config.Config{Server: config.ServerConfig{ComputeDelay: delay}}
	c, err := NewController(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		c.cancel()
		c.runner.Wait()
	})
	return c
}

func TestSubmit_PendingInputTabDoesNotRefresh(t *testing.T) {
	c := newPendingController(t, time.Hour)

	do(t, c, http.MethodPost, "/submit", businessForm())
	rec := do(t, c, http.MethodPost, "/tab/input", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := do(t, c, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `class="tab-btn active" data-tab="input"`)
	assert.NotContains(t, body, `http-equiv="refresh"`)
	assert.Equal(t, StatusPending, c.runner.Snapshot().Status)
}

func TestSubmit_InvalidResubmitCancelsPending(t *testing.T) {
	c := newPendingController(t, 200*time.Millisecond)

	do(t, c, http.MethodPost, "/submit", businessForm())
	require.Equal(t, StatusPending, c.runner.Snapshot().Status)

	form := businessForm()
	form.Set("kwh", "-5")
	do(t, c, http.MethodPost, "/submit", form)
	c.runner.Wait()

	assert.Equal(t, StatusIdle, c.runner.Snapshot().Status)
	assert.Nil(t, c.state.Results())
	assert.Empty(t, c.board.Targets())

	body := do(t, c, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `class="tab-btn active" data-tab="input"`)
	assert.Contains(t, body, "row 1: kWh")
	assert.NotContains(t, body, `id="resultsContent"`)
}

func TestSubmit_InvalidResubmitDropsEarlierResults(t *testing.T) {
	c := newTestController(t)

	do(t, c, http.MethodPost, "/submit", businessForm())
	c.runner.Wait()
	require.NotNil(t, c.state.Results())

	form := businessForm()
	form.Set("kwh", "-5")
	do(t, c, http.MethodPost, "/submit", form)

	assert.Nil(t, c.state.Results())
	assert.Empty(t, c.board.Targets())
	rec := do(t, c, http.MethodGet, "/export.xlsx", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectTab(t *testing.T) {
	c := newTestController(t)

	rec := do(t, c, http.MethodPost, "/tab/recommendations", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	body := do(t, c, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `class="tab-btn active" data-tab="recommendations"`)

	rec = do(t, c, http.MethodPost, "/tab/settings", url.Values{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectTab_KeepsTypedValues(t *testing.T) {
	c := newTestController(t)

	form := businessForm()
	form.Set("kwh", "")
	do(t, c, http.MethodPost, "/tab/results", form)

	body := do(t, c, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `class="tab-btn active" data-tab="results"`)
	assert.Contains(t, body, `value="Corner Cafe"`)
	assert.Equal(t, StatusIdle, c.runner.Snapshot().Status)
}

func TestViewRecommendations(t *testing.T) {
	c := newTestController(t)

	rec := do(t, c, http.MethodPost, "/recommendations", url.Values{})
	assert.Equal(t, http.StatusConflict, rec.Code)

	do(t, c, http.MethodPost, "/submit", businessForm())
	c.runner.Wait()

	rec = do(t, c, http.MethodPost, "/recommendations", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := do(t, c, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `class="tab-btn active" data-tab="recommendations"`)
	assert.Equal(t, 5, strings.Count(body, `class="recommendation-card"`))
	assert.Contains(t, body, "LED Lighting Upgrade")
}

func TestExport(t *testing.T) {
	c := newTestController(t)

	rec := do(t, c, http.MethodGet, "/export.xlsx", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	do(t, c, http.MethodPost, "/submit", businessForm())
	c.runner.Wait()

	rec = do(t, c, http.MethodGet, "/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue(export.SheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Corner Cafe", name)
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestExport_LogsWriteFailure(t *testing.T) {
	c := newTestController(t)
	do(t, c, http.MethodPost, "/submit", businessForm())
	c.runner.Wait()

	core, logs := observer.New(zap.ErrorLevel)
	log.SetLogger(zap.New(core))

	w := brokenWriter{httptest.NewRecorder()}
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export.xlsx", nil))

	assert.Equal(t, 1, logs.FilterMessage("writing workbook response").Len())
}

func TestAPIEmissions(t *testing.T) {
	c := newTestController(t)

	post := func(req EmissionsRequest) *httptest.ResponseRecorder {
		b, err := json.Marshal(req)
		require.NoError(t, err)
		r := httptest.NewRequest(http.MethodPost, "/api/v1/emissions", bytes.NewReader(b))
		rec := httptest.NewRecorder()
		c.Handler().ServeHTTP(rec, r)
		return rec
	}

	rec := post(EmissionsRequest{
		ZipCode:      "99999",
		BuildingSize: 500,
		Entries:      []models.UsageEntry{{Month: 6, Year: 2023, KWh: 2000, Cost: 300}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EmissionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 0.35, resp.Result.Factor, 1e-9)
	assert.InDelta(t, 0.7, resp.Result.TotalEmissionsTons, 1e-9)
	assert.Greater(t, resp.Equivalencies.MilesDriven, 0.0)

	rec = post(EmissionsRequest{ZipCode: "55000", BuildingSize: 0,
		Entries: []models.UsageEntry{{Month: 1, Year: 2023, KWh: 1000}}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = post(EmissionsRequest{ZipCode: "55000", BuildingSize: 100,
		Entries: []models.UsageEntry{{Month: 13, Year: 2023, KWh: 1000}}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/emissions", strings.NewReader("{"))
	bad := httptest.NewRecorder()
	c.Handler().ServeHTTP(bad, r)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestAPIRecommendationsAndFactors(t *testing.T) {
	c := newTestController(t)

	rec := do(t, c, http.MethodGet, "/api/v1/recommendations?industry=retail&equipment=hvac", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recs []models.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
	assert.Len(t, recs, 5)

	rec = do(t, c, http.MethodGet, "/api/v1/factors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var factors factorsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &factors))
	assert.Len(t, factors.Ranges, 5)
	assert.Equal(t, 0.5, factors.Default)
	assert.Equal(t, "40000-59999", factors.Ranges[2].Range)
}

func TestStaticAssets(t *testing.T) {
	c := newTestController(t)
	rec := do(t, c, http.MethodGet, "/static/style.css", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".tab-content")
}
