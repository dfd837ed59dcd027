package web

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jgoulah/carbonform/internal/recommend"
	"github.com/jgoulah/carbonform/internal/usage"
	"github.com/jgoulah/carbonform/pkg/models"
)

// Business form field names
const (
	FieldBusinessName = "businessName"
	FieldIndustry     = "industry"
	FieldLocation     = "location"
	FieldBuildingSize = "buildingSize"
	FieldEquipment    = "equipment"
)

// State is the single-user application state behind the page
type State struct {
	mu sync.Mutex

	business     models.Business
	buildingSize string
	collector    *usage.Collector
	tabs         *TabController

	formErr    error
	results    *ResultsView
	resultsErr error

	recommendations []models.Recommendation
}

// NewState returns the state of a freshly loaded page
func NewState(now time.Time) *State {
	return &State{
		collector: usage.NewCollector(now),
		tabs:      NewTabController(),
	}
}

// formSnapshot is a copy of the state taken for rendering
type formSnapshot struct {
	Business        models.Business
	BuildingSize    string
	Rows            []usage.Row
	Active          Tab
	FormErr         error
	Results         *ResultsView
	ResultsErr      error
	Recommendations []models.Recommendation
}

func (s *State) snapshot() formSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return formSnapshot{
		Business:        s.business,
		BuildingSize:    s.buildingSize,
		Rows:            s.collector.Rows(),
		Active:          s.tabs.Active(),
		FormErr:         s.formErr,
		Results:         s.results,
		ResultsErr:      s.resultsErr,
		Recommendations: s.recommendations,
	}
}

// UpdateForm replaces the business fields and usage rows with the posted form
func (s *State) UpdateForm(form url.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.business = models.Business{
		Name:      strings.TrimSpace(form.Get(FieldBusinessName)),
		Industry:  form.Get(FieldIndustry),
		ZipCode:   strings.TrimSpace(form.Get(FieldLocation)),
		Equipment: form[FieldEquipment],
	}
	s.buildingSize = strings.TrimSpace(form.Get(FieldBuildingSize))
	s.business.BuildingSize = parseBuildingSize(s.buildingSize)

	c := usage.FromForm(form)
	if c.Len() == 0 {
		c.AddRow()
	}
	s.collector = c
}

// parseBuildingSize returns NaN for anything that is not a number, which the
// calculator reports as an invalid building size
func parseBuildingSize(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// AddRow appends a blank usage row
func (s *State) AddRow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collector.AddRow()
}

// SelectTab switches the visible panel
func (s *State) SelectTab(t Tab) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs.Select(t)
}

// Submit validates the usage rows and drops any earlier results. On success it
// switches to the results tab and returns the entries and business to compute
// with. A validation error is kept for display on the input panel.
func (s *State) Submit() (models.Business, []models.UsageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = nil
	s.resultsErr = nil

	entries, err := s.collector.Collect()
	if err != nil {
		s.formErr = err
		return models.Business{}, nil, err
	}

	s.formErr = nil
	s.tabs.Submit()
	return s.business, entries, nil
}

// SetResults stores the outcome of a finished computation
func (s *State) SetResults(view *ResultsView, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = view
	s.resultsErr = err
}

// ViewRecommendations moves to the recommendations panel and fills it
func (s *State) ViewRecommendations() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tabs.ViewRecommendations(); err != nil {
		return err
	}
	s.recommendations = recommend.For(s.business.Industry, s.business.Equipment)
	return nil
}

// Business returns the current business fields
func (s *State) Business() models.Business {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.business
}

// Results returns the last computed view, if any
func (s *State) Results() *ResultsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}
