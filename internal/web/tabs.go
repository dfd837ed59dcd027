package web

import (
	"errors"
	"fmt"
)

// Tab identifies one of the page's content panels
type Tab string

const (
	TabInput           Tab = "input"
	TabResults         Tab = "results"
	TabRecommendations Tab = "recommendations"
)

// Tabs in display order
var Tabs = []Tab{TabInput, TabResults, TabRecommendations}

// ErrInvalidTransition is returned for a tab change the page does not allow
var ErrInvalidTransition = errors.New("invalid tab transition")

// Title returns the tab button label
func (t Tab) Title() string {
	switch t {
	case TabInput:
		return "Business Data"
	case TabResults:
		return "Emissions Results"
	case TabRecommendations:
		return "Recommendations"
	default:
		return string(t)
	}
}

// ParseTab validates a tab identifier
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab: %q", s)
}

// TabController tracks which panel is visible. Exactly one tab is active and
// switching tabs never touches form data. It is not safe for concurrent use;
// the owning State serializes access.
type TabController struct {
	active Tab
}

// NewTabController starts on the input tab
func NewTabController() *TabController {
	return &TabController{active: TabInput}
}

// Active returns the visible tab
func (tc *TabController) Active() Tab {
	return tc.active
}

// Select switches to any tab, as clicking a tab button does
func (tc *TabController) Select(t Tab) error {
	if _, err := ParseTab(string(t)); err != nil {
		return err
	}
	tc.active = t
	return nil
}

// Submit moves to the results tab after a form submission.
// Form data lives in the app state, so this is valid from any tab.
func (tc *TabController) Submit() {
	tc.active = TabResults
}

// ViewRecommendations moves from results to recommendations
func (tc *TabController) ViewRecommendations() error {
	if tc.active != TabResults {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, tc.active, TabRecommendations)
	}
	tc.active = TabRecommendations
	return nil
}
