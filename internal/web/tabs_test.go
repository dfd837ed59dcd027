package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTabController_StartsOnInput(t *testing.T) {
	assert.Equal(t, TabInput, NewTabController().Active())
}

func TestTabController_SelectFromAnyTab(t *testing.T) {
	for _, from := range Tabs {
		for _, to := range Tabs {
			tc := NewTabController()
			require.NoError(t, tc.Select(from))
			require.NoError(t, tc.Select(to))
			assert.Equal(t, to, tc.Active(), "%s -> %s", from, to)
		}
	}
}

func TestTabController_SelectUnknown(t *testing.T) {
	tc := NewTabController()
	assert.Error(t, tc.Select(Tab("settings")))
	assert.Equal(t, TabInput, tc.Active())
}

func TestTabController_SubmitShowsResults(t *testing.T) {
	for _, from := range Tabs {
		tc := NewTabController()
		require.NoError(t, tc.Select(from))
		tc.Submit()
		assert.Equal(t, TabResults, tc.Active())
	}
}

func TestTabController_ViewRecommendations(t *testing.T) {
	tc := NewTabController()
	err := tc.ViewRecommendations()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, TabInput, tc.Active())

	tc.Submit()
	require.NoError(t, tc.ViewRecommendations())
	assert.Equal(t, TabRecommendations, tc.Active())

	assert.ErrorIs(t, tc.ViewRecommendations(), ErrInvalidTransition)
}

func TestParseTab(t *testing.T) {
	tab, err := ParseTab("results")
	require.NoError(t, err)
	assert.Equal(t, TabResults, tab)

	_, err = ParseTab("Results")
	assert.Error(t, err)
}

func TestTab_Title(t *testing.T) {
	assert.Equal(t, "Business Data", TabInput.Title())
	assert.Equal(t, "Emissions Results", TabResults.Title())
	assert.Equal(t, "Recommendations", TabRecommendations.Title())
}
