package citations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/docchat/internal/state"
)

func TestExtractPageReferences(t *testing.T) {
	got := Extract("See (Page 5) and (page 12)")
	require.Len(t, got, 2)
	assert.Equal(t, 5, got[0].Page)
	assert.Equal(t, 12, got[1].Page)
	for _, c := range got {
		assert.Equal(t, 0.9, c.Confidence)
		assert.Equal(t, state.CitationTypePageRef, c.Type)
	}
}

func TestExtractIgnoresNonReferences(t *testing.T) {
	cases := []string{
		"no citations here",
		"(page)",
		"(Page zero)",
		"page 4 without parens",
		"",
	}
	for _, text := range cases {
		assert.Empty(t, Extract(text), "input %q", text)
	}
}

func TestExtractHandlesExtraWhitespace(t *testing.T) {
	got := Extract("intro (PAGE  7) outro")
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].Page)
}

func TestMergeKeepsBackendFirst(t *testing.T) {
	backend := []state.Citation{{Page: 2, Confidence: 0.5}}
	extracted := []state.Citation{{Page: 2, Confidence: 0.9}, {Page: 4, Confidence: 0.9}}

	merged := Merge(backend, extracted)
	require.Len(t, merged, 3)
	assert.Equal(t, 0.5, merged[0].Confidence)
	assert.Equal(t, 0.9, merged[1].Confidence)
	assert.Equal(t, 4, merged[2].Page)
}

func TestDedupeForRenderCollapsesByPage(t *testing.T) {
	got := DedupeForRender([]state.Citation{{Page: 3}, {Page: 3}, {Page: 7}})
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Page)
	assert.Equal(t, 7, got[1].Page)
}

func TestDedupeForRenderLastOneWinsPerPage(t *testing.T) {
	got := DedupeForRender([]state.Citation{
		{Page: 3, Confidence: 0.5},
		{Page: 5, Confidence: 0.9},
		{Page: 3, Confidence: 0.9},
	})
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Page)
	assert.Equal(t, 0.9, got[0].Confidence)
	assert.Equal(t, 5, got[1].Page)
}

func TestDedupeForRenderKeepsPagelessCitations(t *testing.T) {
	got := DedupeForRender([]state.Citation{
		{Page: 1},
		{Section: "Abstract"},
		{},
	})
	require.Len(t, got, 3)
	assert.Equal(t, "Abstract", got[1].Section)
}

func TestNavigableAndLabel(t *testing.T) {
	assert.True(t, Navigable(state.Citation{Page: 4}))
	assert.False(t, Navigable(state.Citation{Section: "Intro"}))
	assert.False(t, Navigable(state.Citation{}))

	assert.Equal(t, "p.4", Label(state.Citation{Page: 4}, 1))
	assert.Equal(t, "Intro", Label(state.Citation{Section: "Intro"}, 2))
	assert.Equal(t, "Source 3", Label(state.Citation{}, 3))
}

func TestNavigatorAnnounceReachesAllSubscribers(t *testing.T) {
	nav := NewNavigator()
	var first, second []int
	nav.Subscribe(func(page int) { first = append(first, page) })
	nav.Subscribe(func(page int) { second = append(second, page) })

	nav.Announce(5)
	nav.Announce(0) // inert, must be dropped
	nav.Announce(9)

	assert.Equal(t, []int{5, 9}, first)
	assert.Equal(t, []int{5, 9}, second)
}

func TestNavigatorSubscribeDuringAnnounce(t *testing.T) {
	nav := NewNavigator()
	var late []int
	nav.Subscribe(func(page int) {
		nav.Subscribe(func(page int) { late = append(late, page) })
	})

	nav.Announce(2)
	nav.Announce(7)

	// The subscriber added while announcing page 2 only sees page 7 onward.
	assert.Equal(t, []int{7}, late)
}
