package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcimsort/dcim/media"
)

func testRouter(t *testing.T) *Router {
	t.Helper()

	screenshot, err := NewScreenshotPatternMatching("screenshots", "^screenshot.*$", true)
	require.NoError(t, err)

	supported, err := NewChain(ChainSupported, []IndexedSegment{
		{Index: 1, Segment: NewDateTimePattern(nil, "-", "undated", false)},
		{Index: 0, Segment: NewMakeModelPattern(nil, true, "", "", "_", CaseLower, "unknown_device")},
		{Index: 2, Segment: screenshot},
	})
	require.NoError(t, err)

	fallback, err := NewChain(ChainFallback, []IndexedSegment{
		{Index: 0, Segment: NewSimpleFileTypePattern(nil)},
	})
	require.NoError(t, err)

	return NewRouter(supported, fallback)
}

func TestChainAndRouter(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"ComposeFollowsIndexOrder", testComposeFollowsIndexOrder},
		{"InapplicableSegmentsAppendNothing", testInapplicableSegmentsAppendNothing},
		{"RouterSelectsChainByCapability", testRouterSelectsChainByCapability},
		{"RoutingIsDeterministic", testRoutingIsDeterministic},
		{"DuplicateIndexRejected", testDuplicateIndexRejected},
		{"ComponentsStaySingleLevel", testComponentsStaySingleLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testComposeFollowsIndexOrder(t *testing.T) {
	router := testRouter(t)

	bag := media.NewBag("Screenshot_2023.png")
	bag.Supported = true
	bag.SetAttr(media.AttrMake, "Canon")
	bag.SetAttr(media.AttrModel, "EOS 90D")
	bag.SetAttr(string(media.UnitYear), "2023")
	bag.SetAttr(string(media.UnitMonth), "5")

	assert.Equal(t, "canon_eos_90d/2023-05/screenshots", router.Route(bag))
}

func testInapplicableSegmentsAppendNothing(t *testing.T) {
	router := testRouter(t)

	bag := media.NewBag("IMG_0001.jpg")
	bag.Supported = true
	bag.SetAttr(media.AttrMake, "Canon")
	bag.SetAttr(media.AttrModel, "EOS 90D")
	bag.SetAttr(string(media.UnitYear), "2023")
	bag.SetAttr(string(media.UnitMonth), "5")

	// the screenshot segment stays passive: no extra level, not even empty
	assert.Equal(t, "canon_eos_90d/2023-05", router.Route(bag))
}

func testRouterSelectsChainByCapability(t *testing.T) {
	router := testRouter(t)

	bag := media.NewBag("song.mp3")
	assert.Equal(t, "audio_files", router.Route(bag), "unsupported files go through the fallback chain")

	bag.Supported = true
	assert.Equal(t, "unknown_device/undated", router.Route(bag), "the capability flag alone selects the chain")
}

func testRoutingIsDeterministic(t *testing.T) {
	router := testRouter(t)

	bag := media.NewBag("IMG_0001.jpg")
	bag.Supported = true
	bag.SetAttr(media.AttrMake, "Canon")
	bag.SetAttr(media.AttrModel, "EOS 90D")

	first := router.Route(bag)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, router.Route(bag))
	}
}

func testDuplicateIndexRejected(t *testing.T) {
	_, err := NewChain(ChainSupported, []IndexedSegment{
		{Index: 3, Segment: NewSimpleFileTypePattern(nil)},
		{Index: 3, Segment: NewDateTimePattern(nil, "-", "", false)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateIndex)
}

func testComponentsStaySingleLevel(t *testing.T) {
	chain, err := NewChain(ChainSupported, []IndexedSegment{
		{Index: 0, Segment: NewMakeModelPattern(nil, false, "", "", "_", CaseNone, "")},
	})
	require.NoError(t, err)

	bag := media.NewBag("IMG.jpg")
	bag.SetAttr(media.AttrMake, "Acme/Labs")
	bag.SetAttr(media.AttrModel, "X1")

	assert.Equal(t, "Acme_Labs_X1", chain.Compose(bag), "separators in metadata must not split the component")
}
