package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcimsort/dcim/media"
)

func TestScreenshotPattern(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"FilenameMatchFires", testScreenshotFilenameMatchFires},
		{"NonMatchStaysPassive", testScreenshotNonMatchStaysPassive},
		{"NoPatternNoFlagInapplicable", testScreenshotNoPatternNoFlagInapplicable},
		{"MetadataFlagFires", testScreenshotMetadataFlagFires},
		{"CaseSensitiveMatching", testScreenshotCaseSensitiveMatching},
		{"InvalidRegexRejected", testScreenshotInvalidRegexRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testScreenshotFilenameMatchFires(t *testing.T) {
	p, err := NewScreenshotPatternMatching("screenshots", "^screenshot.*$", true)
	require.NoError(t, err)

	component, applicable := Evaluate(p, media.NewBag("Screenshot_2023.png"))
	require.True(t, applicable)
	assert.Equal(t, "screenshots", component)
}

func testScreenshotNonMatchStaysPassive(t *testing.T) {
	p, err := NewScreenshotPatternMatching("screenshots", "^screenshot.*$", true)
	require.NoError(t, err)

	component, applicable := Evaluate(p, media.NewBag("IMG_0001.jpg"))
	assert.False(t, applicable, "non-screenshots must not fire the rule")
	assert.Empty(t, component)
}

func testScreenshotNoPatternNoFlagInapplicable(t *testing.T) {
	p := NewScreenshotPattern("screenshots")

	_, applicable := Evaluate(p, media.NewBag("Screenshot_2023.png"))
	assert.False(t, applicable, "without pattern and flag the rule never fires on the name alone")
}

func testScreenshotMetadataFlagFires(t *testing.T) {
	p := NewScreenshotPattern("screenshots")

	bag := media.NewBag("IMG_0001.png")
	bag.IsScreenshot = true

	component, applicable := Evaluate(p, bag)
	require.True(t, applicable)
	assert.Equal(t, "screenshots", component)
}

func testScreenshotCaseSensitiveMatching(t *testing.T) {
	p, err := NewScreenshotPatternMatching("screenshots", "^screenshot.*$", false)
	require.NoError(t, err)

	_, applicable := Evaluate(p, media.NewBag("Screenshot_2023.png"))
	assert.False(t, applicable, "case-sensitive pattern must not match the capitalized name")
}

func testScreenshotInvalidRegexRejected(t *testing.T) {
	_, err := NewScreenshotPatternMatching("screenshots", "([", true)
	assert.Error(t, err)
}
