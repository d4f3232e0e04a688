package pdflayout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvanderbyl/pdflayout"
)

func TestFontBaselineTracker_Initialize(t *testing.T) {
	tracker := pdflayout.NewFontBaselineTracker(pdflayout.DefaultBaselineConfig())
	assert.Equal(t, pdflayout.DefaultBaselineFontSize, tracker.Baseline())

	baseline := tracker.Initialize([]pdflayout.ContentBlock{
		textBlock("Body text", box(90, 100, 300, 110), 10.2),
		textBlock("More body text", box(90, 120, 300, 130), 9.8),
		boldBlock("Heading", box(90, 60, 300, 78), 18),
		imageBlock(box(90, 200, 300, 400)),
	})

	assert.Equal(t, 10, baseline)
	assert.Equal(t, 10, tracker.Baseline())
}

func TestFontBaselineTracker_InitializeEmpty(t *testing.T) {
	tracker := pdflayout.NewFontBaselineTracker(pdflayout.DefaultBaselineConfig())

	assert.Equal(t, pdflayout.DefaultBaselineFontSize, tracker.Initialize(nil))
	assert.Equal(t, pdflayout.DefaultBaselineFontSize, tracker.Initialize([]pdflayout.ContentBlock{
		imageBlock(box(0, 0, 100, 100)),
	}))
}

func TestFontBaselineTracker_Update(t *testing.T) {
	tracker := pdflayout.NewFontBaselineTracker(pdflayout.BaselineConfig{MinLines: 50, MinSamples: 5})
	tracker.Initialize([]pdflayout.ContentBlock{textBlock("body", box(0, 0, 10, 10), 12)})

	// 49 one-line paragraphs at 11pt: not enough lines yet
	for i := 0; i < 49; i++ {
		tracker.Observe(textBlock("paragraph", box(0, 0, 10, 10), 11))
	}
	baseline, updated := tracker.Update()
	assert.False(t, updated)
	assert.Equal(t, 12, baseline)

	tracker.Observe(textBlock("paragraph", box(0, 0, 10, 10), 11))
	baseline, updated = tracker.Update()
	require.True(t, updated)
	assert.Equal(t, 11, baseline)

	// The sample was consumed by the update
	_, updated = tracker.Update()
	assert.False(t, updated)
}

func TestFontBaselineTracker_UpdateNeedsSamples(t *testing.T) {
	tracker := pdflayout.NewFontBaselineTracker(pdflayout.BaselineConfig{MinLines: 2, MinSamples: 5})

	tracker.Observe(linesBlock(0, 0, 100, "a", "b", "c"))
	_, updated := tracker.Update()
	assert.False(t, updated, "three samples are below the minimum")

	tracker.Observe(linesBlock(0, 0, 100, "d", "e"))
	baseline, updated := tracker.Update()
	assert.True(t, updated)
	assert.Equal(t, 12, baseline)
}

func TestFontBaselineTracker_Reset(t *testing.T) {
	tracker := pdflayout.NewFontBaselineTracker(pdflayout.DefaultBaselineConfig())
	tracker.Initialize([]pdflayout.ContentBlock{textBlock("body", box(0, 0, 10, 10), 9)})
	require.Equal(t, 9, tracker.Baseline())

	tracker.Reset()
	assert.Equal(t, pdflayout.DefaultBaselineFontSize, tracker.Baseline())
}
