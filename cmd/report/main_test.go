package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"instrcli/pkg/contracts/domain"
)

func TestApplyFlagOverrides(t *testing.T) {
	defaults := domain.DefaultReportOptions()

	t.Run("nothing set keeps defaults", func(t *testing.T) {
		got := applyFlagOverrides(defaults, 0, -1, 0, -1, -1, -1, 0)
		assert.Equal(t, defaults, got)
	})

	t.Run("explicit values win", func(t *testing.T) {
		got := applyFlagOverrides(defaults, 2, 4, 7, 3, 200, 250, 1.5)
		assert.Equal(t, 2, got.FaceStart)
		assert.Equal(t, 4, got.FaceCount)
		assert.Equal(t, 7, got.CoreStart)
		assert.Equal(t, 3, got.CoreCount)
		assert.Equal(t, 200, got.FurnaceMin)
		assert.Equal(t, 250, got.FurnaceMax)
		assert.Equal(t, 1.5, got.MinuteTolerance)
	})

	t.Run("zero counts are honored", func(t *testing.T) {
		got := applyFlagOverrides(defaults, 0, 0, 0, 0, -1, -1, 0)
		assert.Equal(t, 0, got.FaceCount)
		assert.Equal(t, 0, got.CoreCount)
		assert.Equal(t, defaults.FaceStart, got.FaceStart)
	})

	t.Run("zero furnace bounds are honored", func(t *testing.T) {
		got := applyFlagOverrides(defaults, 0, -1, 0, -1, 0, 0, 0)
		assert.Equal(t, 0, got.FurnaceMin)
		assert.Equal(t, 0, got.FurnaceMax)
	})
}
