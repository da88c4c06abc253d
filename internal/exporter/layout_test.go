package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"instrcli/pkg/contracts/domain"
)

func TestNewLayout(t *testing.T) {
	groups := domain.ChannelGroups{
		Specimen: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		Furnace:  []int{301, 302},
	}
	l := NewLayout(groups, 61)

	assert.Equal(t, 5, l.SpecAbsStart)
	assert.Equal(t, 14, l.SpecAbsEnd)
	assert.Equal(t, 15, l.SpecRiseStart)
	assert.Equal(t, 24, l.SpecRiseEnd)
	assert.Equal(t, 25, l.FurnAbsStart)
	assert.Equal(t, 26, l.FurnAbsEnd)
	assert.Equal(t, 27, l.FurnRiseStart)
	assert.Equal(t, 28, l.FurnRiseEnd)
	assert.Equal(t, 29, l.SummaryStart)
	assert.Equal(t, 33, l.SummaryEnd)

	assert.Equal(t, 74, l.LastDataRow())
	assert.Equal(t, 14, l.AmbientRow())
}

func TestNewLayout_NoFurnaceChannels(t *testing.T) {
	groups := domain.ChannelGroups{Specimen: []int{1, 2, 3}}
	l := NewLayout(groups, 10)

	assert.Equal(t, 5, l.SpecAbsStart)
	assert.Equal(t, 7, l.SpecAbsEnd)
	assert.Equal(t, 8, l.SpecRiseStart)
	assert.Equal(t, 10, l.SpecRiseEnd)
	// furnace block collapses to zero width
	assert.Equal(t, 11, l.SummaryStart)
	assert.Equal(t, 15, l.SummaryEnd)
}

func TestCellHelpers(t *testing.T) {
	assert.Equal(t, "A1", cellName(1, 1))
	assert.Equal(t, "E14", cellName(5, 14))
	assert.Equal(t, "AC14", cellName(29, 14))
	assert.Equal(t, "D", colName(4))
	assert.Equal(t, "AA", colName(27))
}
