package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultReportOptions(t *testing.T) {
	opts := DefaultReportOptions()

	assert.Equal(t, 1, opts.FaceStart)
	assert.Equal(t, 5, opts.FaceCount)
	assert.Equal(t, 6, opts.CoreStart)
	assert.Equal(t, 5, opts.CoreCount)
	assert.Equal(t, 300, opts.FurnaceMin)
	assert.Equal(t, 399, opts.FurnaceMax)
	assert.Equal(t, 0.5, opts.MinuteTolerance)
}

func TestReportOptions_GroupChannels(t *testing.T) {
	tests := []struct {
		name         string
		channels     []int
		opts         ReportOptions
		wantSpecimen []int
		wantFurnace  []int
	}{
		{
			name:         "typical rig layout",
			channels:     []int{101, 102, 103, 301, 302},
			opts:         DefaultReportOptions(),
			wantSpecimen: []int{101, 102, 103},
			wantFurnace:  []int{301, 302},
		},
		{
			name:         "unsorted input is sorted",
			channels:     []int{303, 103, 301, 101},
			opts:         DefaultReportOptions(),
			wantSpecimen: []int{101, 103},
			wantFurnace:  []int{301, 303},
		},
		{
			name:         "no furnace channels",
			channels:     []int{1, 2, 3},
			opts:         DefaultReportOptions(),
			wantSpecimen: []int{1, 2, 3},
			wantFurnace:  nil,
		},
		{
			name:     "custom furnace window",
			channels: []int{5, 10, 15, 20},
			opts: ReportOptions{
				FurnaceMin: 10,
				FurnaceMax: 15,
			},
			wantSpecimen: []int{5, 20},
			wantFurnace:  []int{10, 15},
		},
		{
			name:         "furnace window boundaries are inclusive",
			channels:     []int{299, 300, 399, 400},
			opts:         DefaultReportOptions(),
			wantSpecimen: []int{299, 400},
			wantFurnace:  []int{300, 399},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := tt.opts.GroupChannels(tt.channels)
			assert.Equal(t, tt.wantSpecimen, groups.Specimen)
			assert.Equal(t, tt.wantFurnace, groups.Furnace)
		})
	}
}

func TestReportOptions_GroupChannels_Caps(t *testing.T) {
	var channels []int
	for ch := 1; ch <= 50; ch++ {
		channels = append(channels, ch)
	}
	for ch := 300; ch < 310; ch++ {
		channels = append(channels, ch)
	}

	groups := DefaultReportOptions().GroupChannels(channels)

	assert.Len(t, groups.Specimen, MaxSpecimenChannels)
	assert.Len(t, groups.Furnace, MaxFurnaceChannels)
	assert.Equal(t, 1, groups.Specimen[0])
	assert.Equal(t, 35, groups.Specimen[len(groups.Specimen)-1])
	assert.Equal(t, []int{300, 301, 302, 303, 304}, groups.Furnace)
}

func TestScanRow_Value(t *testing.T) {
	row := ScanRow{Values: map[int]float64{101: 21.5}}

	v, ok := row.Value(101)
	assert.True(t, ok)
	assert.Equal(t, 21.5, v)

	_, ok = row.Value(102)
	assert.False(t, ok)
}
