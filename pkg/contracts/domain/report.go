package domain

import (
	"sort"
)

// Hard limits on how many channels the report layout carries. These come
// from the legacy report template: 35 specimen columns and 5 furnace
// columns is the widest layout it supports.
const (
	MaxSpecimenChannels = 35
	MaxFurnaceChannels  = 5
)

// ReportOptions controls channel grouping and resampling when a report
// is generated. The face/core windows index into the specimen channels
// (1-based), not raw channel numbers.
type ReportOptions struct {
	FaceStart  int `json:"face_start" validate:"min=1"`
	FaceCount  int `json:"face_count" validate:"min=0"`
	CoreStart  int `json:"core_start" validate:"min=1"`
	CoreCount  int `json:"core_count" validate:"min=0"`
	FurnaceMin int `json:"furnace_min" validate:"min=0"`
	FurnaceMax int `json:"furnace_max" validate:"min=0,gtefield=FurnaceMin"`

	// MinuteTolerance is how far, in seconds, a scan may sit from a
	// whole elapsed minute and still be kept by the resampler.
	MinuteTolerance float64 `json:"minute_tolerance" validate:"gt=0,lte=30"`
}

// DefaultReportOptions returns the grouping the original rig uses:
// thermocouples 1-5 on the exposed face, 6-10 in the core, furnace
// thermocouples numbered in the 300 range.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		FaceStart:       1,
		FaceCount:       5,
		CoreStart:       6,
		CoreCount:       5,
		FurnaceMin:      300,
		FurnaceMax:      399,
		MinuteTolerance: 0.5,
	}
}

// ChannelGroups is the result of classifying the parsed channels into
// specimen and furnace sets.
type ChannelGroups struct {
	Specimen []int `json:"specimen"`
	Furnace  []int `json:"furnace"`
}

// GroupChannels splits channels into furnace ([FurnaceMin, FurnaceMax])
// and specimen (everything else), sorts both ascending and applies the
// template's channel caps.
func (o ReportOptions) GroupChannels(channels []int) ChannelGroups {
	var groups ChannelGroups
	for _, ch := range channels {
		if ch >= o.FurnaceMin && ch <= o.FurnaceMax {
			groups.Furnace = append(groups.Furnace, ch)
		} else {
			groups.Specimen = append(groups.Specimen, ch)
		}
	}
	sort.Ints(groups.Specimen)
	sort.Ints(groups.Furnace)

	if len(groups.Specimen) > MaxSpecimenChannels {
		groups.Specimen = groups.Specimen[:MaxSpecimenChannels]
	}
	if len(groups.Furnace) > MaxFurnaceChannels {
		groups.Furnace = groups.Furnace[:MaxFurnaceChannels]
	}
	return groups
}
