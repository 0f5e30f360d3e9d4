package career

import "strconv"

// Segment labels a raw stint relative to one exit.
type Segment string

// Fixed segment labels. Hop segments are built with HopSegment.
const (
	SegmentSource   Segment = "source"
	SegmentInternal Segment = "internal_at_source"
	SegmentPrior    Segment = "prior"
)

// HopSegment returns the label for stints inside hop number n.
func HopSegment(n int) Segment {
	return Segment("hop_" + strconv.Itoa(n))
}

// Labels assigns a segment to every stint taking part in the path. Stints
// absent from the map are SegmentPrior.
func (p Path) Labels(exitID int64) map[int64]Segment {
	labels := make(map[int64]Segment, len(p.Internal)+1)
	labels[exitID] = SegmentSource
	for _, id := range p.Internal {
		labels[id] = SegmentInternal
	}
	for i, h := range p.Hops {
		seg := HopSegment(i + 1)
		for _, id := range h.StintIDs {
			labels[id] = seg
		}
	}
	return labels
}

// SegmentOf returns the label of one stint given precomputed labels.
func SegmentOf(labels map[int64]Segment, stintID int64) Segment {
	if s, ok := labels[stintID]; ok {
		return s
	}
	return SegmentPrior
}
