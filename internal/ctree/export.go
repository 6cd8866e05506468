package ctree

import "math"

// NodeRecord is the flattened, serializable view of one tree node, used by
// the JSON export and the database repository.
type NodeRecord struct {
	ID       int `json:"id"`
	ParentID int `json:"parent_id"`
	Level    int `json:"level"`
	Active   bool `json:"active"`

	PixelCount int   `json:"pixel_count"`
	Area       int64 `json:"area"`
	Contrast   int64 `json:"contrast"`
	Volume     int64 `json:"volume"`
	SubNodes   int64 `json:"sub_nodes"`

	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`

	MSER float64 `json:"mser"`
	Otsu float64 `json:"otsu"`

	ContourLength int64 `json:"contour_length"`
	Complexity    int64 `json:"complexity"`
	Compacity     int64 `json:"compacity"`

	MeanGradientBorder float64 `json:"mean_gradient_border"`

	XMin int `json:"xmin"`
	XMax int `json:"xmax"`
	YMin int `json:"ymin"`
	YMax int `json:"ymax"`
	ZMin int `json:"zmin"`
	ZMax int `json:"zmax"`
}

// Records flattens the tree into per-node records in BFS order.
func (t *Tree[T]) Records() []NodeRecord {
	nodes := t.Nodes()
	out := make([]NodeRecord, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodeRecord{
			ID:                 n.ID,
			ParentID:           n.Parent.ID,
			Level:              n.H,
			Active:             n.Active,
			PixelCount:         len(n.Pixels),
			Area:               n.Area,
			Contrast:           n.Contrast,
			Volume:             n.Volume,
			SubNodes:           n.SubNodes,
			Mean:               n.Mean,
			Variance:           n.Variance,
			MSER:               finite(n.MSER),
			Otsu:               n.Otsu,
			ContourLength:      n.ContourLength,
			Complexity:         n.Complexity,
			Compacity:          n.Compacity,
			MeanGradientBorder: n.MeanGradientBorder,
			XMin:               n.XMin,
			XMax:               n.XMax,
			YMin:               n.YMin,
			YMax:               n.YMax,
			ZMin:               n.ZMin,
			ZMax:               n.ZMax,
		})
	}
	return out
}

// finite clamps +Inf (maximally unstable MSER) to the largest float so the
// record stays JSON-serializable.
func finite(v float64) float64 {
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}
