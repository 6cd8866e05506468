// Package repository persists analysis runs and their per-node attribute
// tables.
package repository

import (
	"time"

	"github.com/ctree-analysis/internal/ctree"
)

// AnalysisRun represents the analysis_run table: one tree construction over
// one input image.
type AnalysisRun struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Source       string    `gorm:"column:source;type:varchar(512)"`
	Width        int       `gorm:"column:width"`
	Height       int       `gorm:"column:height"`
	Depth        int       `gorm:"column:depth"`
	LevelMin     int       `gorm:"column:level_min"`
	LevelMax     int       `gorm:"column:level_max"`
	NodeCount    int       `gorm:"column:node_count"`
	Connectivity int       `gorm:"column:connectivity"`
	Delta        int       `gorm:"column:delta"`
	Attributes   string    `gorm:"column:attributes;type:varchar(256)"`
	BuildMillis  int64     `gorm:"column:build_millis"`
	CreateTime   time.Time `gorm:"column:create_time;autoCreateTime"`
}

// TableName returns the table name for AnalysisRun.
func (AnalysisRun) TableName() string {
	return "analysis_run"
}

// TreeNodeRow represents the tree_node table: one node of a stored run.
type TreeNodeRow struct {
	ID       int64 `gorm:"column:id;primaryKey;autoIncrement"`
	RunID    int64 `gorm:"column:run_id;index"`
	NodeID   int   `gorm:"column:node_id"`
	ParentID int   `gorm:"column:parent_id"`
	Level    int   `gorm:"column:level"`

	PixelCount int   `gorm:"column:pixel_count"`
	Area       int64 `gorm:"column:area"`
	Contrast   int64 `gorm:"column:contrast"`
	Volume     int64 `gorm:"column:volume"`
	SubNodes   int64 `gorm:"column:sub_nodes"`

	Mean     float64 `gorm:"column:mean"`
	Variance float64 `gorm:"column:variance"`
	MSER     float64 `gorm:"column:mser"`
	Otsu     float64 `gorm:"column:otsu"`

	ContourLength int64 `gorm:"column:contour_length"`
	Complexity    int64 `gorm:"column:complexity"`
	Compacity     int64 `gorm:"column:compacity"`

	XMin int `gorm:"column:xmin"`
	XMax int `gorm:"column:xmax"`
	YMin int `gorm:"column:ymin"`
	YMax int `gorm:"column:ymax"`
	ZMin int `gorm:"column:zmin"`
	ZMax int `gorm:"column:zmax"`
}

// TableName returns the table name for TreeNodeRow.
func (TreeNodeRow) TableName() string {
	return "tree_node"
}

// NewTreeNodeRow converts an exported node record for storage under a run.
func NewTreeNodeRow(runID int64, r ctree.NodeRecord) TreeNodeRow {
	return TreeNodeRow{
		RunID:         runID,
		NodeID:        r.ID,
		ParentID:      r.ParentID,
		Level:         r.Level,
		PixelCount:    r.PixelCount,
		Area:          r.Area,
		Contrast:      r.Contrast,
		Volume:        r.Volume,
		SubNodes:      r.SubNodes,
		Mean:          r.Mean,
		Variance:      r.Variance,
		MSER:          r.MSER,
		Otsu:          r.Otsu,
		ContourLength: r.ContourLength,
		Complexity:    r.Complexity,
		Compacity:     r.Compacity,
		XMin:          r.XMin,
		XMax:          r.XMax,
		YMin:          r.YMin,
		YMax:          r.YMax,
		ZMin:          r.ZMin,
		ZMax:          r.ZMax,
	}
}
