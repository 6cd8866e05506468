package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// RunRepository defines the persistence operations for analysis runs.
type RunRepository interface {
	// Migrate creates or updates the schema.
	Migrate(ctx context.Context) error

	// CreateRun inserts a run and returns it with the assigned ID.
	CreateRun(ctx context.Context, run *AnalysisRun) error

	// SaveNodes inserts the node rows of a run in batches.
	SaveNodes(ctx context.Context, rows []TreeNodeRow) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id int64) (*AnalysisRun, error)

	// ListRuns retrieves the most recent runs.
	ListRuns(ctx context.Context, limit int) ([]AnalysisRun, error)

	// NodesByRun retrieves the node rows of a run ordered by node ID.
	NodesByRun(ctx context.Context, runID int64) ([]TreeNodeRow, error)
}

// gormRunRepository implements RunRepository on GORM.
type gormRunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a RunRepository backed by the given connection.
func NewRunRepository(db *gorm.DB) RunRepository {
	return &gormRunRepository{db: db}
}

func (r *gormRunRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&AnalysisRun{}, &TreeNodeRow{})
}

func (r *gormRunRepository) CreateRun(ctx context.Context, run *AnalysisRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (r *gormRunRepository) SaveNodes(ctx context.Context, rows []TreeNodeRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(rows, 500).Error; err != nil {
		return fmt.Errorf("failed to save nodes: %w", err)
	}
	return nil
}

func (r *gormRunRepository) GetRun(ctx context.Context, id int64) (*AnalysisRun, error) {
	var run AnalysisRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", id, err)
	}
	return &run, nil
}

func (r *gormRunRepository) ListRuns(ctx context.Context, limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []AnalysisRun
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func (r *gormRunRepository) NodesByRun(ctx context.Context, runID int64) ([]TreeNodeRow, error) {
	var rows []TreeNodeRow
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("node_id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load nodes for run %d: %w", runID, err)
	}
	return rows, nil
}
