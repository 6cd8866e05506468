package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ctree-analysis/internal/ctree"
)

func newTestRepo(t *testing.T) RunRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	repo := NewRunRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestRunRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	run := &AnalysisRun{
		Source:       "peak.pgm",
		Width:        3,
		Height:       3,
		Depth:        1,
		LevelMin:     0,
		LevelMax:     5,
		NodeCount:    2,
		Connectivity: 8,
		Delta:        1,
		Attributes:   "area,contrast,volume",
		BuildMillis:  4,
	}
	require.NoError(t, repo.CreateRun(ctx, run))
	require.NotZero(t, run.ID)

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "peak.pgm", got.Source)
	assert.Equal(t, 2, got.NodeCount)
	assert.False(t, got.CreateTime.IsZero())

	_, err = repo.GetRun(ctx, 9999)
	assert.Error(t, err)
}

func TestRunRepository_SaveAndLoadNodes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	run := &AnalysisRun{Source: "step.pgm", NodeCount: 3}
	require.NoError(t, repo.CreateRun(ctx, run))

	records := []ctree.NodeRecord{
		{ID: 0, ParentID: 0, Level: 1, PixelCount: 2, Area: 4, Contrast: 2},
		{ID: 1, ParentID: 0, Level: 2, PixelCount: 1, Area: 2, Contrast: 1},
		{ID: 2, ParentID: 1, Level: 3, PixelCount: 1, Area: 1},
	}
	rows := make([]TreeNodeRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, NewTreeNodeRow(run.ID, r))
	}
	require.NoError(t, repo.SaveNodes(ctx, rows))

	back, err := repo.NodesByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, back, 3)
	assert.Equal(t, 0, back[0].NodeID)
	assert.Equal(t, int64(4), back[0].Area)
	assert.Equal(t, 1, back[2].ParentID)
	assert.Equal(t, run.ID, back[2].RunID)

	// No rows for an unknown run.
	empty, err := repo.NodesByRun(ctx, run.ID+1)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRunRepository_SaveNodes_Empty(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.SaveNodes(context.Background(), nil))
}

func TestRunRepository_ListRuns(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.CreateRun(ctx, &AnalysisRun{Source: "img.pgm"}))
	}

	runs, err := repo.ListRuns(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	// Most recent first.
	assert.Greater(t, runs[0].ID, runs[1].ID)

	all, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
