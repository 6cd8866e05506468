package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ctree-analysis/pkg/config"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestRunRepository_ListRuns_SQL(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewRunRepository(gdb)

	rows := sqlmock.NewRows([]string{"id", "source", "node_count"}).
		AddRow(int64(2), "b.pgm", 5).
		AddRow(int64(1), "a.pgm", 3)

	mock.ExpectQuery("SELECT (.+) FROM `analysis_run` ORDER BY id DESC LIMIT").
		WillReturnRows(rows)

	runs, err := repo.ListRuns(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b.pgm", runs[0].Source)
	assert.Equal(t, 3, runs[1].NodeCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepository_NodesByRun_SQL(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewRunRepository(gdb)

	rows := sqlmock.NewRows([]string{"id", "run_id", "node_id", "area"}).
		AddRow(int64(1), int64(7), 0, int64(9))

	mock.ExpectQuery("SELECT (.+) FROM `tree_node` WHERE run_id = (.+) ORDER BY node_id ASC").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	back, err := repo.NodesByRun(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, int64(9), back[0].Area)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewGormDB_UnsupportedType(t *testing.T) {
	_, err := NewGormDB(&config.DatabaseConfig{Type: "oracle"})
	assert.Error(t, err)
}
