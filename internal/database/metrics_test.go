package database

import (
	"testing"

	"chirp/internal/models"
	"chirp/internal/observability"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// querySampleCount reads the histogram's observation count for one
// operation/table pair. The histogram is process-global, so assertions
// compare against a count captured before the queries under test.
func querySampleCount(t *testing.T, operation, table string) uint64 {
	t.Helper()
	obs, err := observability.DatabaseQueryLatency.GetMetricWithLabelValues(operation, table)
	require.NoError(t, err)

	var m dto.Metric
	require.NoError(t, obs.(prometheus.Metric).Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestRegisterQueryMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, RegisterQueryMetrics(db))
	require.NoError(t, db.AutoMigrate(&models.User{}))

	createsBefore := querySampleCount(t, "create", "users")
	queriesBefore := querySampleCount(t, "query", "users")

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "hashed-password"}
	require.NoError(t, db.Create(user).Error)

	var loaded models.User
	require.NoError(t, db.First(&loaded, user.ID).Error)

	assert.Equal(t, createsBefore+1, querySampleCount(t, "create", "users"))
	assert.Equal(t, queriesBefore+1, querySampleCount(t, "query", "users"))
}

func TestRegisterQueryMetrics_RawFallbackLabel(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, RegisterQueryMetrics(db))

	before := querySampleCount(t, "raw", "raw")
	require.NoError(t, db.Exec("CREATE TABLE scratch (id INTEGER)").Error)
	assert.Equal(t, before+1, querySampleCount(t, "raw", "raw"))
}
