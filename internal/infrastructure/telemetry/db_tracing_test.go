package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint `gorm:"primaryKey"`
	Code string
}

func newTracedDB(t *testing.T, cfg DBTracingConfig) (*gorm.DB, *tracetest.SpanRecorder) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, InstrumentDB(db, cfg, tp, zap.NewNop()))
	return db, recorder
}

func attr(kvs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range kvs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestInstrumentDB_Disabled(t *testing.T) {
	db, recorder := newTracedDB(t, DBTracingConfig{Enabled: false})

	require.NoError(t, db.Create(&tracedRow{Code: "CHAIR"}).Error)
	assert.Empty(t, recorder.Ended())
}

func TestInstrumentDB_TagsSpans(t *testing.T) {
	db, recorder := newTracedDB(t, DBTracingConfig{Enabled: true, DBSystem: "sqlite", SlowQueryThresh: time.Hour})

	require.NoError(t, db.WithContext(context.Background()).Create(&tracedRow{Code: "CHAIR"}).Error)

	spans := recorder.Ended()
	require.NotEmpty(t, spans)
	table, ok := attr(spans[len(spans)-1].Attributes(), "db.sql.table")
	require.True(t, ok)
	assert.Equal(t, "traced_rows", table.AsString())
	rows, ok := attr(spans[len(spans)-1].Attributes(), "db.rows_affected")
	require.True(t, ok)
	assert.Equal(t, int64(1), rows.AsInt64())
	_, slow := attr(spans[len(spans)-1].Attributes(), "db.slow_query")
	assert.False(t, slow)
}

func TestInstrumentDB_FlagsSlowQueries(t *testing.T) {
	tests := []struct {
		name string
		run  func(db *gorm.DB) error
	}{
		{"query", func(db *gorm.DB) error {
			var rows []tracedRow
			return db.Find(&rows).Error
		}},
		{"create", func(db *gorm.DB) error {
			return db.Create(&tracedRow{Code: "TABLE"}).Error
		}},
		{"raw", func(db *gorm.DB) error {
			return db.Exec("UPDATE traced_rows SET code = ?", "SOFA").Error
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, recorder := newTracedDB(t, DBTracingConfig{Enabled: true, DBSystem: "sqlite", SlowQueryThresh: time.Nanosecond})

			require.NoError(t, tt.run(db.WithContext(context.Background())))

			spans := recorder.Ended()
			require.NotEmpty(t, spans)
			last := spans[len(spans)-1]
			slow, ok := attr(last.Attributes(), "db.slow_query")
			require.True(t, ok)
			assert.True(t, slow.AsBool())
			_, ok = attr(last.Attributes(), "db.query_duration_ms")
			assert.True(t, ok)

			var events []string
			for _, e := range last.Events() {
				events = append(events, e.Name)
			}
			assert.Contains(t, events, "slow_query")
		})
	}
}
