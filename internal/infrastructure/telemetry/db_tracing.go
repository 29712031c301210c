package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures query spans
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables; development only
	SlowQueryThresh time.Duration
	DBSystem        string
}

// queryStartKey holds the query start time in the statement's instance
// settings, which survive otelgorm swapping the statement context.
const queryStartKey = "comfort:query_start"

// InstrumentDB registers otelgorm on db plus callbacks that tag each query
// span with its table and row count and flag slow queries.
func InstrumentDB(db *gorm.DB, cfg DBTracingConfig, tp trace.TracerProvider, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithTracerProvider(tp),
		otelgorm.WithDBName(cfg.DBSystem),
		otelgorm.WithoutMetrics(),
	}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	after := slowQueryCallback(cfg.SlowQueryThresh)
	hooks := []struct {
		callback interface {
			Register(string, func(*gorm.DB)) error
		}
		hook func(*gorm.DB)
		name string
	}{
		{cb.Create().Before("gorm:create"), markQueryStart, "start:create"},
		{cb.Create().After("gorm:create").Before("otel:after:create"), after, "finish:create"},
		{cb.Query().Before("gorm:query"), markQueryStart, "start:query"},
		{cb.Query().After("gorm:query").Before("otel:after:query"), after, "finish:query"},
		{cb.Update().Before("gorm:update"), markQueryStart, "start:update"},
		{cb.Update().After("gorm:update").Before("otel:after:update"), after, "finish:update"},
		{cb.Delete().Before("gorm:delete"), markQueryStart, "start:delete"},
		{cb.Delete().After("gorm:delete").Before("otel:after:delete"), after, "finish:delete"},
		{cb.Row().Before("gorm:row"), markQueryStart, "start:row"},
		{cb.Row().After("gorm:row").Before("otel:after:row"), after, "finish:row"},
		{cb.Raw().Before("gorm:raw"), markQueryStart, "start:raw"},
		{cb.Raw().After("gorm:raw").Before("otel:after:raw"), after, "finish:raw"},
	}
	for _, h := range hooks {
		if err := h.callback.Register("comfort:"+h.name, h.hook); err != nil {
			return err
		}
	}

	logger.Info("database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func slowQueryCallback(threshold time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}

		if threshold <= 0 {
			return
		}
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("threshold_ms", threshold.Milliseconds()),
			))
		}
	}
}
