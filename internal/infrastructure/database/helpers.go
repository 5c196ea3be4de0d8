package database

import (
	"fmt"
	"log"
	"time"
)

// Close shuts the pool down. Safe to call more than once.
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		return nil
	}

	log.Println("[DATABASE] Closing database connection pool...")
	db.Pool.Close()
	db.Pool = nil
	log.Println("[DATABASE] Connection pool closed successfully")

	return nil
}

// PoolStats is a JSON-friendly snapshot of pgxpool statistics,
// exposed by the health endpoint and the metrics collector.
type PoolStats struct {
	AcquiredConns        int32         `json:"acquired_conns"`
	IdleConns            int32         `json:"idle_conns"`
	TotalConns           int32         `json:"total_conns"`
	MaxConns             int32         `json:"max_conns"`
	AcquireCount         int64         `json:"acquire_count"`
	CanceledAcquireCount int64         `json:"canceled_acquire_count"`
	EmptyAcquireCount    int64         `json:"empty_acquire_count"`
	AvgAcquireDuration   time.Duration `json:"avg_acquire_duration_ns"`
}

// Stats returns a snapshot of the pool statistics.
func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	raw := db.Pool.Stat()
	return &PoolStats{
		AcquiredConns:        raw.AcquiredConns(),
		IdleConns:            raw.IdleConns(),
		TotalConns:           raw.TotalConns(),
		MaxConns:             raw.MaxConns(),
		AcquireCount:         raw.AcquireCount(),
		CanceledAcquireCount: raw.CanceledAcquireCount(),
		EmptyAcquireCount:    raw.EmptyAcquireCount(),
		AvgAcquireDuration:   calculateAvgDuration(raw.AcquireDuration(), raw.AcquireCount()),
	}, nil
}

func calculateAvgDuration(totalDuration time.Duration, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return totalDuration / time.Duration(count)
}
