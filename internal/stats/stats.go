package stats

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/alexivanou/cityinfo-api/internal/config"
	"github.com/jmoiron/sqlx"
)

type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Database  DatabaseStats `json:"database"`
	Content   ContentStats  `json:"content"`
	Runtime   RuntimeStats  `json:"runtime"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapInuse  uint64 `json:"heap_inuse"`
}

type DatabaseStats struct {
	Type         string      `json:"type"`
	TotalRecords int64       `json:"total_records"`
	SizeBytes    int64       `json:"size_bytes"`
	TableStats   []TableStat `json:"table_stats"`
}

type TableStat struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// ContentStats summarizes how points of interest are spread over cities
type ContentStats struct {
	Cities                        int64   `json:"cities"`
	PointsOfInterest              int64   `json:"points_of_interest"`
	CitiesWithoutPointsOfInterest int64   `json:"cities_without_points_of_interest"`
	AveragePointsOfInterest       float64 `json:"average_points_of_interest"`
	MaxPointsOfInterest           int64   `json:"max_points_of_interest"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

var trackedTables = []string{"cities", "points_of_interest"}

type Collector struct {
	db         *sqlx.DB
	config     config.DBConfig
	startTime  time.Time
	cachedMem  *MemoryStats
	cacheTime  time.Time
	cacheMutex sync.RWMutex
}

var (
	memStatsCacheDuration = 5 * time.Second
)

func NewCollector(db *sqlx.DB, cfg config.DBConfig) *Collector {
	return &Collector{
		db:        db,
		config:    cfg,
		startTime: time.Now(),
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Timestamp: time.Now(),
	}

	stats.Memory = c.collectMemoryStats()

	dbStats, err := c.collectDatabaseStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Database = *dbStats

	content, err := c.collectContentStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Content = *content
	stats.Runtime = c.collectRuntimeStats()

	return stats, nil
}

func (c *Collector) collectMemoryStats() MemoryStats {
	c.cacheMutex.RLock()
	if c.cachedMem != nil && time.Since(c.cacheTime) < memStatsCacheDuration {
		mem := *c.cachedMem
		c.cacheMutex.RUnlock()
		return mem
	}
	c.cacheMutex.RUnlock()

	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mem := MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
	}

	c.cachedMem = &mem
	c.cacheTime = time.Now()

	return mem
}

func (c *Collector) collectDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{
		Type: string(c.config.Type),
	}

	if totalSize, err := c.getDatabaseSize(ctx); err == nil {
		stats.SizeBytes = totalSize
	}

	tableStats, err := c.getTableStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.TableStats = tableStats

	for _, ts := range tableStats {
		stats.TotalRecords += ts.RowCount
	}

	return stats, nil
}

func (c *Collector) getDatabaseSize(ctx context.Context) (int64, error) {
	var size int64
	var err error

	if c.config.Type == config.DBTypePostgreSQL {
		err = c.db.GetContext(ctx, &size, "SELECT pg_database_size(current_database())")
	} else {
		err = c.db.GetContext(ctx, &size, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	}

	if err != nil {
		return 0, err
	}
	return size, nil
}

func (c *Collector) getTableStats(ctx context.Context) ([]TableStat, error) {
	stats := make([]TableStat, 0, len(trackedTables))

	for _, table := range trackedTables {
		stat, err := c.getTableStat(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats = append(stats, *stat)
	}

	return stats, nil
}

func (c *Collector) getTableStat(ctx context.Context, tableName string) (*TableStat, error) {
	stat := &TableStat{Name: tableName}

	countQuery := "SELECT COUNT(*) FROM " + tableName
	var count int64
	err := c.db.GetContext(ctx, &count, countQuery)
	if err != nil {
		return nil, err
	}
	stat.RowCount = count

	if c.config.Type == config.DBTypePostgreSQL {
		sizeQuery := `SELECT COALESCE(pg_total_relation_size($1::regclass), 0)`
		var size int64
		err = c.db.GetContext(ctx, &size, sizeQuery, tableName)
		if err == nil {
			stat.SizeBytes = size
		}
	} else {
		// dbstat is only compiled into some SQLite builds
		sizeQuery := `SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?`
		var size int64
		_ = c.db.GetContext(ctx, &size, sizeQuery, tableName)
		stat.SizeBytes = size
	}

	return stat, nil
}

func (c *Collector) collectContentStats(ctx context.Context) (*ContentStats, error) {
	q := `
		SELECT
			COUNT(*) AS cities,
			COALESCE(SUM(per_city.poi_count), 0) AS points_of_interest,
			COALESCE(SUM(CASE WHEN per_city.poi_count = 0 THEN 1 ELSE 0 END), 0) AS cities_without_points_of_interest,
			COALESCE(MAX(per_city.poi_count), 0) AS max_points_of_interest
		FROM (
			SELECT c.id, COUNT(p.id) AS poi_count
			FROM cities c
			LEFT JOIN points_of_interest p ON p.city_id = c.id
			GROUP BY c.id
		) per_city
	`
	var row struct {
		Cities                        int64 `db:"cities"`
		PointsOfInterest              int64 `db:"points_of_interest"`
		CitiesWithoutPointsOfInterest int64 `db:"cities_without_points_of_interest"`
		MaxPointsOfInterest           int64 `db:"max_points_of_interest"`
	}
	if err := c.db.GetContext(ctx, &row, q); err != nil {
		return nil, fmt.Errorf("failed to collect content statistics: %w", err)
	}

	content := &ContentStats{
		Cities:                        row.Cities,
		PointsOfInterest:              row.PointsOfInterest,
		CitiesWithoutPointsOfInterest: row.CitiesWithoutPointsOfInterest,
		MaxPointsOfInterest:           row.MaxPointsOfInterest,
	}
	if row.Cities > 0 {
		content.AveragePointsOfInterest = float64(row.PointsOfInterest) / float64(row.Cities)
	}
	return content, nil
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	uptime := time.Since(c.startTime).Seconds()
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(uptime),
	}
}
