package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"dwello-backend/internal/middleware"
	"dwello-backend/internal/pkg/apperrors"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// ErrorLogSize is how many 5xx entries the error log keeps.
const ErrorLogSize = 50

// DBPinger is satisfied by *sql.DB. A nil pinger reports the database as disconnected.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// Service reports process health. Rdb and DB are optional; Clients reports connected
// realtime listeners.
type Service struct {
	Rdb          *redis.Client
	DB           DBPinger
	Clients      func() int
	AdminKeyHash string
}

type Result struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	AllocMB  int `json:"alloc"`
	HeapUsed int `json:"heapUsed"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime string      `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
	Count  *int   `json:"count,omitempty"`
}

// Collect gathers dependency status and the traffic counters kept by the health marker.
func (s *Service) Collect(ctx context.Context) Result {
	result := Result{Dependencies: make(map[string]DepStatus)}

	dbStatus := DepStatus{Status: "disconnected"}
	if s.DB != nil {
		start := time.Now()
		if err := s.DB.PingContext(ctx); err == nil {
			ms := time.Since(start).Milliseconds()
			dbStatus = DepStatus{Status: "connected", PingMs: &ms}
		} else {
			dbStatus.Status = "error"
		}
	}
	result.Dependencies["database"] = dbStatus

	redisStatus := DepStatus{Status: "disconnected"}
	stats := TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"}
	startTimeMs := time.Now().UnixMilli()
	if s.Rdb != nil {
		start := time.Now()
		if err := s.Rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisStatus = DepStatus{Status: "connected", PingMs: &ms}
			startTimeMs = s.readTraffic(ctx, &stats, startTimeMs)
		} else {
			redisStatus.Status = "error"
		}
	}
	result.Dependencies["redis"] = redisStatus

	if s.Clients != nil {
		n := s.Clients()
		result.Dependencies["realtime"] = DepStatus{Status: "running", Count: &n}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{AllocMB: int(m.Alloc / 1024 / 1024), HeapUsed: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}
	result.Traffic = stats

	result.Status = "issue"
	if dbStatus.Status == "connected" && redisStatus.Status != "error" {
		result.Status = "ok"
	}
	return result
}

func (s *Service) readTraffic(ctx context.Context, stats *TrafficInfo, startTimeMs int64) int64 {
	vals, err := s.Rdb.MGet(ctx,
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq,
	).Result()
	if err != nil {
		return startTimeMs
	}
	str := func(i int) string {
		v, _ := vals[i].(string)
		return v
	}
	if t, err := strconv.ParseInt(str(4), 10, 64); err == nil {
		startTimeMs = t
	} else {
		s.Rdb.SetNX(ctx, middleware.KeyStartTime, startTimeMs, 0)
	}
	stats.TotalRequests, _ = strconv.Atoi(str(0))
	stats.FailedCount, _ = strconv.Atoi(str(1))
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(2), 64)
	if count, _ := strconv.Atoi(str(3)); count > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if raw := str(5); raw != "" {
		var last map[string]interface{}
		if json.Unmarshal([]byte(raw), &last) == nil {
			stats.LastRequest = last
		}
	}
	return startTimeMs
}

// Errors returns the most recent 5xx entries, newest first.
func (s *Service) Errors(ctx context.Context) ([]map[string]interface{}, error) {
	out := []map[string]interface{}{}
	if s.Rdb == nil {
		return out, nil
	}
	entries, err := s.Rdb.LRange(ctx, middleware.KeyErrorLog, 0, ErrorLogSize-1).Result()
	if err != nil {
		return nil, apperrors.Internal("Failed to read error log", err)
	}
	for _, e := range entries {
		var m map[string]interface{}
		if json.Unmarshal([]byte(e), &m) == nil && m != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

// Reset clears the counters and error log. key is checked against the configured bcrypt hash.
func (s *Service) Reset(ctx context.Context, key string) error {
	if s.AdminKeyHash == "" || key == "" ||
		bcrypt.CompareHashAndPassword([]byte(s.AdminKeyHash), []byte(key)) != nil {
		return apperrors.Forbidden("Unauthorized")
	}
	if s.Rdb == nil {
		return apperrors.Internal("Stats store unavailable", nil)
	}
	keys := []string{
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq, middleware.KeyErrorLog,
	}
	if err := s.Rdb.Del(ctx, keys...).Err(); err != nil {
		return apperrors.Internal("Failed to reset stats", err)
	}
	if err := s.Rdb.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err(); err != nil {
		return apperrors.Internal("Failed to reset stats", err)
	}
	return nil
}
