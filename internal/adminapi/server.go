// Package adminapi implements the read-only operator HTTP surface
// (SPEC_FULL §4.15): /healthz and /stats. Grounded on the teacher's
// internal/api (gin engine, recovery middleware, http.Server timeouts) and
// internal/api/handlers/health.go's use of shirou/gopsutil/v3 for host
// CPU/mem sampling, trimmed to the two endpoints SPEC_FULL names — this
// proxy's admin surface never edits configuration, zones, or blocklist
// entries, unlike the teacher's much larger management API.
package adminapi

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/pinedrop/noxdns/internal/blocklist"
	"github.com/pinedrop/noxdns/internal/cache"
)

// Server is the admin HTTP server. It is always read-only: the blocklist
// and cache it reports on are owned elsewhere and it never mutates either.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	ready      func() bool
}

// New builds a Server bound to addr, reporting on bl/c/counters. ready
// reports whether /healthz should answer ok (SPEC_FULL §4.15: once the
// blocklist has loaded and the dispatcher socket is bound).
func New(addr string, logger *slog.Logger, bl *blocklist.Blocklist, c *cache.Cache, counters *Counters, ready func() bool) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if ready == nil {
		ready = func() bool { return true }
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	startTime := time.Now()
	engine.GET("/healthz", func(c *gin.Context) {
		if !ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/stats", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, buildStats(startTime, bl, c, counters))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		engine: engine,
		ready:  ready,
	}
}

// Engine exposes the underlying gin.Engine for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// StatsResponse is the JSON shape of GET /stats.
type StatsResponse struct {
	UptimeSeconds  int64   `json:"uptime_seconds"`
	BlocklistSize  int     `json:"blocklist_size"`
	CacheSize      int     `json:"cache_size"`
	QueriesTotal   uint64  `json:"queries_total"`
	QueriesBlocked uint64  `json:"queries_blocked"`
	QueriesCached  uint64  `json:"queries_cache_hit"`
	QueriesForward uint64  `json:"queries_forwarded"`
	QueriesFailed  uint64  `json:"queries_failed"`
	NumCPU         int     `json:"num_cpu"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemUsedPercent float64 `json:"mem_used_percent"`
}

func buildStats(startTime time.Time, bl *blocklist.Blocklist, c *cache.Cache, counters *Counters) StatsResponse {
	snap := counters.Snapshot()
	resp := StatsResponse{
		UptimeSeconds:  int64(time.Since(startTime).Seconds()),
		BlocklistSize:  bl.Size(),
		CacheSize:      c.Len(),
		QueriesTotal:   snap.Total,
		QueriesBlocked: snap.Blocked,
		QueriesCached:  snap.CacheHit,
		QueriesForward: snap.Forwarded,
		QueriesFailed:  snap.Failed,
		NumCPU:         runtime.NumCPU(),
	}
	if cpuPercent, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		resp.CPUPercent = cpuPercent[0]
	}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		resp.MemUsedPercent = vmStat.UsedPercent
	}
	return resp
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// ListenAndServe runs the admin HTTP server until it is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the admin HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
