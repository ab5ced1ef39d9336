package v1

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

const healthPingTimeout = 2 * time.Second

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptimeSeconds"`
	Timestamp     string         `json:"timestamp"`
	Database      DatabaseHealth `json:"database"`
	System        *SystemHealth  `json:"system,omitempty"`
}

// DatabaseHealth reports store connectivity.
type DatabaseHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SystemHealth reports host and process resource usage.
type SystemHealth struct {
	MemoryTotal   uint64  `json:"memoryTotal"`
	MemoryUsed    uint64  `json:"memoryUsed"`
	MemoryUsedPct float64 `json:"memoryUsedPct"`
	ProcessRSS    uint64  `json:"processRss"`
	DiskTotal     uint64  `json:"diskTotal"`
	DiskFree      uint64  `json:"diskFree"`
	DiskUsedPct   float64 `json:"diskUsedPct"`
}

// HealthCheck handles GET /api/health. It responds 503 when the database
// does not answer a ping.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	uptime := time.Since(c.startTime)

	resp := HealthResponse{
		Status:        "healthy",
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		Timestamp:     time.Now().Format(time.RFC3339),
		Database:      DatabaseHealth{Status: "connected"},
		System:        c.systemHealth(reqCtx),
	}
	if c.Settings != nil {
		resp.Version = c.Settings.Version
	}

	code := http.StatusOK
	if c.DB != nil {
		pingCtx, cancel := context.WithTimeout(reqCtx, healthPingTimeout)
		defer cancel()
		if err := c.DB.Ping(pingCtx); err != nil {
			c.log.WithContext(reqCtx).Warn("health check database ping failed", logger.Error(err))
			resp.Status = "unhealthy"
			resp.Database = DatabaseHealth{Status: "disconnected", Error: err.Error()}
			code = http.StatusServiceUnavailable
		}
	} else {
		resp.Database.Status = "unknown"
	}
	return ctx.JSON(code, resp)
}

// systemHealth collects resource usage. Probes that fail on this platform
// leave their fields zero.
func (c *Controller) systemHealth(ctx context.Context) *SystemHealth {
	var out SystemHealth
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out.MemoryTotal = vm.Total
		out.MemoryUsed = vm.Used
		out.MemoryUsedPct = vm.UsedPercent
	} else {
		c.log.Debug("memory probe failed", logger.Error(err))
	}
	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfoWithContext(ctx); err == nil && info != nil {
			out.ProcessRSS = info.RSS
		}
	}
	if usage, err := disk.UsageWithContext(ctx, c.dataDir); err == nil {
		out.DiskTotal = usage.Total
		out.DiskFree = usage.Free
		out.DiskUsedPct = usage.UsedPercent
	} else {
		c.log.Debug("disk probe failed", logger.String("path", c.dataDir), logger.Error(err))
	}
	return &out
}
