package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"farrier-backend/pkg/utils"
)

// MonitoringHandler reports host and process stats for the admin settings
// screen. Prometheus scrapes /metrics; this endpoint is for humans.
type MonitoringHandler struct {
	startTime time.Time
}

func NewMonitoringHandler() *MonitoringHandler {
	return &MonitoringHandler{startTime: time.Now()}
}

type systemStats struct {
	UptimeSeconds int64   `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	DiskPercent   float64 `json:"disk_percent"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	DiskTotalGB   float64 `json:"disk_total_gb"`
}

func (h *MonitoringHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := systemStats{
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(memStats.HeapAlloc) / 1024 / 1024,
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
		stats.MemoryTotalMB = float64(vm.Total) / 1024 / 1024
	}
	if du, err := disk.Usage("/"); err == nil {
		stats.DiskPercent = du.UsedPercent
		stats.DiskTotalGB = float64(du.Total) / 1024 / 1024 / 1024
	}

	utils.RespondJSON(w, http.StatusOK, stats)
}
