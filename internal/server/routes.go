package server

import (
	"fmt"
	"net/http"
	"time"

	"Walkmate_V0.1/internal/auth"
	"Walkmate_V0.1/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.Use(LoggerMiddleware)

	e.GET("/health", s.healthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	// Protected routes
	protected := e.Group("")
	protected.Use(auth.JwtAuthMiddleware(s.jwtSecret))

	protected.POST("/chat", s.chatHandler)
	protected.GET("/chat/ws", s.chatSocketHandler)

	return e
}

// LoggerMiddleware tags every request with an ID and a request-scoped logger,
// reachable from the echo context and from the request context.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().
			Str("request_id", requestID).
			Str("ip", utility.GetRealIP(c)).
			Logger()

		c.Set("logger", &logger)
		c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context())))

		return next(c)
	}
}

func loggerFrom(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get("logger").(*zerolog.Logger); ok {
		return logger
	}
	return &log.Logger
}

func (s *Server) healthHandler(c echo.Context) error {
	dbStats := s.db.Health()

	status, code := "online", http.StatusOK
	if dbStats["status"] != "up" {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	resp := hostStats(s.startTime)
	resp["status"] = status
	resp["database"] = dbStats
	resp["chat_sessions"] = s.hub.Count()

	return c.JSON(code, resp)
}

// hostStats reports runtime, CPU, memory and disk usage. Probes that fail are left out.
func hostStats(startTime time.Time) map[string]interface{} {
	stats := map[string]interface{}{}

	runtime := map[string]interface{}{
		"uptime":     time.Since(startTime).Round(time.Second).String(),
		"start_time": startTime.Format(time.RFC3339),
	}
	if hInfo, err := host.Info(); err == nil {
		runtime["os"] = hInfo.OS
		runtime["platform"] = hInfo.Platform
		runtime["arch"] = hInfo.KernelArch
		runtime["hostname"] = hInfo.Hostname
	}
	stats["runtime"] = runtime

	if cpuPercent, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		cores, _ := cpu.Counts(true)
		stats["cpu"] = map[string]interface{}{
			"usage_percent": fmt.Sprintf("%.2f%%", cpuPercent[0]),
			"cores":         cores,
		}
	}

	if v, err := mem.VirtualMemory(); err == nil {
		stats["memory"] = map[string]interface{}{
			"total_gb":     gigabytes(v.Total),
			"used_gb":      gigabytes(v.Used),
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
			"free_gb":      gigabytes(v.Free),
		}
	}

	if d, err := disk.Usage("/"); err == nil {
		stats["disk"] = map[string]interface{}{
			"total_gb":     gigabytes(d.Total),
			"used_gb":      gigabytes(d.Used),
			"used_percent": fmt.Sprintf("%.2f%%", d.UsedPercent),
		}
	}

	return stats
}

func gigabytes(b uint64) string {
	return fmt.Sprintf("%.2f GB", float64(b)/1024/1024/1024)
}
