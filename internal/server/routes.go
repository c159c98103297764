package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/status", s.StatusHandler)

	return e
}

// HealthCheckHandler reports OK once at least one control cycle has
// completed. Before that the daemon is still starting (or stuck on its very
// first cycle), which a supervisor should see as not-ready.
func (s *Server) HealthCheckHandler(c echo.Context) error {
	if _, ok := s.status.Last(); !ok {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	return c.String(http.StatusOK, "health_check: OK")
}

func (s *Server) StatusHandler(c echo.Context) error {
	status, ok := s.status.Last()
	if !ok {
		return c.String(http.StatusServiceUnavailable, "no cycle completed yet")
	}
	return c.JSON(http.StatusOK, status)
}
