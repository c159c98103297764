package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/exportguard/exportguardd/internal/config"
	"github.com/exportguard/exportguardd/internal/events"

	_ "github.com/joho/godotenv/autoload"
)

// Server exposes the read-only process surface: liveness and the last cycle
// snapshot. It never touches devices, that stays the scheduler's monopoly.
type Server struct {
	port    uint
	httpLog bool
	status  *events.StatusStore
}

func NewServer(cfg config.Config, status *events.StatusStore) *http.Server {
	s := &Server{
		port:    cfg.Port,
		httpLog: cfg.HttpLog,
		status:  status,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
