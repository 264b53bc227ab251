// Package web exposes the monitor's control and observability surface over
// HTTP: the status snapshot plus the device and alarm toggles that would
// otherwise live on physical buttons.
package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tremorsense/tremor-monitor/internal/monitor"
	"github.com/tremorsense/tremor-monitor/pkg/logging"
)

// Server serves the monitor control API.
type Server struct {
	app     *fiber.App
	addr    string
	monitor *monitor.Monitor
	logger  logging.Logger
}

// NewServer creates the control API around a monitor.
func NewServer(addr string, mon *monitor.Monitor, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	s := &Server{
		addr:    addr,
		monitor: mon,
		logger:  logger.WithFields(logging.Fields{"component": "web"}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "tremor-monitor",
		DisableStartupMessage: true,
	})

	app.Get("/status", s.handleStatus)
	app.Post("/device/toggle", s.handleDeviceToggle)
	app.Post("/alarm/toggle", s.handleAlarmToggle)

	s.app = app
	return s
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.monitor.Snapshot())
}

func (s *Server) handleDeviceToggle(c *fiber.Ctx) error {
	running := s.monitor.ToggleDevice()
	s.logger.Info("device toggled", logging.Fields{"running": running})
	return c.JSON(fiber.Map{"running": running})
}

func (s *Server) handleAlarmToggle(c *fiber.Ctx) error {
	enabled := s.monitor.ToggleAlarm()
	s.logger.Info("alarm toggled", logging.Fields{"alarm_enabled": enabled})
	return c.JSON(fiber.Map{"alarm_enabled": enabled})
}

// Listen blocks serving the API until Shutdown is called.
func (s *Server) Listen() error {
	s.logger.Info("control API listening", logging.Fields{"addr": s.addr})
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
