package httpapi

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pradeepkk321/fhir-mapper/facade"
	"github.com/pradeepkk321/fhir-mapper/internal/config"
	"github.com/pradeepkk321/fhir-mapper/mapping"
)

// Server wires the facade, registry loader, and configuration behind the
// route handlers. It holds no state of its own beyond what it was
// constructed with; POST /validate installs a reloaded registry through the
// Facade's own atomic swap (Facade.Reload).
type Server struct {
	cfg    *config.Config
	log    zerolog.Logger
	facade *facade.Facade
	loader *mapping.Loader
}

// NewServer creates a Server over an already-populated Facade.
func NewServer(cfg *config.Config, log zerolog.Logger, f *facade.Facade, loader *mapping.Loader) *Server {
	return &Server{cfg: cfg, log: log, facade: f, loader: loader}
}

// Echo builds and returns an *echo.Echo with every route and middleware
// installed, ready for e.Start or httptest.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(Recovery(s.log))
	e.Use(RequestID())
	e.Use(Logger(s.log))

	e.GET("/health", s.handleHealth)
	e.POST("/transform", s.handleTransform)
	e.POST("/validate", s.handleValidate)
	e.GET("/lookups", s.handleListLookups)
	e.GET("/lookups/:id/translate", s.handleTranslate)

	return e
}
