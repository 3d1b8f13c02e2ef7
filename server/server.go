package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/ums-portal/apiclient"
	"github.com/jrsteele09/ums-portal/gate"
	"github.com/jrsteele09/ums-portal/internal/config"
	"github.com/jrsteele09/ums-portal/sessions"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	api      *apiclient.Client
	sessions *sessions.Manager
	gate     *gate.Gate
	menus    *Menus
	validate *validator.Validate
	pages    map[string]*template.Template
}

func New(config config.Config, api *apiclient.Client, sessionManager *sessions.Manager) (*Server, error) {
	menus, err := LoadMenus()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to load menus: %w", err)
	}

	pages, err := ParsePages(pageLogin, pageRegister, pageDashboard, pageProfile)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:      config.GetEnv(),
		mux:      http.NewServeMux(),
		config:   config,
		api:      api,
		sessions: sessionManager,
		menus:    menus,
		validate: newValidator(),
		pages:    pages,
	}
	s.gate = gate.New(RouteLogin, func(r *http.Request) gate.TokenSource {
		return sessions.FromContext(r.Context())
	})

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
