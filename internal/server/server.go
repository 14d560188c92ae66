package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	cointime "github.com/drakos74/fidle/internal/time"
	"github.com/rs/zerolog/log"
)

type Action string

type Method string

const (
	Data Action = "data"
	Api  Action = "api"

	GET  Method = "GET"
	POST Method = "POST"
)

type Handler func(r *http.Request) ([]byte, int, error)

type Route struct {
	Action Action
	Path   string
	Method Method
	Exec   Handler
}

// Pattern returns the url path the route is served under.
func (r Route) Pattern() string {
	if r.Path != "" {
		return fmt.Sprintf("/%s/%s", r.Action, r.Path)
	}
	return fmt.Sprintf("/%s", r.Action)
}

type Server struct {
	name    string
	port    int
	debug   bool
	routes  []Route
	mounted map[string]http.Handler
}

func NewServer(name string, port int) *Server {
	return &Server{
		name:    name,
		port:    port,
		routes:  make([]Route, 0),
		mounted: make(map[string]http.Handler),
	}
}

// Debug sets the server to debug mode
func (s *Server) Debug() *Server {
	s.debug = true
	return s
}

// AddRoute adds a route for the given handler
func (s *Server) AddRoute(method Method, action Action, path string, exec Handler) *Server {
	s.routes = append(s.routes, Route{
		Action: action,
		Path:   path,
		Method: method,
		Exec:   exec,
	})
	return s
}

// Add adds the given routes to the server
func (s *Server) Add(route ...Route) *Server {
	s.routes = append(s.routes, route...)
	return s
}

// Mount serves a plain http handler under the given path.
func (s *Server) Mount(path string, h http.Handler) *Server {
	s.mounted[path] = h
	return s
}

func (s *Server) handle(route Route) http.HandlerFunc {
	pattern := route.Pattern()
	return func(w http.ResponseWriter, r *http.Request) {
		chrono := cointime.NewChrono().Start()
		defer func() {
			if s.debug {
				log.Info().
					Str("method", r.Method).
					Str("path", pattern).
					Str("duration", cointime.FormatDelay(chrono.Stop())).
					Msg("served request")
			}
		}()
		if Method(r.Method) != route.Method {
			w.WriteHeader(http.StatusNotImplemented)
			return
		}
		b, code, err := route.Exec(r)
		if err != nil {
			s.error(w, err)
		} else if code != http.StatusOK && code != 0 {
			s.code(w, b, code)
		} else {
			s.respond(w, b)
		}
	}
}

// Handler builds the http handler serving all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, route := range s.routes {
		mux.HandleFunc(route.Pattern(), s.handle(route))
	}
	for path, h := range s.mounted {
		mux.Handle(path, h)
	}
	return mux
}

// Run starts the server
func (s *Server) Run() error {
	log.Warn().Str("server", s.name).Int("port", s.port).Msg("starting server")
	if err := http.ListenAndServe(fmt.Sprintf(":%d", s.port), s.Handler()); err != nil {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) code(w http.ResponseWriter, b []byte, code int) {
	w.WriteHeader(code)
	s.respond(w, b)
}

func (s *Server) respond(w http.ResponseWriter, b []byte) {
	_, err := w.Write(b)
	if err != nil {
		log.Error().Err(err).Msg("could not write response")
	}
}

func (s *Server) error(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("error for http request")
	s.code(w, []byte(err.Error()), http.StatusInternalServerError)
}

func Live() Route {
	return Route{
		Action: Data,
		Method: GET,
		Exec: func(r *http.Request) (payload []byte, code int, err error) {
			return []byte{}, http.StatusOK, nil
		},
	}
}

// Json returns a GET route serving the json encoding of the value returned by get.
func Json(action Action, path string, get func(r *http.Request) (interface{}, error)) Route {
	return Route{
		Action: action,
		Path:   path,
		Method: GET,
		Exec: func(r *http.Request) ([]byte, int, error) {
			v, err := get(r)
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			b, err := json.Marshal(v)
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return b, http.StatusOK, nil
		},
	}
}
