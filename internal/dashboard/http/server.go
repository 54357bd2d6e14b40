package httpapi

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/keiba-roi-dashboard/internal/dashboard/state"
	"github.com/radieske/keiba-roi-dashboard/internal/dashboard/view"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/aggregate"
)

//go:embed templates/dashboard.html
var templatesFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templatesFS, "templates/dashboard.html"))

// Server expõe o dashboard HTML, a API JSON e o WebSocket de avisos
type Server struct {
	Ctrl        *state.Controller
	WS          http.HandlerFunc // nil desliga /ws
	Log         *zap.Logger
	CORSOrigins []string
}

// Router monta as rotas; /ws fica fora do timeout por ser uma conexão longa
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.Log))
	r.Use(chimiddleware.Recoverer)

	if s.WS != nil {
		r.Get("/ws", s.WS)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))

		// Páginas (formulários com redirect 303 de volta para /)
		r.Get("/", s.dashboard)
		r.Post("/reload", s.reloadForm)
		r.Post("/select", s.selectForm)
		r.Post("/window/{dir}", s.windowForm)

		// API JSON
		r.Route("/v1", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.CORSOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
			r.Get("/summary", s.getSummary)
			r.Get("/months", s.listMonths)
			r.Get("/weeks", s.listWeeks)
			r.Get("/days", s.listDays)
			r.Get("/days/{key}/races", s.listRaces(aggregate.KindDay))
			r.Get("/weeks/{key}/races", s.listRaces(aggregate.KindWeek))
			r.Post("/reload", s.postReload)
		})
	})
	return r
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	page := view.NewPage(s.Ctrl.Snapshot())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, page); err != nil {
		s.Log.Error("render dashboard failed", zap.Error(err))
	}
}

func (s *Server) reloadForm(w http.ResponseWriter, r *http.Request) {
	// falhas ficam no snapshot e aparecem no resumo; carga obsoleta é ignorada
	if _, err := s.Ctrl.Reload(r.Context()); err != nil && !errors.Is(err, state.ErrStaleRun) {
		s.Log.Warn("reload from dashboard failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// selectForm aceita kind+key (seletor de semana) ou day (clique no gráfico)
func (s *Server) selectForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	var err error
	if day := r.PostForm.Get("day"); day != "" {
		_, err = s.Ctrl.SelectDay(day)
	} else {
		kind := aggregate.Kind(r.PostForm.Get("kind"))
		if kind == "" {
			kind = aggregate.KindWeek
		}
		_, err = s.Ctrl.Select(kind, r.PostForm.Get("key"))
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/#detail", http.StatusSeeOther)
}

func (s *Server) windowForm(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "dir") {
	case "prev":
		s.Ctrl.Retreat()
	case "next":
		s.Ctrl.Advance()
	default:
		http.Error(w, "dir must be prev or next", http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/#chart", http.StatusSeeOther)
}

// requestLogger registra cada request com zap
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
