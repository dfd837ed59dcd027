// Package web serves the carbon footprint form and results page.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jgoulah/carbonform/internal/chart"
	"github.com/jgoulah/carbonform/internal/config"
	"github.com/jgoulah/carbonform/internal/log"
)

var (
	//go:embed all:assets
	content embed.FS
)

// Controller owns the HTTP server and the application state it serves
type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg    *config.Config
	Server http.Server

	state  *State
	runner *Runner
	board  *chart.Board

	tmpl   *template.Template
	static fs.FS
	now    func() time.Time
}

// NewController creates the web controller
func NewController(cfg *config.Config) (*Controller, error) {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		board:  chart.NewBoard(),
		now:    time.Now,
	}
	c.state = NewState(c.now())
	c.runner = NewRunner(cfg.GetComputeDelay(), c.taskDone)

	tmpl, err := template.New("index.html.tmpl").Funcs(templateFuncs).ParseFS(content, "assets/templates/index.html.tmpl")
	if err != nil {
		cancel()
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	c.tmpl = tmpl

	static, err := fs.Sub(content, "assets/static")
	if err != nil {
		cancel()
		return nil, fmt.Errorf("loading static assets: %w", err)
	}
	c.static = static

	c.Server.Addr = cfg.GetListenAddr()
	c.Server.Handler = c.setupRouter()
	c.Server.ReadHeaderTimeout = 10 * time.Second

	return c, nil
}

// Handler returns the router
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// ListenAndServe serves until Shutdown is called
func (c *Controller) ListenAndServe() error {
	log.Infof("listening on %s", c.Server.Addr)
	if err := c.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

// Shutdown cancels any pending computation and stops the server
func (c *Controller) Shutdown(ctx context.Context) error {
	log.Info("shutting down web server")
	c.cancel()
	c.runner.Cancel()
	c.runner.Wait()
	return c.Server.Shutdown(ctx)
}

// taskDone runs when the current computation finishes
func (c *Controller) taskDone(ts TaskState) {
	if ts.Err != nil {
		log.Warnw("emissions computation failed", "task", ts.ID, "error", ts.Err)
		c.board.Clear()
		c.state.SetResults(nil, ts.Err)
		return
	}

	view := NewResultsView(ts.Result, c.board)
	c.state.SetResults(view, nil)
	log.Infow("emissions computed",
		"task", ts.ID,
		"entries", len(ts.Result.Entries),
		"annual_tons", view.AnnualEstimate,
		"factor", ts.Result.Factor,
	)
}

func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.loggingMiddleware)

	router.HandleFunc("/", c.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/tab/{tab}", c.handleSelectTab).Methods(http.MethodPost)
	router.HandleFunc("/entries", c.handleAddRow).Methods(http.MethodPost)
	router.HandleFunc("/submit", c.handleSubmit).Methods(http.MethodPost)
	router.HandleFunc("/recommendations", c.handleViewRecommendations).Methods(http.MethodPost)
	router.HandleFunc("/results/status", c.handleResultsStatus).Methods(http.MethodGet)
	router.HandleFunc("/export.xlsx", c.handleExport).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/emissions", c.handleAPIEmissions).Methods(http.MethodPost)
	api.HandleFunc("/recommendations", c.handleAPIRecommendations).Methods(http.MethodGet)
	api.HandleFunc("/factors", c.handleAPIFactors).Methods(http.MethodGet)

	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(c.static))))

	return router
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (c *Controller) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// The loading page polls itself while a computation is pending
		if r.URL.Path == "/results/status" {
			log.Debugw("request", "method", r.Method, "path", r.URL.Path, "status", rec.status)
			return
		}
		log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
