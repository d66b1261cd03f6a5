package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bkabbarah/coachkit/app/clientbundle"
	"github.com/bkabbarah/coachkit/app/core"
	"github.com/bkabbarah/coachkit/app/importbundle"
	"github.com/bkabbarah/coachkit/app/livefeed"
	"github.com/bkabbarah/coachkit/app/systembundle"
	"github.com/bkabbarah/coachkit/app/textgen"
	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
)

// services is everything the bundles share.
type services struct {
	cfg      core.Configuration
	logger   *log.Logger
	ormDB    *gorm.DB
	sessions *core.SessionCache
	metrics  *core.Metrics
	hub      *livefeed.Hub
	imports  *importbundle.SessionStore
	gen      textgen.Generator
}

func initBundles(s *services) ([]core.Bundle, error) {
	base := core.Controller{Sessions: s.sessions, Logger: s.logger}
	maxUpload := s.cfg.Server.MaxUploadMB << 20

	mapper, err := newMapper(s.cfg, s.gen, false)
	if err != nil {
		return nil, err
	}
	importService := importbundle.NewImportService(importbundle.ServiceOptions{
		Mapper:    mapper,
		Store:     importbundle.NewGormRecordStore(s.ormDB, s.cfg.Coaching.AtRiskThresholdDays),
		Sessions:  s.imports,
		TmpRoot:   filepath.Join(core.GetTmpPath(), "imports"),
		Logger:    s.logger.WithPrefix("import"),
		Metrics:   s.metrics,
		Publisher: s.hub,
	})

	return []core.Bundle{
		systembundle.NewSystemBundle(base, systembundle.ControllerOptions{
			ORM:          s.ormDB,
			Hub:          s.hub,
			Tickets:      livefeed.NewTickets(),
			SessionDays:  s.cfg.Server.SessionDays,
			CookieSecure: s.cfg.Server.CookieSecure,
		}),
		clientbundle.NewClientBundle(base, clientbundle.ControllerOptions{
			ORM:            s.ormDB,
			Messages:       textgen.NewMessageWriter(s.gen, s.cfg.TextGeneration.MessageMaxTokens),
			Mailer:         core.NewSMTPMailer(s.cfg.MailServer),
			Publisher:      s.hub,
			ThresholdDays:  s.cfg.Coaching.AtRiskThresholdDays,
			UploadPath:     core.GetUploadFilepath(),
			MaxUploadBytes: maxUpload,
		}),
		importbundle.NewImportBundle(base, importService, maxUpload),
	}, nil
}

func startServer(ctx context.Context, cfg core.Configuration, logger *log.Logger) error {
	ormDB, err := core.OpenDatabase(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer ormDB.Close()
	if cfg.Database.DoAutoMigrate {
		if err := systembundle.Migrate(ormDB); err != nil {
			return err
		}
	}

	sessions := core.NewSessionCache()
	restored, err := systembundle.RestoreSessions(ormDB, sessions, time.Now())
	if err != nil {
		return err
	}
	logger.Info("sessions restored", "count", restored)

	metrics := core.NewMetrics()
	s := &services{
		cfg:      cfg,
		logger:   logger,
		ormDB:    ormDB,
		sessions: sessions,
		metrics:  metrics,
		hub:      livefeed.NewHub(logger.WithPrefix("livefeed")),
		imports: importbundle.NewSessionStore(
			time.Duration(cfg.Import.SessionTTLMinutes)*time.Minute, logger.WithPrefix("import"), metrics.OpenImports),
		gen: textGenerator(cfg, logger.WithPrefix("textgen"), metrics),
	}
	if cfg.TextGeneration.APIKey == "" {
		logger.Warn("no text generation API key, column mapping falls back to rules and re-engagement drafts are disabled")
	}

	router, err := newRouter(s)
	if err != nil {
		return err
	}

	go s.hub.Run(ctx)
	go s.imports.Run(ctx, time.Duration(cfg.Import.SweepIntervalSeconds)*time.Second)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.InternalPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "ssl", cfg.Server.WithSSL)
		if cfg.Server.WithSSL {
			errc <- srv.ListenAndServeTLS(cfg.Server.SSLCertFile, cfg.Server.SSLKeyFile)
		} else {
			errc <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(s *services) (*mux.Router, error) {
	bundles, err := initBundles(s)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	if s.cfg.Server.Hostname != "" {
		r = r.Host(s.cfg.Server.Hostname).Subrouter()
	}
	api := r.PathPrefix("/api/v1").Subrouter()
	for _, b := range bundles {
		for _, route := range b.GetRoutes() {
			api.Handle(route.Path, middleWare(s, route)).Methods(route.Method)
		}
	}
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	if s.cfg.Server.DeliverFrontEnd {
		deliverFrontEnd(s.cfg.Server.FrontEndPath, r, s.logger)
	}
	return r, nil
}

// statusWriter remembers the response code and keeps websocket upgrades
// working by passing Hijack through.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func middleWare(s *services, route core.Route) http.Handler {
	base := core.Controller{Sessions: s.sessions, Logger: s.logger}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metrics.HTTPRequests.WithLabelValues(r.Method).Inc()

		var coachId uint
		if ok, coach := base.TryGetCoach(r); ok {
			coachId = coach.ID
		} else if !route.Public && r.Method != http.MethodOptions {
			base.HandleUnauthorizedError(errors.New("Session invalid"), w)
			s.logger.Debug("unauthorized", "method", r.Method, "path", r.URL.Path)
			return
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		route.Handler.ServeHTTP(sw, r)

		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"coach", coachId,
			"status", sw.status,
			"duration", time.Since(start))
	})
}

func deliverFrontEnd(frontendOSPath string, r *mux.Router, logger *log.Logger) {
	if frontendOSPath == "" {
		frontendOSPath = "./"
	}
	root, err := filepath.Abs(frontendOSPath)
	if err != nil {
		root = frontendOSPath
	}
	r.PathPrefix("/").Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if !strings.HasPrefix(path, root) {
			http.NotFound(w, r)
			return
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			// single page app: unknown paths get the index
			logger.Debug("serving index", "path", r.URL.Path)
			http.ServeFile(w, r, filepath.Join(root, "index.html"))
			return
		}
		http.ServeFile(w, r, path)
	})).Methods(http.MethodGet)
}
