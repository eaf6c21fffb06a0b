package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	//nolint:gosec // only exposed if pprofAddr config is set
	_ "net/http/pprof"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Server hosts the optional health check and pprof listeners
type Server struct {
	log    logrus.FieldLogger
	config *Config

	g            errgroup.Group
	pprofServer  *http.Server
	healthServer *http.Server
}

// NewServer creates a new operational server
func NewServer(log logrus.FieldLogger, config *Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Server{
		log:    log.WithField("service", "ops"),
		config: config,
	}, nil
}

// Start starts the configured listeners. It returns immediately; listener
// errors surface from Stop.
func (s *Server) Start(_ context.Context) error {
	if s.config.PProfAddr != nil {
		s.g.Go(func() error {
			if err := s.startPProf(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.WithError(err).Error("pprof server failed")
				return err
			}
			return nil
		})
	}

	if s.config.HealthCheckAddr != nil {
		s.g.Go(func() error {
			if err := s.startHealthCheck(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.WithError(err).Error("healthcheck server failed")
				return err
			}
			return nil
		})
	}

	return nil
}

// Stop shuts down the listeners within the configured timeout
func (s *Server) Stop() error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.pprofServer != nil {
		if err := s.pprofServer.Shutdown(ctx); err != nil {
			s.log.WithError(err).Error("failed to shutdown pprof server")
		}
	}

	if s.healthServer != nil {
		if err := s.healthServer.Shutdown(ctx); err != nil {
			s.log.WithError(err).Error("failed to shutdown healthcheck server")
		}
	}

	return s.g.Wait()
}

func (s *Server) startPProf() error {
	s.log.WithField("addr", *s.config.PProfAddr).Info("Starting pprof server")

	s.pprofServer = &http.Server{
		Addr:              *s.config.PProfAddr,
		ReadHeaderTimeout: 120 * time.Second,
	}

	return s.pprofServer.ListenAndServe()
}

func (s *Server) startHealthCheck() error {
	s.log.WithField("addr", *s.config.HealthCheckAddr).Info("Starting healthcheck server")

	s.healthServer = &http.Server{
		Addr:              *s.config.HealthCheckAddr,
		ReadHeaderTimeout: 120 * time.Second,
	}

	s.healthServer.Handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return s.healthServer.ListenAndServe()
}
