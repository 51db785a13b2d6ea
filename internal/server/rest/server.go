// Package rest exposes the prontuario services over HTTP/JSON using gin.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/prontuario/internal/logging"
	"github.com/dmitrijs2005/prontuario/internal/server/auth"
	"github.com/dmitrijs2005/prontuario/internal/server/config"
	"github.com/dmitrijs2005/prontuario/internal/server/models"
	"github.com/dmitrijs2005/prontuario/internal/server/observability"
	"github.com/dmitrijs2005/prontuario/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, cpf, password string) (string, error)
}

type PrescriptionService interface {
	Upload(ctx context.Context, callerID int64, in services.PrescriptionInput) (*models.Prescription, error)
	List(ctx context.Context, userID int64) ([]models.Prescription, error)
}

type HistoryService interface {
	Submit(ctx context.Context, callerID int64, in services.HistoryInput) (*models.HistoryEntry, error)
	List(ctx context.Context, userID int64) ([]models.HistoryEntry, error)
}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	Users         UserService
	Prescriptions PrescriptionService
	History       HistoryService
	Tokens        TokenVerifier
	DB            Pinger
}

type Server struct {
	address       string
	logger        logging.Logger
	deps          Deps
	maxUploadSize int64
	corsOrigins   []string
	engine        *gin.Engine
}

func NewServer(c *config.Config, l logging.Logger, d Deps) *Server {
	registerValidators()

	s := &Server{
		address:       c.EndpointAddrHTTP,
		logger:        l.With("module", "http_server"),
		deps:          d,
		maxUploadSize: c.MaxUploadSize,
		corsOrigins:   c.CORSAllowedOrigins,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = s.maxUploadSize

	r.Use(
		s.recovery(),
		s.requestID(),
		s.cors(),
		s.requestLogger(),
		observability.Middleware(),
	)

	r.POST("/cadastro", s.register)
	r.POST("/login", s.login)

	protected := r.Group("/", s.authGate)
	protected.POST("/receitas", s.createPrescription)
	protected.GET("/receitas", s.listPrescriptions)
	protected.POST("/historico", s.createHistory)
	protected.GET("/historico", s.listHistory)

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
