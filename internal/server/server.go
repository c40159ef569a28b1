// Package server implements a sandbox of the e-invoicing API. It speaks the
// same wire protocol as the production service so the client and CLI can be
// exercised without real credentials.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rezonia/einvoice-client/internal/model"
)

// Config holds sandbox configuration
type Config struct {
	Address      string
	Token        string
	Tenant       uuid.UUID
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
	Logger       zerolog.Logger
}

// Server represents the sandbox HTTP server
type Server struct {
	config   *Config
	router   *gin.Engine
	store    *Store
	commands map[string]commandHandler
	logger   zerolog.Logger
}

// commandHandler runs one API command against decoded parameters.
type commandHandler func(c *gin.Context, p params) (any, *model.APIError)

// NewServer creates a new sandbox server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config: config,
		router: router,
		store:  NewStore(),
		logger: config.Logger.With().Str("component", "sandbox").Logger(),
	}
	s.commands = map[string]commandHandler{
		"hola":          s.handlePing,
		"emitir":        s.handleEmit,
		"baja":          s.handleCancel,
		"correo":        s.handleMail,
		"consultar_ruc": s.handleLookupTaxID,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1/:tenant")
	v1.Use(s.authorize(), s.requireJSON())
	{
		v1.POST("/:command", s.handleCommand)
	}
}

// Run starts the HTTP server and shuts it down when ctx is done
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store returns the sandbox voucher store
func (s *Server) Store() *Store {
	return s.store
}

// BaseURL returns the client base URL for a sandbox reachable at root.
func (s *Server) BaseURL(root string) string {
	return root + "/api/v1/" + s.config.Tenant.String()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// authorize rejects requests for another tenant or with a wrong token.
func (s *Server) authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("tenant") != s.config.Tenant.String() {
			s.abort(c, model.NewAuthorizationError("La ruta no corresponde a ninguna cuenta"))
			return
		}
		if c.GetHeader("Authorization") != "Bearer "+s.config.Token {
			s.abort(c, model.NewAuthorizationError("El token de acceso no es válido"))
			return
		}
		c.Next()
	}
}

func (s *Server) requireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.ContentType() != gin.MIMEJSON {
			s.abort(c, model.NewNegotiationError("Solo se acepta application/json"))
			return
		}
		c.Next()
	}
}

func (s *Server) handleCommand(c *gin.Context) {
	command := c.Param("command")
	handler, ok := s.commands[command]
	if !ok {
		s.abort(c, model.NewParameterError("Comando no reconocido", command))
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		s.abort(c, model.NewParameterError("No se pudo leer el cuerpo de la solicitud", err.Error()))
		return
	}

	p, err := decodeParams(body)
	if err != nil {
		s.abort(c, model.NewParameterError("El cuerpo debe ser un objeto JSON", err.Error()))
		return
	}

	resp, apiErr := handler(c, p)
	if apiErr != nil {
		s.abort(c, apiErr)
		return
	}

	s.logger.Debug().Str("command", command).Msg("command accepted")
	c.JSON(http.StatusOK, resp)
}

func (s *Server) abort(c *gin.Context, apiErr *model.APIError) {
	s.logger.Debug().
		Str("path", c.Request.URL.Path).
		Int("status", apiErr.Status).
		Str("error", apiErr.Error()).
		Msg("request rejected")
	c.AbortWithStatusJSON(apiErr.Status, apiErr.Body())
}
