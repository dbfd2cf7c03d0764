package http

import (
	"context"
	"net/http"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/config"
	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/infra/cooldown"
	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/infra/db"
	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/infra/oracle"
	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/infra/policyopa"
	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	admin     *usecase.AdminService
	batches   *usecase.BatchService
	submit    *usecase.SubmitAgreement
	request   *usecase.RequestDecryption
	finalize  *usecase.FinalizeDecryption
	cooldowns domain.CooldownGate
	stores    usecase.Stores

	initErr error
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r}
	s.initDeps()
	s.routes()
	return s
}

type ServerDeps struct {
	Admin     *usecase.AdminService
	Batches   *usecase.BatchService
	Submit    *usecase.SubmitAgreement
	Request   *usecase.RequestDecryption
	Finalize  *usecase.FinalizeDecryption
	Cooldowns domain.CooldownGate
	Stores    usecase.Stores
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:       cfg,
		r:         r,
		admin:     deps.Admin,
		batches:   deps.Batches,
		submit:    deps.Submit,
		request:   deps.Request,
		finalize:  deps.Finalize,
		cooldowns: deps.Cooldowns,
		stores:    deps.Stores,
	}
	s.routes()
	return s
}

func (s *Server) initDeps() {
	if s.store == nil {
		return
	}
	stores := s.store.Stores()

	var policy domain.AccessPolicy
	var err error
	if s.cfg.PolicyBundlePath != "" {
		policy, err = policyopa.NewEngineFromBundlePath(context.Background(), s.cfg.PolicyBundlePath)
	} else {
		policy, err = policyopa.NewEngine(context.Background())
	}
	if err != nil {
		s.initErr = err
		return
	}

	var gate domain.CooldownGate
	if s.cfg.RedisAddr != "" {
		gate, err = cooldown.NewRedisGate(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil)
		if err != nil {
			s.initErr = err
			return
		}
	} else {
		gate = cooldown.NewMemoryGate(cooldown.MemoryGateConfig{})
	}

	gateway, err := oracle.NewGateway(
		s.cfg.OracleURL,
		s.cfg.OracleCallbackURL,
		time.Duration(s.cfg.OracleTimeoutSeconds)*time.Second,
		nil,
	)
	if err != nil {
		s.initErr = err
		return
	}
	verifier, err := oracle.NewVerifier(s.cfg.OraclePublicKeyBase64)
	if err != nil {
		s.initErr = err
		return
	}

	s.stores = stores
	s.cooldowns = gate
	s.admin = &usecase.AdminService{Stores: stores, Tx: s.store, Policy: policy}
	s.batches = &usecase.BatchService{Stores: stores, Tx: s.store, Policy: policy}
	s.submit = &usecase.SubmitAgreement{Stores: stores, Tx: s.store, Policy: policy, Cooldowns: gate}
	s.request = &usecase.RequestDecryption{Stores: stores, Tx: s.store, Policy: policy, Cooldowns: gate, Oracle: gateway}
	s.finalize = &usecase.FinalizeDecryption{Stores: stores, Tx: s.store, Verifier: verifier}
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		mode := "no-db"
		if s.store != nil && s.store.DB != nil {
			mode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	})

	v1 := s.r.Group("/v1")
	{
		v1.GET("/config", s.handleGetConfig)
		v1.GET("/providers/:address", s.handleGetProvider)
		v1.GET("/batches/current", s.handleGetCurrentBatch)
		v1.GET("/batches/:batch_id", s.handleGetBatch)
		v1.GET("/batches/:batch_id/agreement", s.handleGetAgreement)
		v1.GET("/decryptions/:request_id", s.handleGetDecryption)
		v1.GET("/cooldowns/:address", s.handleGetCooldowns)
		v1.GET("/events", s.handleListEvents)

		v1.POST("/owner", s.handleTransferOwnership)
		v1.POST("/providers", s.handleAddProvider)
		v1.DELETE("/providers/:address", s.handleRemoveProvider)
		v1.POST("/pause", s.handlePause)
		v1.POST("/unpause", s.handleUnpause)
		v1.PUT("/config/cooldown", s.handleSetCooldown)
		v1.POST("/batches", s.handleOpenBatch)
		v1.POST("/batches/:batch_id/close", s.handleCloseBatch)
		v1.POST("/agreements", s.handleSubmitAgreement)
		v1.POST("/decryptions", s.handleRequestDecryption)
		v1.POST("/decryptions/:request_id/callback", s.handleDecryptionCallback)
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
}

func (s *Server) Run() error {
	if s.initErr != nil {
		return s.initErr
	}
	return s.r.Run(s.cfg.HTTPAddr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.r
}
