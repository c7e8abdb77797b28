package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"evidencechain/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var decoder = form.NewDecoder()

type Ingester interface {
	Ingest(ctx context.Context, req *types.IngestRequest) (*types.IngestResult, error)
}

type Verifier interface {
	Verify(ctx context.Context, evidenceID string) (*types.VerificationResult, error)
}

type ChainAuditor interface {
	Audit(ctx context.Context, caseID string, rehash bool) (*types.ChainReport, error)
}

// Ledger is the read side of the record store used by the query endpoints.
type Ledger interface {
	Evidence(ctx context.Context, evidenceID string) (*types.Evidence, error)
	Tip(ctx context.Context, caseID string) (*types.Evidence, error)
	EvidenceByCase(ctx context.Context, caseID string, limit uint64) ([]*types.Evidence, error)
	AuditEntries(ctx context.Context, evidenceID string) ([]*types.AuditLogEntry, error)
	Ping(ctx context.Context) error
}

// KeySetProvider returns the keys bearer tokens are verified against.
type KeySetProvider func(ctx context.Context) (jwk.Set, error)

type Service struct {
	logger *logrus.Logger
	config *types.Config

	ledger   Ledger
	ingester Ingester
	verifier Verifier
	auditor  ChainAuditor

	keys    KeySetProvider
	limiter *rate.Limiter

	server *http.Server
}

// New builds the API server. A nil keys disables bearer authentication.
func New(
	config *types.Config,
	logger *logrus.Logger,
	ledger Ledger,
	ingester Ingester,
	verifier Verifier,
	auditor ChainAuditor,
	keys KeySetProvider,
) *Service {
	mux := flow.New()

	s := &Service{
		logger:   logger,
		config:   config,
		ledger:   ledger,
		ingester: ingester,
		verifier: verifier,
		auditor:  auditor,
		keys:     keys,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	if config.RateLimitRPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(config.RateLimitRPS), config.RateLimitBurst)
	}

	s.buildRouter(mux)

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RateLimit)
		r.Use(s.RequireAuth)
		r.Use(s.RequestTimeout)

		r.HandleFunc("/evidence/upload", s.handleUploadEvidence, http.MethodPost)
		r.HandleFunc("/evidence/verify", s.handleVerifyEvidence, http.MethodPost)
		r.HandleFunc("/evidence/:evidenceID", s.handleGetEvidence, http.MethodGet)
		r.HandleFunc("/evidence/:evidenceID/audit", s.handleGetEvidenceAudit, http.MethodGet)

		r.HandleFunc("/cases/:caseID/evidence", s.handleListCaseEvidence, http.MethodGet)
		r.HandleFunc("/cases/:caseID/tip", s.handleGetCaseTip, http.MethodGet)
		r.HandleFunc("/cases/:caseID/chain", s.handleAuditCaseChain, http.MethodGet)
	})
}
