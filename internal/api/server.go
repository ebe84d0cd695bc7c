package api

import (
	"net/http"

	"github.com/OmniNode-ai/omniroute/internal/api/middleware"
	"github.com/OmniNode-ai/omniroute/internal/audit"
	"github.com/OmniNode-ai/omniroute/internal/config"
	"github.com/OmniNode-ai/omniroute/internal/core"
	"github.com/OmniNode-ai/omniroute/internal/metrics"
	"github.com/OmniNode-ai/omniroute/internal/policy"
	"github.com/OmniNode-ai/omniroute/internal/service"
	"github.com/OmniNode-ai/omniroute/internal/tasks"
)

type Server struct {
	config        *config.Config
	policyManager *policy.Manager
	taskManager   *tasks.Manager
	domains       *core.DomainSet
	auditor       core.Auditor
	routeStore    core.RouteStore
	metrics       *metrics.Metrics
	resolution    *service.ResolutionService
}

func NewServer(
	cfg *config.Config,
	policyManager *policy.Manager,
	taskManager *tasks.Manager,
	domains *core.DomainSet,
	auditor core.Auditor,
	routeStore core.RouteStore,
	m *metrics.Metrics,
	resolution *service.ResolutionService,
) *Server {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}

	return &Server{
		config:        cfg,
		policyManager: policyManager,
		taskManager:   taskManager,
		domains:       domains,
		auditor:       auditor,
		routeStore:    routeStore,
		metrics:       m,
		resolution:    resolution,
	}
}

func (s *Server) Routes(adminAuth middleware.Authenticator) http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+InfoRoute, s.handleInfo)
	mux.HandleFunc("GET "+DomainsRoute, s.handleDomains)
	if s.metrics != nil {
		mux.Handle("GET "+MetricsRoute, s.metrics.Handler())
	}

	// resolution routes
	mux.HandleFunc("POST "+ResolveRoute, s.handleResolve)
	mux.HandleFunc("POST "+ExplainRoute, s.handleExplain)

	// bundle sync webhook
	mux.HandleFunc("POST "+WebhookRoute, s.handleGitHubWebhook)

	// admin routes
	guard := middleware.AdminAuth(adminAuth)
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET "+ListAuditsRoute, s.handleAdminAudit)
	adminMux.HandleFunc("GET "+ListRoutesRoute, s.handleAdminRoutes)
	mux.Handle(AdminParent, guard(adminMux))

	taskMux := http.NewServeMux()
	taskMux.HandleFunc("GET "+ListTasksRoute, s.handleListTasks)
	taskMux.HandleFunc("POST "+TriggerTaskRoute, s.handleTriggerTask)
	taskMux.HandleFunc("GET "+LogsForTaskRoute, s.handleLogsForTask)
	mux.Handle(TaskParent, guard(taskMux))

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
