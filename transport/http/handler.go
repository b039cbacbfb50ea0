package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/matryer/way"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/foodbridge/foodbridge/service"
)

type Config struct {
	Service *service.Service
	Logger  *slog.Logger
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer         prometheus.Gatherer
	SendRateLimit    rate.Limit
	SendBurst        int
	ReadReceiptDelay time.Duration
}

type handler struct {
	svc              *service.Service
	logger           *slog.Logger
	sendLimiter      *userLimiter
	readReceiptDelay time.Duration
}

// New makes use of the service to provide an http.Handler with predefined routing.
func New(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &handler{
		svc:              cfg.Service,
		logger:           logger,
		sendLimiter:      newUserLimiter(cfg.SendRateLimit, cfg.SendBurst),
		readReceiptDelay: cfg.ReadReceiptDelay,
	}

	r := way.NewRouter()
	r.HandleFunc("POST", "/api/register", h.register)
	r.HandleFunc("POST", "/api/login", h.login)
	r.HandleFunc("GET", "/api/auth_user", h.authUser)
	r.HandleFunc("PATCH", "/api/auth_user", h.updateProfile)

	r.HandleFunc("POST", "/api/conversations", h.createOrGetConversation)
	r.HandleFunc("GET", "/api/conversations", h.conversations)
	r.HandleFunc("GET", "/api/conversations/:conversation_id", h.conversation)
	r.HandleFunc("GET", "/api/conversations/:conversation_id/messages", h.messages)
	r.HandleFunc("POST", "/api/conversations/:conversation_id/messages", h.sendMessage)
	r.HandleFunc("POST", "/api/conversations/:conversation_id/read", h.markMessagesAsRead)
	r.HandleFunc("GET", "/api/unread_count", h.totalUnreadCount)

	r.HandleFunc("POST", "/api/ngos", h.createNGO)
	r.HandleFunc("GET", "/api/ngos", h.verifiedNGOs)
	r.HandleFunc("GET", "/api/ngos/matches", h.matchNGOs)
	r.HandleFunc("GET", "/api/ngos/:ngo_id", h.ngo)
	r.HandleFunc("POST", "/api/bulk_requests", h.submitBulkRequest)
	r.HandleFunc("GET", "/api/bulk_requests", h.bulkRequests)
	r.HandleFunc("GET", "/api/bulk_requests/:request_id", h.bulkRequest)
	r.HandleFunc("PATCH", "/api/bulk_requests/:request_id/status", h.updateBulkRequestStatus)
	r.HandleFunc("POST", "/api/bulk_requests/:request_id/responses", h.respondToBulkRequest)
	r.HandleFunc("GET", "/api/bulk_requests/:request_id/responses", h.bulkResponses)
	r.HandleFunc("PATCH", "/api/bulk_responses/:response_id/status", h.updateBulkResponseStatus)

	r.HandleFunc("GET", "/api/users/:user_id/achievements", h.achievements)

	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.respondErr(w, errNotFound)
	})

	if cfg.Gatherer != nil {
		r.Handle("GET", "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	return h.withAuth(r)
}
