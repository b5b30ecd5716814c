package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xela07ax/relevance-backend/internal/domain"
)

const rootMessage = "Relevance AI Backend API"

// AgentService Описываем, что нам нужно от сервиса
type AgentService interface {
	ListAgents(ctx context.Context) ([]domain.Agent, error)
	GetAgent(ctx context.Context, agentID string) (*domain.Agent, error)
	ListAgentDetails(ctx context.Context) ([]domain.AgentDetails, error)
	GetAgentDetails(ctx context.Context, agentID string) (*domain.AgentDetails, error)
}

type AgentHandler struct {
	service AgentService
	logger  *zap.Logger
}

func NewAgentHandler(s AgentService, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{service: s, logger: logger.Named("agent-handler")}
}

// Routes Маршруты для Chi, монтируются в /agents.
// v1/v2: GET / и GET /{agentID}; v3: GET /details и GET /{agentID}.
func (h *AgentHandler) Routes(rev domain.Revision) chi.Router {
	r := chi.NewRouter()
	if rev.UsesDetails() {
		r.Get("/details", h.ListDetails)
		r.Get("/{agentID}", h.GetDetails)
		return r
	}
	r.Get("/", h.List)
	r.Get("/{agentID}", h.Get)
	return r
}

// agentIDParam возвращает декодированный {agentID}: chi отдаёт сырой сегмент, если у запроса есть RawPath.
func agentIDParam(r *http.Request) string {
	raw := chi.URLParam(r, "agentID")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

// Root GET /
func (h *AgentHandler) Root(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, h.logger, http.StatusOK, MessageResponse{Message: rootMessage})
}

// List GET /agents (v1/v2)
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	agents, err := h.service.ListAgents(r.Context())
	if err != nil {
		WriteDetail(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, h.logger, http.StatusOK, agents)
}

// Get GET /agents/{agentID} (v1/v2)
func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	agentID := agentIDParam(r)

	agent, err := h.service.GetAgent(r.Context(), agentID)
	if err != nil {
		// Любая ошибка клиента — 404, причину не различаем
		WriteDetail(w, h.logger, http.StatusNotFound, "Agent not found: "+err.Error())
		return
	}
	WriteJSON(w, h.logger, http.StatusOK, agent)
}

// ListDetails GET /agents/details (v3)
func (h *AgentHandler) ListDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.ListAgentDetails(r.Context())
	if err != nil {
		WriteDetail(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, h.logger, http.StatusOK, details)
}

// GetDetails GET /agents/{agentID} (v3)
func (h *AgentHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	agentID := agentIDParam(r)

	details, err := h.service.GetAgentDetails(r.Context(), agentID)
	if err != nil {
		WriteDetail(w, h.logger, http.StatusNotFound, "Agent not found: "+err.Error())
		return
	}
	WriteJSON(w, h.logger, http.StatusOK, details)
}
