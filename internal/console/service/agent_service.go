package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/relevance-backend/internal/domain"
	"github.com/xela07ax/relevance-backend/internal/infra"
)

// AgentProvider описывает требования к клиенту Relevance AI
type AgentProvider interface {
	ListAgents(ctx context.Context) ([]*domain.AgentRecord, error)
	RetrieveAgent(ctx context.Context, agentID string) (*domain.AgentRecord, error)
}

type AgentService struct {
	provider AgentProvider
	metrics  *infra.Metrics
	logger   *zap.Logger
}

func NewAgentService(provider AgentProvider, metrics *infra.Metrics, logger *zap.Logger) *AgentService {
	if metrics == nil {
		metrics = infra.NewMetrics(nil)
	}
	return &AgentService{
		provider: provider,
		metrics:  metrics,
		logger:   logger.Named("agent-service"),
	}
}

// ListAgents — список в схеме v1/v2.
// Ошибки клиента возвращаются как есть: их текст уходит в ответ без изменений.
func (s *AgentService) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	records, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	// фронтенд получит пустой массив [], а не null
	agents := make([]domain.Agent, 0, len(records))
	for _, rec := range records {
		agents = append(agents, ToAgent(rec))
	}
	return agents, nil
}

// GetAgent — один агент в схеме v1/v2.
func (s *AgentService) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	rec, err := s.retrieve(ctx, agentID)
	if err != nil {
		return nil, err
	}
	agent := ToAgent(rec)
	return &agent, nil
}

// ListAgentDetails — список в схеме v3.
func (s *AgentService) ListAgentDetails(ctx context.Context) ([]domain.AgentDetails, error) {
	records, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	details := make([]domain.AgentDetails, 0, len(records))
	for _, rec := range records {
		details = append(details, ToAgentDetails(rec))
	}
	return details, nil
}

// GetAgentDetails — один агент в схеме v3.
func (s *AgentService) GetAgentDetails(ctx context.Context, agentID string) (*domain.AgentDetails, error) {
	rec, err := s.retrieve(ctx, agentID)
	if err != nil {
		return nil, err
	}
	d := ToAgentDetails(rec)
	return &d, nil
}

func (s *AgentService) list(ctx context.Context) ([]*domain.AgentRecord, error) {
	start := time.Now()
	records, err := s.provider.ListAgents(ctx)
	s.observe("list_agents", start, err)
	if err != nil {
		s.logger.Error("failed to list agents from relevance", zap.Error(err))
		return nil, err
	}

	s.logger.Debug("agents listed successfully", zap.Int("count", len(records)))
	return records, nil
}

func (s *AgentService) retrieve(ctx context.Context, agentID string) (*domain.AgentRecord, error) {
	start := time.Now()
	rec, err := s.provider.RetrieveAgent(ctx, agentID)
	s.observe("retrieve_agent", start, err)
	if err != nil {
		s.logger.Warn("failed to fetch agent details", zap.String("agent_id", agentID), zap.Error(err))
		return nil, err
	}
	return rec, nil
}

func (s *AgentService) observe(op string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.UpstreamCalls.WithLabelValues(op, outcome).Inc()
	s.metrics.UpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
