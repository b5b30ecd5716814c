package connectors

import (
	"context"
	"fmt"
	"time"

	"github.com/xela07ax/relevance-backend/internal/domain"
)

// StaticConnector — клиент-заглушка с фиксированным набором агентов.
// Используется в тестах вместо похода в Relevance.
type StaticConnector struct {
	Agents []*domain.AgentRecord

	// Ошибки, которые вернут ListAgents / RetrieveAgent вместо данных
	ListErr     error
	RetrieveErr error

	// Latency имитирует задержку сети; отменяется контекстом
	Latency time.Duration
}

func (c *StaticConnector) ListAgents(ctx context.Context) ([]*domain.AgentRecord, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	out := make([]*domain.AgentRecord, len(c.Agents))
	copy(out, c.Agents)
	return out, nil
}

func (c *StaticConnector) RetrieveAgent(ctx context.Context, agentID string) (*domain.AgentRecord, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if c.RetrieveErr != nil {
		return nil, c.RetrieveErr
	}
	for _, a := range c.Agents {
		if a.AgentID == agentID {
			return a, nil
		}
	}
	return nil, fmt.Errorf("agent %s does not exist", agentID)
}

func (c *StaticConnector) wait(ctx context.Context) error {
	if c.Latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(c.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
