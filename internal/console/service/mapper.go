package service

import "github.com/xela07ax/relevance-backend/internal/domain"

// ToAgent переводит запись клиента в схему v1/v2.
func ToAgent(rec *domain.AgentRecord) domain.Agent {
	return domain.Agent{
		AgentID:     rec.ID(),
		Name:        rec.DisplayName(),
		Description: rec.OptionalDescription(),
	}
}

// ToAgentDetails переводит запись клиента в схему v3.
// Всё, кроме id и name, — заглушки: Relevance эти поля не отдаёт.
// TODO(v3): заполнять status/lastActive/tasksCompleted/successRate/currentTask,
// когда появится источник данных о запусках агента.
func ToAgentDetails(rec *domain.AgentRecord) domain.AgentDetails {
	return domain.AgentDetails{
		ID:             rec.ID(),
		Name:           rec.MetadataName(),
		Status:         domain.StatusActive,
		LastActive:     "",
		TasksCompleted: 0,
		SuccessRate:    0,
		CurrentTask:    "",
	}
}
