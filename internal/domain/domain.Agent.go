package domain

// AgentStatus — статус агента в ответе v3.
type AgentStatus string

const (
	StatusActive AgentStatus = "active" // v3 пока отдаёт только его
)

// AgentMetadata — вложенное описание агента, как его хранит Relevance.
type AgentMetadata struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// AgentRecord — агент в том виде, в каком его вернул клиент Relevance (до маппинга).
type AgentRecord struct {
	AgentID     string
	Name        string
	Description *string
	Metadata    *AgentMetadata
}

// ID — первичный идентификатор агента в Relevance.
func (r *AgentRecord) ID() string {
	return r.AgentID
}

// DisplayName — имя верхнего уровня (v1/v2).
func (r *AgentRecord) DisplayName() string {
	return r.Name
}

// OptionalDescription возвращает nil, если описания нет.
func (r *AgentRecord) OptionalDescription() *string {
	if r.Description == nil {
		return nil
	}
	d := *r.Description
	return &d
}

// MetadataName — имя из вложенных метаданных (v3). Пусто, если метаданных нет.
func (r *AgentRecord) MetadataName() string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata.Name
}

// Agent — схема ответа ревизий v1/v2.
type Agent struct {
	AgentID     string  `json:"agent_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"` // null, а не "", если описания нет
}

// AgentDetails — схема ответа ревизии v3.
type AgentDetails struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Status         AgentStatus `json:"status"`
	LastActive     string      `json:"lastActive"`
	TasksCompleted int         `json:"tasksCompleted"`
	SuccessRate    float64     `json:"successRate"`
	CurrentTask    string      `json:"currentTask"`
}
