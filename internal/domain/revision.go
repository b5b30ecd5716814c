package domain

import (
	"fmt"
	"strings"
)

// Revision — версия HTTP-схемы, которую отдаёт бэкенд.
type Revision string

const (
	RevisionV1 Revision = "v1"
	RevisionV2 Revision = "v2"
	RevisionV3 Revision = "v3" // /agents/details + AgentDetails
)

// ParseRevision принимает "v3", "V3" и "3".
func ParseRevision(s string) (Revision, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s != "" && !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	switch Revision(s) {
	case RevisionV1, RevisionV2, RevisionV3:
		return Revision(s), nil
	default:
		return "", fmt.Errorf("unknown api revision %q", s)
	}
}

// UsesDetails — true для ревизий со схемой AgentDetails.
func (r Revision) UsesDetails() bool {
	return r == RevisionV3
}
