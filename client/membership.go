package client

import (
	"encoding/json"
	"strings"
)

// Member is one row of a project's member list. Different backend shapes
// spell the keys inconsistently (userId vs user_id); normalization happens
// here, at the boundary, so the rest of the package sees one typed record.
type Member struct {
	ProjectID string
	UserID    string
	UserEmail string
	UserName  string
	Role      string
}

func (m *Member) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProjectID      string `json:"projectId"`
		ProjectIDSnake string `json:"project_id"`
		UserID         string `json:"userId"`
		UserIDSnake    string `json:"user_id"`
		UserEmail      string `json:"userEmail"`
		UserName       string `json:"userName"`
		Role           string `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.ProjectID = firstNonEmpty(raw.ProjectID, raw.ProjectIDSnake)
	m.UserID = firstNonEmpty(raw.UserID, raw.UserIDSnake)
	m.UserEmail = raw.UserEmail
	m.UserName = raw.UserName
	m.Role = strings.ToUpper(strings.TrimSpace(raw.Role))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// DeriveRoles computes the current user's permission flags from a member
// list: isAdmin when their membership carries the ADMIN role, isMember when
// it carries ADMIN or MEMBER. IDs are compared case-insensitively with
// surrounding whitespace ignored. A missing user id, an empty list, or no
// matching row yields (false, false); malformed input never panics.
func DeriveRoles(members []Member, currentUserID string) (isAdmin, isMember bool) {
	id := strings.TrimSpace(currentUserID)
	if id == "" || len(members) == 0 {
		return false, false
	}

	for _, m := range members {
		if !strings.EqualFold(strings.TrimSpace(m.UserID), id) {
			continue
		}
		switch m.Role {
		case "ADMIN":
			return true, true
		case "MEMBER":
			return false, true
		default:
			return false, false
		}
	}
	return false, false
}
