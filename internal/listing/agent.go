package listing

import (
	"fmt"
	"slices"
	"strings"
)

// Agent is one entry of the agent directory.
type Agent struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Avatar     string `json:"avatar"`
	Experience int    `json:"experience"`
	Listings   int    `json:"listings"`
}

type AgentQuery struct {
	Search   string
	Location string
	Page     int
	PageSize int
}

type AgentResult struct {
	Agents     []Agent `json:"agents"`
	TotalCount int     `json:"total_count"`
	TotalPages int     `json:"total_pages"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
}

// FilterAgents searches the directory by name and location (both
// case-insensitive substrings), orders agents by listing count then name,
// and returns the requested page.
func FilterAgents(agents []Agent, q AgentQuery) (AgentResult, error) {
	if q.PageSize <= 0 {
		return AgentResult{}, fmt.Errorf("%w: page size %d", ErrInvalidArgument, q.PageSize)
	}
	if q.Page < 1 {
		return AgentResult{}, fmt.Errorf("%w: page %d", ErrInvalidArgument, q.Page)
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	location := strings.ToLower(strings.TrimSpace(q.Location))

	matched := make([]Agent, 0, len(agents))
	for _, a := range agents {
		if search != "" && !strings.Contains(strings.ToLower(a.Name), search) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(a.Location), location) {
			continue
		}
		matched = append(matched, a)
	}

	slices.SortStableFunc(matched, func(a, b Agent) int {
		if a.Listings != b.Listings {
			return b.Listings - a.Listings
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	page, totalPages := Paginate(matched, q.Page, q.PageSize)
	return AgentResult{
		Agents:     page,
		TotalCount: len(matched),
		TotalPages: totalPages,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}, nil
}
