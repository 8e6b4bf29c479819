package controller

import (
	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/catalog"
	"realty_backend/internal/listing"
)

// ListAgents serves one page of the agent directory.
func ListAgents(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	q := listing.AgentQuery{
		Search:   firstQuery(c, "search", "q"),
		Location: firstQuery(c, "location"),
		Page:     page,
		PageSize: opts.AgentPageSize,
	}

	return sendCachedJSON(c, cacheKey(agentsCachePrefix, c, page), func() (interface{}, error) {
		result, err := listing.FilterAgents(catalog.Default.Agents(), q)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return result, nil
	})
}

// GetAgent returns a directory entry together with the agent's listings,
// newest first.
func GetAgent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid agent ID",
		})
	}

	agent, ok := catalog.Default.Agent(uint(id))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Agent not found",
		})
	}

	properties := agentListings(catalog.Default.Properties(), agent.ID)
	return c.JSON(fiber.Map{
		"agent":      agent,
		"properties": properties,
	})
}

func agentListings(records []listing.Record, agentID uint) []listing.Record {
	owned := make([]listing.Record, 0)
	for _, r := range records {
		if r.AgentID == agentID {
			owned = append(owned, r)
		}
	}
	listing.Sort(owned, listing.SortNewest)
	return owned
}
