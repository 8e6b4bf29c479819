package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"realty_backend/pkg/email"
)

// AgentDigest is one agent's enquiry activity over a period.
type AgentDigest struct {
	AgentID     uint
	AgentEmail  string
	AgentName   string
	Total       int64
	Unanswered  int64
	Listings    int64
	TopProperty string
}

// InitEnquiryDigestCron mails every agent with enquiries in the past week a
// summary on the given schedule (default Sundays 20:00).
func InitEnquiryDigestCron(spec string, db *gorm.DB, mailer *email.Service) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		sendEnquiryDigests(db, mailer, time.Now().AddDate(0, 0, -7))
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}

func sendEnquiryDigests(db *gorm.DB, mailer *email.Service, since time.Time) {
	digests, err := CollectDigests(db, since)
	if err != nil {
		log.Printf("Error fetching enquiry digests: %v", err)
		return
	}

	for _, d := range digests {
		err := mailer.SendEnquiryDigest(context.Background(), d.AgentEmail, email.EnquiryDigestData{
			AgentName:   d.AgentName,
			Since:       since,
			Total:       d.Total,
			Unanswered:  d.Unanswered,
			Listings:    d.Listings,
			TopProperty: d.TopProperty,
		})
		if err != nil {
			log.Printf("Error sending enquiry digest to %s: %v", d.AgentEmail, err)
		}
	}
	log.Printf("Enquiry digests sent to %d agents", len(digests))
}

// CollectDigests aggregates enquiries created since the given time per
// listing agent. Agents without enquiries are left out.
func CollectDigests(db *gorm.DB, since time.Time) ([]AgentDigest, error) {
	var digests []AgentDigest
	err := db.Raw(`
        SELECT
            u.id AS agent_id,
            u.email AS agent_email,
            u.name AS agent_name,
            COUNT(e.id) AS total,
            COUNT(e.id) FILTER (WHERE e.status = 'new') AS unanswered,
            COUNT(DISTINCT p.id) AS listings,
            (
                SELECT p2.title
                FROM properties p2
                JOIN enquiries e2 ON e2.property_id = p2.id
                WHERE p2.agent_id = u.id AND e2.created_at >= ? AND e2.deleted_at IS NULL
                GROUP BY p2.id, p2.title
                ORDER BY COUNT(e2.id) DESC, p2.id ASC
                LIMIT 1
            ) AS top_property
        FROM users u
        JOIN properties p ON p.agent_id = u.id AND p.deleted_at IS NULL
        JOIN enquiries e ON e.property_id = p.id AND e.created_at >= ? AND e.deleted_at IS NULL
        WHERE u.deleted_at IS NULL
        GROUP BY u.id, u.email, u.name
        ORDER BY u.id
    `, since, since).Scan(&digests).Error
	return digests, err
}
