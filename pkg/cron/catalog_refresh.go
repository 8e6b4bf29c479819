package cron

import (
	"log"

	"github.com/robfig/cron/v3"
)

// InitCatalogRefreshCron runs refresh on the given cron spec (for example
// "*/5 * * * *"). The returned scheduler is already started; stop it on
// shutdown.
func InitCatalogRefreshCron(spec string, refresh func() error) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		if err := refresh(); err != nil {
			log.Printf("Catalog refresh failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
