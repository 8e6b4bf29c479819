package controller

import (
	"context"
	"log"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/catalog"
	"realty_backend/internal/listing"
	"realty_backend/pkg/cache"
	"realty_backend/pkg/database"
	"realty_backend/pkg/email"
	"realty_backend/pkg/utils/jwt"
	"realty_backend/pkg/utils/storage"
)

const (
	propertiesCachePrefix = "properties"
	agentsCachePrefix     = "agents"
)

// Options carries the collaborators the handlers need besides the database.
type Options struct {
	Cache         *cache.Cache
	Uploader      storage.Uploader
	Mailer        *email.Service
	PageSize      int
	AgentPageSize int
}

var opts = Options{
	PageSize:      listing.DefaultPageSize,
	AgentPageSize: listing.DefaultAgentPageSize,
}

// Init configures the handlers. Zero page sizes keep the defaults.
func Init(o Options) {
	if o.PageSize <= 0 {
		o.PageSize = listing.DefaultPageSize
	}
	if o.AgentPageSize <= 0 {
		o.AgentPageSize = listing.DefaultAgentPageSize
	}
	opts = o
}

var (
	refreshMu sync.Mutex
	// catalogGen counts completed snapshot loads. A response built across a
	// change of generation is not cached.
	catalogGen atomic.Uint64

	loadCatalog = func() error {
		return catalog.Default.Load(database.GetDB())
	}
)

// RefreshCatalog reloads the listing snapshot from the database and drops
// every cached listing or directory response. Refreshes never overlap.
func RefreshCatalog(ctx context.Context) error {
	refreshMu.Lock()
	defer refreshMu.Unlock()

	if err := loadCatalog(); err != nil {
		return err
	}
	catalogGen.Add(1)
	if err := opts.Cache.Invalidate(ctx, propertiesCachePrefix); err != nil {
		log.Printf("Could not invalidate property cache: %v", err)
	}
	if err := opts.Cache.Invalidate(ctx, agentsCachePrefix); err != nil {
		log.Printf("Could not invalidate agent cache: %v", err)
	}
	return nil
}

// afterWrite refreshes the snapshot in the background so the write request
// does not wait for it.
func afterWrite() {
	go func() {
		if err := RefreshCatalog(context.Background()); err != nil {
			log.Printf("Catalog refresh after write failed: %v", err)
		}
	}()
}

func currentClaims(c *fiber.Ctx) *jwt.Claims {
	claims, _ := c.Locals("user").(*jwt.Claims)
	return claims
}

// cacheKey keys a response by its query string. The page is folded in after
// clamping so "page=0" and "page=1" share an entry.
func cacheKey(prefix string, c *fiber.Ctx, page int) string {
	values := rawQuery(c)
	values.Set("page", strconv.Itoa(page))
	return cache.Key(prefix, values)
}

func rawQuery(c *fiber.Ctx) url.Values {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return url.Values{}
	}
	return values
}

// sendCachedJSON serves a cached body when present. On a miss it builds the
// response with build, stores it and sends it.
func sendCachedJSON(c *fiber.Ctx, key string, build func() (interface{}, error)) error {
	ctx := c.UserContext()
	if data, hit := opts.Cache.Get(ctx, key); hit {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		c.Set("X-Cache", "HIT")
		return c.Send(data)
	}

	gen := catalogGen.Load()
	payload, err := build()
	if err != nil {
		return err
	}
	data, err := c.App().Config().JSONEncoder(payload)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to encode response",
		})
	}
	if catalogGen.Load() == gen {
		opts.Cache.Set(ctx, key, data)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set("X-Cache", "MISS")
	return c.Send(data)
}
