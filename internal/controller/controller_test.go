package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty_backend/internal/catalog"
	"realty_backend/internal/listing"
	"realty_backend/internal/model"
)

func seedCatalog(t *testing.T) {
	t.Helper()
	catalog.Default.Replace([]listing.Record{
		{ID: 1, Title: "Sea View Apartment", Location: "Mumbai", Type: "Apartment", Purpose: "for-sale", Price: "₹1.5 Cr", Beds: 3, AgentID: 10, AgentName: "Priya Sharma"},
		{ID: 2, Title: "Garden Villa", Location: "Bangalore", Type: "Villa", Purpose: "for-sale", Price: "₹85 L", Beds: 4, AgentID: 11, AgentName: "Rahul Mehta"},
		{ID: 3, Title: "Studio Near Metro", Location: "Delhi", Type: "Studio", Purpose: "for-rent", Price: "₹18,000/month", Beds: 1, AgentID: 10, AgentName: "Priya Sharma"},
		{ID: 4, Title: "Penthouse", Location: "Mumbai", Type: "Penthouse", Purpose: "for-sale", Price: "₹4.2 Cr", Beds: 5, AgentID: 12, AgentName: "Anita Rao"},
		{ID: 5, Title: "Family Flat", Location: "Pune", Type: "Flat", Purpose: "for-rent", Price: "₹35,000/month", Beds: 2, AgentID: 11, AgentName: "Rahul Mehta"},
		{ID: 6, Title: "Lake Side House", Location: "Hyderabad", Type: "House", Purpose: "for-sale", Price: "₹2.1 Cr", Beds: 4, AgentID: 12, AgentName: "Anita Rao"},
		{ID: 7, Title: "Compact Flat", Location: "Mumbai", Type: "Flat", Purpose: "for-rent", Price: "₹45,000/month", Beds: 2, AgentID: 10, AgentName: "Priya Sharma"},
	}, []listing.Agent{
		{ID: 10, Name: "Priya Sharma", Location: "Mumbai", Listings: 3},
		{ID: 11, Name: "Rahul Mehta", Location: "Bangalore", Listings: 2},
		{ID: 12, Name: "Anita Rao", Location: "Hyderabad", Listings: 2},
	})
	Init(Options{})
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/api/properties", ListProperties)
	app.Get("/api/agents", ListAgents)
	app.Get("/api/agents/:id", GetAgent)
	app.Get("/health", Health)
	return app
}

func getJSON(t *testing.T, app *fiber.App, target string, out interface{}) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	if out != nil && resp.StatusCode == fiber.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func recordIDs(records []listing.Record) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestListPropertiesDefaults(t *testing.T) {
	seedCatalog(t)
	app := newTestApp()

	var result listing.Result
	resp := getJSON(t, app, "/api/properties", &result)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get(fiber.HeaderContentType))

	assert.Equal(t, 7, result.TotalCount)
	assert.Equal(t, 2, result.TotalPages)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, listing.DefaultPageSize, result.PageSize)
	assert.Equal(t, []int64{7, 6, 5, 4, 3, 2}, recordIDs(result.Items))
}

func TestListPropertiesFilters(t *testing.T) {
	seedCatalog(t)
	app := newTestApp()

	var result listing.Result
	getJSON(t, app, "/api/properties?purpose=for-sale&location=mumbai&sortBy=price-asc", &result)
	assert.Equal(t, []int64{1, 4}, recordIDs(result.Items))

	getJSON(t, app, "/api/properties?agent=Priya%20Sharma&property-type=Flat", &result)
	assert.Equal(t, []int64{7}, recordIDs(result.Items))

	getJSON(t, app, "/api/properties?purpose=for-sale&minPrice=10000000&maxPrice=30000000&sortBy=price-desc", &result)
	assert.Equal(t, []int64{6, 1}, recordIDs(result.Items))

	getJSON(t, app, "/api/properties?beds=4%2B&sortBy=price-desc", &result)
	assert.Equal(t, []int64{4, 6, 2}, recordIDs(result.Items))
}

func TestListPropertiesPageClamping(t *testing.T) {
	seedCatalog(t)
	app := newTestApp()

	var result listing.Result
	getJSON(t, app, "/api/properties?page=0", &result)
	assert.Equal(t, 1, result.Page)

	getJSON(t, app, "/api/properties?page=2", &result)
	assert.Equal(t, []int64{1}, recordIDs(result.Items))

	getJSON(t, app, "/api/properties?page=9", &result)
	assert.Equal(t, 7, result.TotalCount)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
}

func TestFilterSpecFromQueryAliases(t *testing.T) {
	Init(Options{PageSize: 3})
	defer Init(Options{})

	app := fiber.New()
	var got listing.FilterSpec
	app.Get("/", func(c *fiber.Ctx) error {
		got = filterSpecFromQuery(c)
		return nil
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/?agentName=Anita&propertyType=Villa&sort=price-asc&min-price=5&beds=2&page=-4", nil))
	require.NoError(t, err)

	assert.Equal(t, listing.FilterSpec{
		AgentName:    "Anita",
		PropertyType: "Villa",
		SortBy:       "price-asc",
		MinPrice:     "5",
		Beds:         "2",
		Page:         1,
		PageSize:     3,
	}, got)
}

func TestListAgents(t *testing.T) {
	seedCatalog(t)
	app := newTestApp()

	var result listing.AgentResult
	resp := getJSON(t, app, "/api/agents", &result)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, listing.DefaultAgentPageSize, result.PageSize)
	require.Len(t, result.Agents, 3)
	assert.Equal(t, "Priya Sharma", result.Agents[0].Name)

	getJSON(t, app, "/api/agents?search=rao", &result)
	require.Len(t, result.Agents, 1)
	assert.Equal(t, uint(12), result.Agents[0].ID)
}

func TestGetAgent(t *testing.T) {
	seedCatalog(t)
	app := newTestApp()

	var body struct {
		Agent      listing.Agent    `json:"agent"`
		Properties []listing.Record `json:"properties"`
	}
	resp := getJSON(t, app, "/api/agents/10", &body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Priya Sharma", body.Agent.Name)
	assert.Equal(t, []int64{7, 3, 1}, recordIDs(body.Properties))

	assert.Equal(t, fiber.StatusNotFound, getJSON(t, app, "/api/agents/99", nil).StatusCode)
	assert.Equal(t, fiber.StatusBadRequest, getJSON(t, app, "/api/agents/abc", nil).StatusCode)
}

func TestHealthWithoutDatabase(t *testing.T) {
	seedCatalog(t)
	app := newTestApp()

	resp := getJSON(t, app, "/health", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body["status"])
	assert.EqualValues(t, 7, body["properties"])
}

func TestPropertyInputValidate(t *testing.T) {
	valid := func() PropertyInput {
		return PropertyInput{
			Title:    " Garden Villa ",
			Location: "Bangalore",
			Type:     model.PropertyTypeVilla,
			Purpose:  model.PurposeForSale,
			Price:    "₹85 L",
			Beds:     4,
		}
	}

	in := valid()
	require.NoError(t, in.validate())
	assert.Equal(t, "Garden Villa", in.Title)

	in = valid()
	in.Price = ""
	in.PriceValue = 15000000
	require.NoError(t, in.validate())
	assert.Equal(t, "₹1.5 Cr", in.Price)

	in = valid()
	in.Purpose = model.PurposeForRent
	in.Price = ""
	in.PriceValue = 18000
	require.NoError(t, in.validate())
	assert.Equal(t, "₹18,000/month", in.Price)

	cases := map[string]func(*PropertyInput){
		"missing title":    func(p *PropertyInput) { p.Title = "  " },
		"bad purpose":      func(p *PropertyInput) { p.Purpose = "for-lease" },
		"negative beds":    func(p *PropertyInput) { p.Beds = -1 },
		"no price":         func(p *PropertyInput) { p.Price = "" },
		"unreadable price": func(p *PropertyInput) { p.Price = "call us" },
		"too many images":  func(p *PropertyInput) { p.Images = make([]string, MaxPropertyImages+1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid()
			mutate(&in)
			assert.Error(t, in.validate())
		})
	}
}

func TestRegisterInputValidate(t *testing.T) {
	in := RegisterInput{Email: " Asha@Example.com ", Password: "secret1", Name: "Asha"}
	require.NoError(t, in.validate())
	assert.Equal(t, "asha@example.com", in.Email)
	assert.Equal(t, model.RoleUser, in.Role)

	in = RegisterInput{Email: "a@example.com", Password: "secret1", Name: "A", Role: model.RoleAdmin}
	assert.Error(t, in.validate())

	in = RegisterInput{Email: "not-an-email", Password: "secret1", Name: "A"}
	assert.Error(t, in.validate())

	in = RegisterInput{Email: "a@example.com", Password: "123", Name: "A"}
	assert.Error(t, in.validate())
}

func TestEnquiryInputValidate(t *testing.T) {
	in := EnquiryInput{Name: "Asha", Email: "asha@example.com", Message: "Is it available?"}
	assert.NoError(t, in.validate())

	in = EnquiryInput{Name: "", Email: "asha@example.com"}
	assert.Error(t, in.validate())

	in = EnquiryInput{Name: "Asha", Email: "asha"}
	assert.Error(t, in.validate())
}

func stubLoader(t *testing.T, load func() error) {
	t.Helper()
	prev := loadCatalog
	loadCatalog = load
	t.Cleanup(func() { loadCatalog = prev })
}

func TestRefreshCatalogDoesNotOverlap(t *testing.T) {
	var running, peak, calls atomic.Int32
	stubLoader(t, func() error {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		calls.Add(1)
		time.Sleep(5 * time.Millisecond)
		return nil
	})

	before := catalogGen.Load()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, RefreshCatalog(context.Background()))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, peak.Load())
	assert.EqualValues(t, 8, calls.Load())
	assert.Equal(t, before+8, catalogGen.Load())
}

func TestRefreshCatalogFailureKeepsGeneration(t *testing.T) {
	stubLoader(t, func() error { return errors.New("db down") })

	before := catalogGen.Load()
	require.Error(t, RefreshCatalog(context.Background()))
	assert.Equal(t, before, catalogGen.Load())
}
