// Package catalog keeps an in-memory snapshot of the listings and agents that
// the listing engine filters. Readers always get their own copy.
package catalog

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"gorm.io/gorm"

	"realty_backend/internal/listing"
	"realty_backend/internal/model"
)

type Store struct {
	mu         sync.RWMutex
	properties []listing.Record
	agents     []listing.Agent
	loadedAt   time.Time
}

func NewStore() *Store {
	return &Store{}
}

// Default is the process wide snapshot used by the HTTP handlers.
var Default = NewStore()

// Replace swaps in a new snapshot.
func (s *Store) Replace(properties []listing.Record, agents []listing.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties = slices.Clone(properties)
	s.agents = slices.Clone(agents)
	s.loadedAt = time.Now()
}

func (s *Store) Properties() []listing.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.properties)
}

func (s *Store) Agents() []listing.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.agents)
}

// Agent looks up one directory entry by user ID.
func (s *Store) Agent(id uint) (listing.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.agents {
		if a.ID == id {
			return a, true
		}
	}
	return listing.Agent{}, false
}

func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Load reads every listing and agent from db and replaces the snapshot.
// Records are kept in ascending ID order.
func (s *Store) Load(db *gorm.DB) error {
	var properties []model.Property
	if err := db.Preload("Agent").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("property_images.order ASC")
		}).
		Order("id ASC").
		Find(&properties).Error; err != nil {
		return fmt.Errorf("could not load properties: %w", err)
	}

	var agents []model.User
	if err := db.Where("role = ?", model.RoleAgent).Order("id ASC").Find(&agents).Error; err != nil {
		return fmt.Errorf("could not load agents: %w", err)
	}

	records := make([]listing.Record, 0, len(properties))
	counts := make(map[uint]int, len(agents))
	for i := range properties {
		records = append(records, properties[i].ToRecord())
		counts[properties[i].AgentID]++
	}

	directory := make([]listing.Agent, 0, len(agents))
	for i := range agents {
		directory = append(directory, agents[i].ToAgent(counts[agents[i].ID]))
	}

	s.Replace(records, directory)
	return nil
}
