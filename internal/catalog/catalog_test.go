package catalog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"realty_backend/internal/listing"
)

func TestStoreReturnsCopies(t *testing.T) {
	s := NewStore()
	assert.True(t, s.LoadedAt().IsZero())

	s.Replace(
		[]listing.Record{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}},
		[]listing.Agent{{ID: 9, Name: "Rahul Sharma"}},
	)
	assert.False(t, s.LoadedAt().IsZero())

	props := s.Properties()
	props[0].Title = "changed"
	assert.Equal(t, "a", s.Properties()[0].Title)

	a, ok := s.Agent(9)
	assert.True(t, ok)
	assert.Equal(t, "Rahul Sharma", a.Name)

	_, ok = s.Agent(10)
	assert.False(t, ok)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Replace([]listing.Record{{ID: int64(i)}}, nil)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = listing.Apply(s.Properties(), listing.FilterSpec{Page: 1, PageSize: 6})
		}()
	}
	wg.Wait()
	assert.Len(t, s.Properties(), 1)
}
