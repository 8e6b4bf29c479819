package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotConnected(t *testing.T) {
	prev := DB
	DB = nil
	defer func() { DB = prev }()

	assert.ErrorIs(t, Ping(context.Background()), ErrNotConnected)
	assert.ErrorIs(t, Migrate(struct{}{}), ErrNotConnected)
	assert.NoError(t, Close())
}
