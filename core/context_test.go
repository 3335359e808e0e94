package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuppressHeader(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx), "headers are shown by default")
	assert.True(t, shouldSuppressHeader(withSuppressHeader(ctx)))

	// A foreign value under the key does not suppress anything.
	odd := context.WithValue(ctx, suppressHeaderKey, "yes")
	assert.False(t, shouldSuppressHeader(odd))
}
