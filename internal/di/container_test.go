package di

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsError(t *testing.T) {
	base := errors.New("boom")
	assert.Same(t, base, asError(base))
	assert.EqualError(t, asError("store: locked"), "store: locked")
}
