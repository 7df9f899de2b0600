package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityValid(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, Priority("urgent").Valid())
	assert.False(t, Priority("").Valid())
}

func TestModelsMigrateParentsFirst(t *testing.T) {
	models := Models()
	assert.IsType(t, &Board{}, models[0])
	assert.IsType(t, &Column{}, models[1])
	assert.IsType(t, &Task{}, models[2])
}
