package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsAnyFold(t *testing.T) {
	assert.True(t, ContainsAnyFold("Patchy Light SNOW", "rain", "snow"))
	assert.True(t, ContainsAnyFold("mist", "Fog", "MIST"))
	assert.False(t, ContainsAnyFold("Sunny", "cloud"))
	assert.False(t, ContainsAnyFold("Sunny"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Paris", "Oslo"}, SplitList(" Paris, Oslo ,"))
	assert.Nil(t, SplitList(" , "))
	assert.Nil(t, SplitList(""))
}
