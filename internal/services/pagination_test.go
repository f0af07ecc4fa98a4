package services_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ride-admin-backend/internal/services"
)

func TestNewPageLinks(t *testing.T) {
	u, err := url.Parse("http://api.example.com/api/rides/?status=pickup&page=2")
	require.NoError(t, err)

	p := services.NewPage(u, 2, 25, []int{1})
	require.NotNil(t, p.Next)
	require.NotNil(t, p.Previous)
	assert.Equal(t, "http://api.example.com/api/rides/?page=3&status=pickup", *p.Next)
	assert.Equal(t, "http://api.example.com/api/rides/?status=pickup", *p.Previous)
}

func TestNewPageEnds(t *testing.T) {
	u, err := url.Parse("http://api.example.com/api/rides/")
	require.NoError(t, err)

	first := services.NewPage(u, 1, 25, []int{})
	assert.Nil(t, first.Previous)
	require.NotNil(t, first.Next)
	assert.Equal(t, "http://api.example.com/api/rides/?page=2", *first.Next)

	last := services.NewPage(u, 3, 25, []int{})
	assert.Nil(t, last.Next)
	assert.NotNil(t, last.Previous)

	exact := services.NewPage(u, 2, 20, []int{})
	assert.Nil(t, exact.Next)

	empty := services.NewPage[int](u, 1, 0, nil)
	assert.Nil(t, empty.Next)
	assert.Nil(t, empty.Previous)
	assert.NotNil(t, empty.Results)
}
