package repository

import (
	"testing"

	"muselib/model"

	"github.com/stretchr/testify/assert"
)

func TestSortColumn(t *testing.T) {
	assert.Equal(t, "title", sortColumn(model.SortTitle))
	assert.Equal(t, "artist", sortColumn(model.SortArtist))
	assert.Equal(t, "album", sortColumn(model.SortAlbum))
	assert.Equal(t, "created_at", sortColumn(model.SortCreatedAt))
	assert.Equal(t, "created_at", sortColumn("drop table tracks"))
}
