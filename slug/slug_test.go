package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Test Song", "test-song"},
		{"Another Brick in the Wall, Pt. 2", "another-brick-in-the-wall-pt-2"},
		{"  Leading & Trailing  ", "leading-trailing"},
		{"ALL CAPS", "all-caps"},
		{"multiple---separators___here", "multiple-separators-here"},
		{"99 Problems", "99-problems"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.title))
		})
	}
}

// Same title always yields the same slug, so uniqueness checks against stored
// slugs are meaningful.
func TestMakeDeterministic(t *testing.T) {
	assert.Equal(t, Make("Wish You Were Here"), Make("Wish You Were Here"))
}
