package hebrew

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"אנטריקוט בקר טרי 500 גרם", "beef"},
		{"חזה עוף בתפזורת", "chicken"},
		{"שווארמה הודו", "turkey"},
		{"צלעות טלה", "lamb"},
		{"פילה סלמון נורווגי", "fish"},
		{"שניצל תירס", "processed"},
		{"Beef Entrecote 500g", "beef"},
		{"חלב 3%", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCategory(tt.name))
		})
	}
}

func TestIsMeatProduct(t *testing.T) {
	assert.True(t, IsMeatProduct("כנפיים עוף טרי"))
	assert.False(t, IsMeatProduct("לחם אחיד פרוס"))

	// Generic meat indicators pass the gate without yielding a category.
	assert.True(t, IsMeatProduct("בשר טחון טרי מהקצב"))
	assert.Empty(t, DetectCategory("בשר טחון טרי מהקצב"))
}
