package sanitize_test

import (
	"testing"

	"mymemorycard.com/backend/pkg/sanitize"
	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "hello world", sanitize.Text("  <b>hello</b> <script>alert(1)</script>world "))
	assert.Equal(t, "Tom & Jerry", sanitize.Text("Tom &amp; Jerry"))
	assert.Equal(t, "", sanitize.Text("<img src=x onerror=alert(1)>"))
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "first second", sanitize.Compact("<p>first</p><p>second</p>"))
}

func TestOptionalText(t *testing.T) {
	blank := "<i></i>"
	assert.Nil(t, sanitize.OptionalText(&blank))
	assert.Nil(t, sanitize.OptionalText(nil))

	bio := "<em>speedrunner</em>"
	assert.Equal(t, "speedrunner", *sanitize.OptionalText(&bio))
}
