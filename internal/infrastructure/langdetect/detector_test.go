package langdetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	d := New()

	code, ok := d.Detect("The finance minister presented the union budget in parliament on Thursday.")
	assert.True(t, ok)
	assert.Equal(t, "en", code)

	code, ok = d.Detect("वित्त मंत्री ने गुरुवार को संसद में केंद्रीय बजट पेश किया।")
	assert.True(t, ok)
	assert.Equal(t, "hi", code)

	_, ok = d.Detect("   ")
	assert.False(t, ok)
}
