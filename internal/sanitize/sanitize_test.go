package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestText_StripsMarkup(t *testing.T) {
	in := `  <b>Leaky</b> pipe<script>alert("x")</script> under <i>sink</i>  `
	assert.Equal(t, "Leaky pipe under sink", Text(in))
}

func TestText_CapsLength(t *testing.T) {
	got := Text(strings.Repeat("é", MaxDescriptionRunes+50))
	assert.Equal(t, MaxDescriptionRunes, utf8.RuneCountInString(got))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}
