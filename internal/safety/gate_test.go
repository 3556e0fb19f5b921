package safety

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck_NoMatch(t *testing.T) {
	got := Check("Dripping kitchen faucet, washer looks worn")
	assert.False(t, got.Triggered)
	assert.False(t, got.ForceHire)
	assert.Empty(t, got.Reason)
}

func TestCheck_EveryKeywordTriggersInAnyCasing(t *testing.T) {
	for _, cat := range Categories {
		for _, kw := range cat.Keywords {
			for _, text := range []string{
				kw,
				strings.ToUpper(kw),
				"there is a (" + strings.ToUpper(kw[:1])+kw[1:] + ") problem!",
				"near the " + kw + ".",
			} {
				got := Check(text)
				assert.True(t, got.Triggered, "text %q", text)
				assert.True(t, got.ForceHire, "text %q", text)
				assert.True(t, strings.HasPrefix(got.Reason, "Detected high-risk category: "), got.Reason)
			}
		}
	}
}

func TestCheck_EarlierCategoryWins(t *testing.T) {
	got := Check("Mold under the roof next to the gas meter")
	assert.Equal(t, "Detected high-risk category: gas", got.Reason)

	got = Check("The roof leak soaked the electrical panel")
	assert.Equal(t, "Detected high-risk category: electrical panel", got.Reason)
}

func TestCheck_FirstKeywordWithinCategory(t *testing.T) {
	got := Check("possible natural gas leak")
	assert.Equal(t, "Detected high-risk category: gas", got.Reason)
}

func TestCheck_Deterministic(t *testing.T) {
	text := "black mold behind the septic access panel"
	assert.Equal(t, Check(text), Check(text))
}
