package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocaleText_ValueNilIsNull(t *testing.T) {
	var txt LocaleText
	v, err := txt.Value()
	require.NoError(t, err)
	assert.Nil(t, v, "nil map must store as SQL NULL, not as an empty object")
}

func TestLocaleText_ValueMarshalsEntries(t *testing.T) {
	txt := LocaleText{"en": "window seat please", "es": "mesa junto a la ventana"}
	v, err := txt.Value()
	require.NoError(t, err)

	raw, ok := v.([]byte)
	require.True(t, ok)

	var back LocaleText
	require.NoError(t, back.Scan(raw))
	assert.Equal(t, txt, back)
}

func TestLocaleText_ScanNull(t *testing.T) {
	txt := LocaleText{"en": "stale"}
	require.NoError(t, txt.Scan(nil))
	assert.Nil(t, txt)
}

func TestLocaleText_ScanString(t *testing.T) {
	// The MySQL driver may hand JSON columns over as string.
	var txt LocaleText
	require.NoError(t, txt.Scan(`{"en":"near the bar"}`))
	assert.Equal(t, LocaleText{"en": "near the bar"}, txt)
}

func TestLocaleText_ScanRejectsOtherTypes(t *testing.T) {
	var txt LocaleText
	assert.Error(t, txt.Scan(42))
}

func TestLocaleText_Resolve(t *testing.T) {
	txt := LocaleText{"en": "quiet corner", "es": "rincón tranquilo"}

	got, ok := txt.Resolve("es")
	require.True(t, ok)
	assert.Equal(t, "rincón tranquilo", got)

	// Unknown locale falls back to en.
	got, ok = txt.Resolve("fr")
	require.True(t, ok)
	assert.Equal(t, "quiet corner", got)
}

func TestLocaleText_ResolveWithoutFallbackEntry(t *testing.T) {
	txt := LocaleText{"es": "solo español"}
	got, ok := txt.Resolve("fr")
	require.True(t, ok, "any present variant beats returning nothing")
	assert.Equal(t, "solo español", got)
}

func TestLocaleText_ResolveEmpty(t *testing.T) {
	var txt LocaleText
	_, ok := txt.Resolve("en")
	assert.False(t, ok)
}
