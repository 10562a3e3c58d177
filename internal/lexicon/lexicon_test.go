package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/logicguard/internal/model"
)

func TestKnown(t *testing.T) {
	lex := Default()
	assert.True(t, lex.Known("Everyone"))
	assert.True(t, lex.Known("không"))
	assert.False(t, lex.Known("quantum"))
	assert.True(t, lex.KnownIn(model.LanguageVI, "người"))
	assert.False(t, lex.KnownIn(model.LanguageEN, "người"))
}

func TestCorrection(t *testing.T) {
	lex := Default()

	got, lang, ok := lex.Correction("Ths")
	assert.True(t, ok)
	assert.Equal(t, "This", got)
	assert.Equal(t, model.LanguageEN, lang)

	got, _, ok = lex.Correction("smple")
	assert.True(t, ok)
	assert.Equal(t, "simple", got)

	got, lang, ok = lex.Correction("nghành")
	assert.True(t, ok)
	assert.Equal(t, "ngành", got)
	assert.Equal(t, model.LanguageVI, lang)

	_, _, ok = lex.Correction("simple")
	assert.False(t, ok)
}

func TestAllOrdinary(t *testing.T) {
	lex := Default()
	assert.True(t, lex.AllOrdinary("the simple test"))
	assert.False(t, lex.AllOrdinary("Quantum Efficiency Score"))
	assert.False(t, lex.AllOrdinary(""))
}

func TestIsCommonAcronym(t *testing.T) {
	lex := Default()
	assert.True(t, lex.IsCommonAcronym("GDP"))
	assert.False(t, lex.IsCommonAcronym("QES"))
}
