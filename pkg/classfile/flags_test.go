package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessFlagNames(t *testing.T) {
	assert.Equal(t, []string{"public", "super"}, ClassFlagNames(0x0021))
	assert.Equal(t, []string{"public", "interface", "abstract"}, ClassFlagNames(0x0601))
	assert.Equal(t, []string{"private", "static", "final"}, FieldFlagNames(0x001A))
	// 0x0020 and 0x0040 read differently on methods.
	assert.Equal(t, []string{"public", "synchronized", "bridge"}, MethodFlagNames(0x0061))
	assert.Nil(t, MethodFlagNames(0))
}

func TestAccessFlagsHas(t *testing.T) {
	f := AccPublic | AccStatic | AccFinal
	assert.True(t, f.Has(AccPublic|AccStatic))
	assert.False(t, f.Has(AccPublic|AccPrivate))
	assert.True(t, f.IsFinal())
	assert.False(t, f.IsAbstract())
}
