package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateSecureTokenHasNoPadding(t *testing.T) {
	assert := assert.New(t)
	gen := New()
	token := string(gen.CreateSecureToken())
	assert.NotEmpty(token)
	assert.False(strings.ContainsRune(token, '='))
}

func TestCreateSecureTokenIsUrlSafe(t *testing.T) {
	assert := assert.New(t)
	gen := New()
	for i := 0; i < 50; i++ {
		token := string(gen.CreateSecureToken())
		assert.False(strings.ContainsAny(token, "+/= "))
	}
}

func TestCreateSecureTokenDiffers(t *testing.T) {
	assert := assert.New(t)
	gen := New()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := string(gen.CreateSecureToken())
		assert.False(seen[token])
		seen[token] = true
	}
}

func TestCreateSecureTokenWithSize(t *testing.T) {
	assert := assert.New(t)
	gen := New()
	small := string(gen.CreateSecureTokenWithSize(8))
	large := string(gen.CreateSecureTokenWithSize(64))
	assert.True(len(small) < len(large))
}

func TestCreateJoinCodeLength(t *testing.T) {
	assert := assert.New(t)
	gen := New()
	for i := 0; i < 50; i++ {
		code := string(gen.CreateJoinCode())
		assert.Len(code, JoinCodeLength)
	}
}

func TestCreateJoinCodeAlphabet(t *testing.T) {
	assert := assert.New(t)
	gen := New()
	for i := 0; i < 50; i++ {
		code := string(gen.CreateJoinCode())
		for _, r := range code {
			assert.True(strings.ContainsRune(joinCodeAlphabet, r))
		}
		// no lookalike characters ever
		assert.False(strings.ContainsAny(code, "0O1I"))
	}
}
