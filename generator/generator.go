package generator

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"math/big"
	"strings"
)

// JoinCodeLength is the fixed length of human-typed family join codes.
const JoinCodeLength = 6

// joinCodeAlphabet leaves out 0/O/1/I so codes stay readable when
// shared verbally or scribbled on paper
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type RandomTokenType string

func tokenTypeFromString(token string) RandomTokenType {
	if token == "" {
		panic("zero length token issued, this is probably the only reason to ever panic")
	}
	return RandomTokenType(token)
}

type RandomTokenGenerator struct{}

// CreateSecureToken returns a 32 byte crypto/rand token, base64url
// encoded without padding. Invitation tokens must not be derivable
// from any public value, so nothing but the rand reader goes in here.
func (*RandomTokenGenerator) CreateSecureToken() RandomTokenType {
	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic(err.Error()) // rand should never fail
	}
	return tokenTypeFromString(removePadding(base64.URLEncoding.EncodeToString(b)))
}

func (*RandomTokenGenerator) CreateSecureTokenWithSize(size int) RandomTokenType {
	b := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic(err.Error()) // rand should never fail
	}
	return tokenTypeFromString(removePadding(base64.URLEncoding.EncodeToString(b)))
}

// CreateJoinCode returns a short human-typed code, uppercase, fixed
// length. Codes identify a family, not an invitation - they carry far
// less entropy than secure tokens and uniqueness is enforced by the
// store, not by the generator.
func (*RandomTokenGenerator) CreateJoinCode() RandomTokenType {
	var sb strings.Builder
	for i := 0; i < JoinCodeLength; i++ {
		sb.WriteByte(joinCodeAlphabet[genRandNum(0, int64(len(joinCodeAlphabet)))])
	}
	return tokenTypeFromString(sb.String())
}

func removePadding(token string) string {
	return strings.TrimRight(token, "=")
}

func genRandNum(min, max int64) int64 {
	bg := big.NewInt(max - min)
	n, err := rand.Int(rand.Reader, bg)
	if err != nil {
		panic(err)
	}
	return n.Int64() + min
}

func New() *RandomTokenGenerator {
	return &RandomTokenGenerator{}
}
