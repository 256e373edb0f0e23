package password

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := New(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, h.Verify("secret1", hash))
	assert.False(t, h.Verify("secret2", hash))
	assert.False(t, h.Verify("", hash))
}

func TestHasher_HashIsSalted(t *testing.T) {
	h := New(bcrypt.MinCost)

	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHasher_ConcurrentUse(t *testing.T) {
	h := New(bcrypt.MinCost)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pw := fmt.Sprintf("password-%d", i)
			hash, err := h.Hash(pw)
			if assert.NoError(t, err) {
				assert.True(t, h.Verify(pw, hash))
			}
		}(i)
	}
	wg.Wait()
}

func TestHasher_New_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, New(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, New(99).cost)
	assert.Equal(t, 12, New(12).cost)
}

func TestHasher_VerifyMalformed(t *testing.T) {
	h := New(bcrypt.MinCost)

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"google sentinel", "google_auth"},
		{"placeholder sentinel", "placeholder_hash"},
		{"plaintext", "secret1"},
		{"truncated bcrypt", "$2a$10$abc"},
		{"pbkdf2 missing parts", "pbkdf2:sha256:1000$salt"},
		{"pbkdf2 bad hex", "pbkdf2:sha256:1000$salt$zz"},
		{"pbkdf2 empty hash", "pbkdf2:sha256:1000$salt$"},
		{"pbkdf2 bad iterations", "pbkdf2:sha256:abc$salt$00"},
		{"pbkdf2 zero iterations", "pbkdf2:sha256:0$salt$00"},
		{"pbkdf2 unknown digest", "pbkdf2:md5:1000$salt$00"},
		{"scrypt bad n", "scrypt:3:8:1$salt$00"},
		{"scrypt short params", "scrypt:16384:8$salt$00"},
		{"scrypt huge n", "scrypt:1073741824:8:1$salt$00"},
		{"scrypt huge r", "scrypt:1048576:1048576:1$salt$00"},
		{"scrypt huge p", "scrypt:16384:8:1048576$salt$00"},
		{"scrypt memory over limit", "scrypt:1048576:16:1$salt$00"},
		{"argon2 missing parts", "$argon2id$v=19$m=65536"},
		{"argon2 bad version", "$argon2id$v=1$m=64,t=1,p=1$c2FsdA$aGFzaA"},
		{"argon2 zero threads", "$argon2id$v=19$m=64,t=1,p=0$c2FsdA$aGFzaA"},
		{"argon2 bad base64", "$argon2id$v=19$m=64,t=1,p=1$!!$!!"},
		{"argon2 empty hash", "$argon2id$v=19$m=64,t=1,p=1$c2FsdA$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify("secret1", tt.encoded))
			})
		})
	}
}

func TestHasher_VerifyWerkzeugPBKDF2(t *testing.T) {
	h := New(bcrypt.MinCost)
	sum := pbkdf2.Key([]byte("demo123"), []byte("Xa8sLq2v"), 1000, sha256.Size, sha256.New)
	encoded := "pbkdf2:sha256:1000$Xa8sLq2v$" + hex.EncodeToString(sum)

	assert.True(t, h.Verify("demo123", encoded))
	assert.False(t, h.Verify("demo124", encoded))
	assert.True(t, h.NeedsRehash(encoded))
}

func TestHasher_VerifyWerkzeugScrypt(t *testing.T) {
	h := New(bcrypt.MinCost)
	sum, err := scrypt.Key([]byte("demo123"), []byte("k2Jd9sLa"), 1024, 8, 1, scryptKeyLen)
	require.NoError(t, err)
	encoded := "scrypt:1024:8:1$k2Jd9sLa$" + hex.EncodeToString(sum)

	assert.True(t, h.Verify("demo123", encoded))
	assert.False(t, h.Verify("demo12", encoded))
}

func TestHasher_VerifyArgon2id(t *testing.T) {
	h := New(bcrypt.MinCost)
	salt := []byte("0123456789abcdef")
	sum := argon2.IDKey([]byte("demo123"), salt, 1, 64, 1, 32)
	encoded := fmt.Sprintf("$argon2id$v=%d$m=64,t=1,p=1$%s$%s",
		argon2.Version,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	)

	assert.True(t, h.Verify("demo123", encoded))
	assert.False(t, h.Verify("demo1234", encoded))
}

func TestHasher_NeedsRehash(t *testing.T) {
	h := New(bcrypt.MinCost)

	current, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.False(t, h.NeedsRehash(current))

	other, err := New(bcrypt.MinCost + 1).Hash("secret1")
	require.NoError(t, err)
	assert.True(t, h.NeedsRehash(other))

	assert.True(t, h.NeedsRehash("placeholder_hash"))
}
