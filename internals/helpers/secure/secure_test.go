package secure

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecrypt(t *testing.T) {
	enc, err := Encrypt(testKey, "1234 5678 9012")
	require.NoError(t, err)
	assert.NotContains(t, enc, "1234")

	plain, err := Decrypt(testKey, enc)
	require.NoError(t, err)
	assert.Equal(t, "1234 5678 9012", plain)

	_, err = Decrypt([]byte("another-key-another-key-32bytes!"), enc)
	assert.Error(t, err)
}

func TestEncryptedStringValueScan(t *testing.T) {
	SetKey(testKey)
	t.Cleanup(func() { SetKey(nil) })

	v, err := EncryptedString("ABCDE1234F").Value()
	require.NoError(t, err)
	stored, ok := v.(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(stored, encPrefix))

	var out EncryptedString
	require.NoError(t, out.Scan(stored))
	assert.Equal(t, EncryptedString("ABCDE1234F"), out)

	// legacy clear-text rows are read unchanged
	require.NoError(t, out.Scan([]byte("plain-value")))
	assert.Equal(t, EncryptedString("plain-value"), out)

	require.NoError(t, out.Scan(nil))
	assert.Equal(t, EncryptedString(""), out)
}

func TestEncryptedStringWithoutKey(t *testing.T) {
	SetKey(nil)
	v, err := EncryptedString("ABC").Value()
	require.NoError(t, err)
	assert.Equal(t, "ABC", v)

	var out EncryptedString
	assert.Error(t, out.Scan(encPrefix+"garbage"))
}

func TestLoadKeyFromEnv(t *testing.T) {
	t.Cleanup(func() { SetKey(nil) })

	t.Setenv("FIELD_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(testKey))
	require.NoError(t, LoadKeyFromEnv())
	assert.Equal(t, testKey, currentKey())

	t.Setenv("FIELD_ENCRYPTION_KEY", "short")
	assert.Error(t, LoadKeyFromEnv())
}
