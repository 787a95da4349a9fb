package secure

import (
	"database/sql/driver"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

const encPrefix = "enc:v1:"

var (
	keyMu    sync.RWMutex
	fieldKey []byte
)

// LoadKeyFromEnv reads FIELD_ENCRYPTION_KEY (base64 of 16/24/32 bytes, or a raw
// 32 character string). Without a key, values are stored in clear text.
func LoadKeyFromEnv() error {
	raw := strings.TrimSpace(os.Getenv("FIELD_ENCRYPTION_KEY"))
	if raw == "" {
		log.Println("⚠️ FIELD_ENCRYPTION_KEY is not set, sensitive biodata fields are stored unencrypted")
		SetKey(nil)
		return nil
	}
	if k, err := base64.StdEncoding.DecodeString(raw); err == nil && validKeyLen(len(k)) {
		SetKey(k)
		return nil
	}
	if len(raw) == 32 {
		SetKey([]byte(raw))
		return nil
	}
	return fmt.Errorf("FIELD_ENCRYPTION_KEY must be base64 of 16, 24 or 32 bytes")
}

func validKeyLen(n int) bool { return n == 16 || n == 24 || n == 32 }

func SetKey(k []byte) {
	keyMu.Lock()
	fieldKey = append([]byte(nil), k...)
	keyMu.Unlock()
}

func currentKey() []byte {
	keyMu.RLock()
	defer keyMu.RUnlock()
	return fieldKey
}

// EncryptedString is a string column encrypted at rest with AES-GCM.
// Plain (legacy) values are read back unchanged.
type EncryptedString string

func (e EncryptedString) String() string { return string(e) }

func (e EncryptedString) Value() (driver.Value, error) {
	if e == "" {
		return "", nil
	}
	key := currentKey()
	if len(key) == 0 {
		return string(e), nil
	}
	enc, err := Encrypt(key, string(e))
	if err != nil {
		return nil, fmt.Errorf("encrypt field: %w", err)
	}
	return encPrefix + enc, nil
}

func (e *EncryptedString) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*e = ""
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into EncryptedString", src)
	}

	if !strings.HasPrefix(s, encPrefix) {
		*e = EncryptedString(s)
		return nil
	}
	key := currentKey()
	if len(key) == 0 {
		return fmt.Errorf("encrypted value found but FIELD_ENCRYPTION_KEY is not set")
	}
	plain, err := Decrypt(key, strings.TrimPrefix(s, encPrefix))
	if err != nil {
		return fmt.Errorf("decrypt field: %w", err)
	}
	*e = EncryptedString(plain)
	return nil
}

func (EncryptedString) GormDataType() string { return "text" }
