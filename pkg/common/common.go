package common

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/crypto/bcrypt"
)

var snowflakeNode *snowflake.Node

func init() {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	snowflakeNode = node
}

// UUIDint64 generates a time-ordered int64 primary key.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// GetSecretSalt returns the process-wide hashing salt, overridable via env.
func GetSecretSalt() string {
	if s := os.Getenv("ORDERDESK_SECRET_SALT"); s != "" {
		return s
	}
	return "orderdesk-secret-salt"
}

func Sha256HashWithSalt(value, salt string) string {
	sum := sha256.Sum256([]byte(value + salt))
	return hex.EncodeToString(sum[:])
}

func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// VerifyPassword checks a candidate secret against the stored credential.
// A stored value with a bcrypt prefix is treated as a bcrypt hash; anything
// else is compared in constant time through a salted digest.
func VerifyPassword(candidate, stored string) bool {
	if candidate == "" || stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	salt := GetSecretSalt()
	return SecureCompare(Sha256HashWithSalt(candidate, salt), Sha256HashWithSalt(stored, salt))
}
