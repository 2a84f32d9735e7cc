package common_test

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/orderdesk/orderdesk/pkg/common"
)

func TestUUIDint64Monotonic(t *testing.T) {
	prev := common.UUIDint64()
	for i := 0; i < 100; i++ {
		next := common.UUIDint64()
		if next <= prev {
			t.Fatalf("ids not increasing: %d then %d", prev, next)
		}
		prev = next
	}
}

func TestVerifyPasswordPlain(t *testing.T) {
	if !common.VerifyPassword("orderdesk", "orderdesk") {
		t.Error("matching plain credentials rejected")
	}
	if common.VerifyPassword("wrong", "orderdesk") {
		t.Error("mismatched credentials accepted")
	}
	if common.VerifyPassword("", "") {
		t.Error("empty credentials accepted")
	}
}

func TestVerifyPasswordBcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("orderdesk"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !common.VerifyPassword("orderdesk", string(hash)) {
		t.Error("matching bcrypt credentials rejected")
	}
	if common.VerifyPassword("wrong", string(hash)) {
		t.Error("mismatched bcrypt credentials accepted")
	}
}
