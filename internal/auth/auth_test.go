package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("password stored in the clear")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("wrong password accepted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := SignJWT("user-1", "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	uid, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != "user-1" {
		t.Fatalf("uid = %q, want user-1", uid)
	}

	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Fatalf("token accepted with wrong secret")
	}
}

func TestJWTExpiry(t *testing.T) {
	token, err := SignJWT("user-1", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Fatalf("expired token accepted")
	}
}
