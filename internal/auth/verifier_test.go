package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func signHS256(secret, header, payload string) string {
	enc := base64.RawURLEncoding
	h := enc.EncodeToString([]byte(header))
	p := enc.EncodeToString([]byte(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(h + "." + p))
	return h + "." + p + "." + enc.EncodeToString(mac.Sum(nil))
}

func TestVerify_DevMode(t *testing.T) {
	v := NewVerifier("dev", "")
	pr, err := v.Verify("t_acme:admin")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if pr.Tenant != "t_acme" || pr.Role != "admin" {
		t.Fatalf("unexpected principal: %+v", pr)
	}
	if _, err := v.Verify("garbage"); err == nil {
		t.Fatal("expected error for malformed dev token")
	}
}

func TestVerify_HMAC(t *testing.T) {
	v := NewVerifier("hmac", "s3cret")
	tok := signHS256("s3cret", `{"alg":"HS256","typ":"JWT"}`, `{"tenant":"t_acme","role":"Analyst"}`)
	pr, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if pr.Tenant != "t_acme" || pr.Role != "analyst" {
		t.Fatalf("unexpected principal: %+v", pr)
	}
	bad := signHS256("wrong", `{"alg":"HS256","typ":"JWT"}`, `{"tenant":"t_acme","role":"admin"}`)
	if _, err := v.Verify(bad); err == nil {
		t.Fatal("expected bad signature error")
	}
}
