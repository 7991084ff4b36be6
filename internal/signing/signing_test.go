package signing

import (
	"errors"
	"strings"
	"testing"
)

func TestSignUnsign_RoundTrip(t *testing.T) {
	c := NewCodec("secret")
	token, err := c.Sign(Claims{IntegrationID: 42})
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	claims, err := c.Unsign(token)
	if err != nil {
		t.Fatalf("Unsign error: %v", err)
	}
	if claims.IntegrationID != 42 {
		t.Errorf("IntegrationID = %d, want 42", claims.IntegrationID)
	}
}

func TestUnsign_BadTokens(t *testing.T) {
	c := NewCodec("secret")
	good, err := c.Sign(Claims{IntegrationID: 7})
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	payload, mac, _ := strings.Cut(good, ".")

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "abcdef"},
		{"garbage payload", "!!!." + mac},
		{"garbage mac", payload + ".!!!"},
		{"tampered payload", payload + "x." + mac},
		{"wrong secret", func() string {
			tok, _ := NewCodec("other-secret").Sign(Claims{IntegrationID: 7})
			return tok
		}()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Unsign(tc.token); !errors.Is(err, ErrBadToken) {
				t.Errorf("Unsign(%q) err = %v, want ErrBadToken", tc.token, err)
			}
		})
	}
}

func TestUnsign_IgnoresWhitespaceTamper(t *testing.T) {
	// A single flipped claim value must invalidate the MAC.
	c := NewCodec("secret")
	a, _ := c.Sign(Claims{IntegrationID: 1})
	b, _ := c.Sign(Claims{IntegrationID: 2})
	aPayload, _, _ := strings.Cut(a, ".")
	_, bMAC, _ := strings.Cut(b, ".")
	if _, err := c.Unsign(aPayload + "." + bMAC); !errors.Is(err, ErrBadToken) {
		t.Errorf("spliced token accepted, want ErrBadToken (err=%v)", err)
	}
}
