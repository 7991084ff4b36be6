package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gyaneshwarpardhi/siloroute/internal/provider"
)

const (
	headerSignature = "X-Signature-Ed25519"
	headerTimestamp = "X-Signature-Timestamp"
)

// Interaction types from the Discord API.
const (
	typePing               = 1
	typeApplicationCommand = 2
	typeMessageComponent   = 3
)

// Provider verifies Discord interaction webhooks. Discord signs every request
// with the application's Ed25519 key over timestamp||body.
type Provider struct {
	publicKey ed25519.PublicKey
}

// New creates a Discord provider from the hex-encoded application public key.
func New(publicKeyHex string) (*Provider, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("discord: decode public key: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("discord: public key must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}
	return &Provider{publicKey: ed25519.PublicKey(key)}, nil
}

func (p *Provider) Name() string { return "discord" }

func (p *Provider) Verify(header http.Header, body []byte) (*provider.VerifiedRequest, error) {
	sigHex := header.Get(headerSignature)
	timestamp := header.Get(headerTimestamp)
	if sigHex == "" || timestamp == "" {
		return nil, provider.ErrInvalidSignature
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return nil, provider.ErrInvalidSignature
	}

	message := make([]byte, 0, len(timestamp)+len(body))
	message = append(message, timestamp...)
	message = append(message, body...)
	if !ed25519.Verify(p.publicKey, message, sig) {
		return nil, provider.ErrInvalidSignature
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("discord: parse payload: %w", err)
	}
	vr := &provider.VerifiedRequest{Payload: payload}
	if guildID, ok := payload["guild_id"].(string); ok {
		vr.ExternalID = guildID
	}
	return vr, nil
}

func (p *Provider) Classify(vr *provider.VerifiedRequest) provider.InteractionKind {
	t, ok := vr.Payload["type"].(float64)
	if !ok {
		return provider.KindUnclassified
	}
	switch int(t) {
	case typePing:
		return provider.KindPing
	case typeApplicationCommand:
		// A slash command is issued by a single actor against one guild.
		return provider.KindCommand
	case typeMessageComponent:
		// Component interactions carry no pointer back to the region that
		// created the message, so every owning region must see them.
		return provider.KindBroadcastEvent
	default:
		return provider.KindUnclassified
	}
}

// Pong is the type-1 acknowledgement Discord expects for a ping interaction.
func (p *Provider) Pong() []byte { return []byte(`{"type":1}`) }
