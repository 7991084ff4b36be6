package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gyaneshwarpardhi/siloroute/internal/provider"
)

const (
	headerSignature = "X-Hub-Signature-256"
	headerEvent     = "X-GitHub-Event"

	signaturePrefix = "sha256="
)

// Events directed at a single previously-created resource; one region owns it.
var commandEvents = map[string]bool{
	"issue_comment":               true,
	"commit_comment":              true,
	"pull_request_review_comment": true,
}

// Installation-wide events every owning region must observe.
var broadcastEvents = map[string]bool{
	"installation":              true,
	"installation_repositories": true,
	"github_app_authorization":  true,
}

// Provider verifies GitHub webhooks signed with the app's shared HMAC secret.
type Provider struct {
	secret []byte
}

// New creates a GitHub provider from the webhook shared secret.
func New(secret string) *Provider {
	return &Provider{secret: []byte(secret)}
}

func (p *Provider) Name() string { return "github" }

func (p *Provider) Verify(header http.Header, body []byte) (*provider.VerifiedRequest, error) {
	sig := header.Get(headerSignature)
	if !strings.HasPrefix(sig, signaturePrefix) {
		return nil, provider.ErrInvalidSignature
	}
	given, err := hex.DecodeString(strings.TrimPrefix(sig, signaturePrefix))
	if err != nil {
		return nil, provider.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, p.secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), given) {
		return nil, provider.ErrInvalidSignature
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("github: parse payload: %w", err)
	}
	vr := &provider.VerifiedRequest{
		Event:   header.Get(headerEvent),
		Payload: payload,
	}
	if inst, ok := payload["installation"].(map[string]interface{}); ok {
		if id, ok := inst["id"].(float64); ok {
			vr.ExternalID = strconv.FormatInt(int64(id), 10)
		}
	}
	return vr, nil
}

func (p *Provider) Classify(vr *provider.VerifiedRequest) provider.InteractionKind {
	switch {
	case vr.Event == "ping":
		return provider.KindPing
	case commandEvents[vr.Event]:
		return provider.KindCommand
	case broadcastEvents[vr.Event]:
		return provider.KindBroadcastEvent
	default:
		return provider.KindUnclassified
	}
}

func (p *Provider) Pong() []byte { return []byte(`{"message":"pong"}`) }
