// Package web exposes the inbound federation surface: the shared inbox
// endpoint that authenticates deliveries and hands them to the kernel.
package web

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"code.superseriousbusiness.org/httpsig"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
)

const maxBodySize = 1 << 20

// Dispatcher is the activity kernel entry point.
type Dispatcher interface {
	Dispatch(ctx context.Context, actor domain.Actor, activity *federation.Object) error
}

// ActorResolver resolves the signing actor, fetching it on first contact.
type ActorResolver interface {
	ResolveActor(ctx context.Context, uri string) (domain.Actor, error)
}

type Handler struct {
	kernel Dispatcher
	actors ActorResolver
}

func New(kernel Dispatcher, actors ActorResolver) *Handler {
	return &Handler{kernel: kernel, actors: actors}
}

func (h *Handler) Mount(r chi.Router) {
	r.Post("/inbox", h.PostInbox)
	r.Post("/users/{username}/inbox", h.PostInbox)
}

// PostInbox receives one federated delivery. Federation is fire-and-forget:
// the delivery is acknowledged with 202 even when ingestion skips the
// activity; only malformed or unauthenticated requests get an error status.
func (h *Handler) PostInbox(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	activity := &federation.Object{}
	if err := json.Unmarshal(body, activity); err != nil {
		log.Debug().Err(err).Msg("malformed inbox payload")
		http.Error(w, "invalid activity", http.StatusBadRequest)
		return
	}
	if activity.Type == "" {
		http.Error(w, "activity has no type", http.StatusBadRequest)
		return
	}

	actor, err := h.verify(r)
	if err != nil {
		log.Warn().Err(err).Msg("inbox signature verification failed")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	if err := h.kernel.Dispatch(r.Context(), actor, activity); err != nil {
		if federation.IsPermanent(err) {
			// Terminal: acknowledge so the peer stops retrying.
			log.Warn().Err(err).Str("type", activity.Type).Msg("activity rejected")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		log.Error().Err(err).Str("type", activity.Type).Msg("activity processing failed")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// verify authenticates the delivery against the signing actor's published
// key and returns that actor.
func (h *Handler) verify(r *http.Request) (domain.Actor, error) {
	verifier, err := httpsig.NewVerifier(r)
	if err != nil {
		return domain.Actor{}, err
	}

	keyId, err := url.Parse(verifier.KeyId())
	if err != nil {
		return domain.Actor{}, fmt.Errorf("unable to parse keyId: %s", verifier.KeyId())
	}
	keyId.Fragment = ""
	keyId.RawFragment = ""

	actor, err := h.actors.ResolveActor(r.Context(), keyId.String())
	if err != nil {
		return domain.Actor{}, err
	}

	key, err := parsePublicKeyPem(actor.PublicKeyPem)
	if err != nil {
		return domain.Actor{}, err
	}

	if err := verifier.Verify(key, httpsig.RSA_SHA256); err != nil {
		return domain.Actor{}, err
	}
	return actor, nil
}

func parsePublicKeyPem(keyPem string) (crypto.PublicKey, error) {
	block, _ := pem.Decode([]byte(keyPem))
	if block == nil {
		return nil, fmt.Errorf("%w: public key", federation.ErrMissingProperty)
	}
	switch block.Type {
	case "PUBLIC KEY":
		return x509.ParsePKIXPublicKey(block.Bytes)
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	default:
		return nil, fmt.Errorf("%w: key type %s", federation.ErrUnsupported, block.Type)
	}
}
