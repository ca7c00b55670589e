package web

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"code.superseriousbusiness.org/httpsig"
	"github.com/google/uuid"

	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
)

type dispatcherFunc func(ctx context.Context, actor domain.Actor, activity *federation.Object) error

func (f dispatcherFunc) Dispatch(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	return f(ctx, actor, activity)
}

type resolverFunc func(ctx context.Context, uri string) (domain.Actor, error)

func (f resolverFunc) ResolveActor(ctx context.Context, uri string) (domain.Actor, error) {
	return f(ctx, uri)
}

func signingActor(t *testing.T) (domain.Actor, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	keyPem := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	return domain.Actor{
		ID:           uuid.New(),
		URI:          "https://remote.example/users/alice",
		Host:         "remote.example",
		PublicKeyPem: keyPem,
	}, key
}

func signedRequest(t *testing.T, key *rsa.PrivateKey, keyId string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/inbox", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/activity+json")
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))

	signer, _, err := httpsig.NewSigner(
		[]httpsig.Algorithm{httpsig.RSA_SHA256},
		httpsig.DigestSha256,
		[]string{httpsig.RequestTarget, "date", "digest"},
		httpsig.Signature,
		3600,
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := signer.SignRequest(key, keyId, req, body); err != nil {
		t.Fatal(err)
	}
	return req
}

func TestPostInboxMalformedBody(t *testing.T) {
	h := New(dispatcherFunc(func(context.Context, domain.Actor, *federation.Object) error {
		t.Error("malformed payload must not reach the kernel")
		return nil
	}), resolverFunc(func(context.Context, string) (domain.Actor, error) {
		return domain.Actor{}, nil
	}))

	cases := []struct {
		name string
		body string
	}{
		{"NotJSON", "not json"},
		{"NoType", `{"id": "https://remote.example/activities/1"}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/inbox", bytes.NewBufferString(c.body))
			rec := httptest.NewRecorder()
			h.PostInbox(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestPostInboxUnsignedRequest(t *testing.T) {
	h := New(dispatcherFunc(func(context.Context, domain.Actor, *federation.Object) error {
		t.Error("unauthenticated payload must not reach the kernel")
		return nil
	}), resolverFunc(func(context.Context, string) (domain.Actor, error) {
		return domain.Actor{}, nil
	}))

	body := []byte(`{"type": "Create", "object": "https://remote.example/notes/1"}`)
	req := httptest.NewRequest(http.MethodPost, "/inbox", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.PostInbox(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestPostInboxDispatchesVerifiedActivity(t *testing.T) {
	actor, key := signingActor(t)

	var dispatched *federation.Object
	h := New(dispatcherFunc(func(_ context.Context, got domain.Actor, activity *federation.Object) error {
		if got.ID != actor.ID {
			t.Errorf("dispatched actor %s, want %s", got.URI, actor.URI)
		}
		dispatched = activity
		return nil
	}), resolverFunc(func(_ context.Context, uri string) (domain.Actor, error) {
		// The fragment is stripped before resolution.
		if uri != actor.URI {
			t.Errorf("resolved %s, want %s", uri, actor.URI)
		}
		return actor, nil
	}))

	activity := map[string]any{
		"type":   "Create",
		"id":     "https://remote.example/activities/1",
		"actor":  actor.URI,
		"object": "https://remote.example/notes/1",
	}
	body, _ := json.Marshal(activity)
	req := signedRequest(t, key, actor.URI+"#main-key", body)
	rec := httptest.NewRecorder()
	h.PostInbox(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if dispatched == nil || dispatched.Type != federation.TypeCreate {
		t.Errorf("dispatched = %+v", dispatched)
	}
}

func TestPostInboxWrongKeyIsRejected(t *testing.T) {
	actor, _ := signingActor(t)
	_, otherKey := signingActor(t)

	h := New(dispatcherFunc(func(context.Context, domain.Actor, *federation.Object) error {
		t.Error("forged signature must not reach the kernel")
		return nil
	}), resolverFunc(func(context.Context, string) (domain.Actor, error) {
		return actor, nil
	}))

	body := []byte(`{"type": "Create", "object": "https://remote.example/notes/1"}`)
	req := signedRequest(t, otherKey, actor.URI+"#main-key", body)
	rec := httptest.NewRecorder()
	h.PostInbox(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestPostInboxErrorClassification(t *testing.T) {
	actor, key := signingActor(t)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"PermanentErrorAcknowledged", &federation.FetchError{StatusCode: 410}, http.StatusAccepted},
		{"UnsupportedActivityAcknowledged", fmt.Errorf("%w: activity type Arrive", federation.ErrUnsupported), http.StatusAccepted},
		{"MissingObjectAcknowledged", fmt.Errorf("%w: object", federation.ErrMissingProperty), http.StatusAccepted},
		{"TransientErrorRetriable", errors.New("database locked"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := New(dispatcherFunc(func(context.Context, domain.Actor, *federation.Object) error {
				return c.err
			}), resolverFunc(func(context.Context, string) (domain.Actor, error) {
				return actor, nil
			}))

			body := []byte(`{"type": "Delete", "actor": "` + actor.URI + `", "object": "https://remote.example/notes/1"}`)
			req := signedRequest(t, key, actor.URI+"#main-key", body)
			rec := httptest.NewRecorder()
			h.PostInbox(rec, req)
			if rec.Code != c.status {
				t.Errorf("status = %d, want %d", rec.Code, c.status)
			}
		})
	}
}
