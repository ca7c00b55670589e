// Package client implements the signed HTTP collaborator used for
// dereferencing remote objects and posting to remote inboxes. Every request
// carries an HTTP signature made with the instance key.
package client

import (
	"bytes"
	"context"
	"crypto"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"code.superseriousbusiness.org/httpsig"
	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/federation"
)

var prefs = []httpsig.Algorithm{httpsig.RSA_SHA256}
var getHeaders = []string{httpsig.RequestTarget, "date"}
var postHeaders = []string{httpsig.RequestTarget, "date", "digest"}

const contentType = "application/activity+json"

// HttpClient signs and performs remote fetches and deliveries on behalf of
// the instance actor. Signers are not safe for concurrent use, hence the
// per-signer mutexes.
type HttpClient struct {
	client          *http.Client
	key             crypto.PrivateKey
	pubKeyId        *url.URL
	getSigner       httpsig.Signer
	getSignerMutex  sync.Mutex
	postSigner      httpsig.Signer
	postSignerMutex sync.Mutex
}

func New(client *http.Client, key crypto.PrivateKey, keyId *url.URL) (*HttpClient, error) {
	getSigner, _, err := httpsig.NewSigner(prefs, httpsig.DigestSha256, getHeaders, httpsig.Signature, 3600)
	if err != nil {
		return nil, err
	}

	postSigner, _, err := httpsig.NewSigner(prefs, httpsig.DigestSha256, postHeaders, httpsig.Signature, 3600)
	if err != nil {
		return nil, err
	}

	return &HttpClient{
		client:     client,
		key:        key,
		pubKeyId:   keyId,
		getSigner:  getSigner,
		postSigner: postSigner,
	}, nil
}

// Fetch dereferences uri into a protocol object. Failures carry their status
// classification in a *federation.FetchError; transport-level failures have a
// zero status code.
func (c *HttpClient) Fetch(ctx context.Context, uri string) (*federation.Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}

	c.getSignerMutex.Lock()
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	req.Header.Set("Accept", contentType)
	err = c.getSigner.SignRequest(c.key, c.pubKeyId.String(), req, nil)
	c.getSignerMutex.Unlock()
	if err != nil {
		log.Error().Err(err).Msg("error while signing request")
		return nil, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, &federation.FetchError{URL: uri, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		log.Warn().Str("uri", uri).Int("status", res.StatusCode).Bytes("response", body).Msg("fetch error")
		return nil, &federation.FetchError{StatusCode: res.StatusCode, URL: uri}
	}

	obj := &federation.Object{}
	if err := json.NewDecoder(res.Body).Decode(obj); err != nil {
		log.Error().Err(err).Str("uri", uri).Msg("response body unmarshaling error")
		return nil, &federation.FetchError{URL: uri, Err: err}
	}

	return obj, nil
}

// Deliver posts an activity document to a remote inbox. Remote 4xx and 5xx
// both surface as *federation.FetchError so the queue can classify retries.
func (c *HttpClient) Deliver(ctx context.Context, activity map[string]any, inbox string) error {
	body, err := json.Marshal(activity)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inbox, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	c.postSignerMutex.Lock()
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	err = c.postSigner.SignRequest(c.key, c.pubKeyId.String(), req, body)
	c.postSignerMutex.Unlock()
	if err != nil {
		return err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return &federation.FetchError{URL: inbox, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		log.Error().Int("code", res.StatusCode).Str("inbox", inbox).Bytes("response", body).Msg("delivery error")
		return &federation.FetchError{StatusCode: res.StatusCode, URL: inbox}
	}
	return nil
}
