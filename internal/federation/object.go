// Package federation defines the wire-level object model shared by the
// resolver, the ingestion pipeline and the activity kernel: a tagged
// representation of ActivityStreams documents as real servers send them,
// where most reference fields may be a bare IRI, an embedded object, or a
// list of either.
package federation

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/idna"
)

// PublicCollection is the well-known addressing sentinel meaning "everyone".
const PublicCollection = "https://www.w3.org/ns/activitystreams#Public"

// Object is a single federated document. Which fields are meaningful depends
// on Type; the predicates in types.go discriminate the variants.
type Object struct {
	Type         string  `json:"type"`
	ID           string  `json:"id,omitempty"`
	AttributedTo Refs    `json:"attributedTo,omitempty"`
	To           Refs    `json:"to,omitempty"`
	CC           Refs    `json:"cc,omitempty"`
	Content      string  `json:"content,omitempty"`
	Summary      string  `json:"summary,omitempty"`
	Name         string  `json:"name,omitempty"`
	Attachment   Objects `json:"attachment,omitempty"`
	Tag          Objects `json:"tag,omitempty"`
	InReplyTo    Refs    `json:"inReplyTo,omitempty"`
	Published    string  `json:"published,omitempty"`
	Updated      string  `json:"updated,omitempty"`
	Sensitive    bool    `json:"sensitive,omitempty"`
	MediaType    string  `json:"mediaType,omitempty"`
	URL          Refs    `json:"url,omitempty"`
	Icon         Objects `json:"icon,omitempty"`

	// Activity fields.
	Actor  Refs `json:"actor,omitempty"`
	Object Refs `json:"object,omitempty"`
	Target Refs `json:"target,omitempty"`

	// Actor profile fields.
	PreferredUsername string     `json:"preferredUsername,omitempty"`
	Inbox             string     `json:"inbox,omitempty"`
	SharedInbox       string     `json:"sharedInbox,omitempty"`
	Endpoints         *Endpoints `json:"endpoints,omitempty"`
	Followers         string     `json:"followers,omitempty"`
	PublicKey         *PublicKey `json:"publicKey,omitempty"`

	// Tombstone fields.
	FormerType string `json:"formerType,omitempty"`
	Deleted    string `json:"deleted,omitempty"`

	// Question fields.
	OneOf   Objects `json:"oneOf,omitempty"`
	AnyOf   Objects `json:"anyOf,omitempty"`
	EndTime string  `json:"endTime,omitempty"`
	Closed  string  `json:"closed,omitempty"`

	// Misskey-compatible extensions.
	Quote      string `json:"_misskey_quote,omitempty"`
	RawContent string `json:"_misskey_content,omitempty"`
	Reaction   string `json:"_misskey_reaction,omitempty"`
	Votes      int64  `json:"_misskey_votes,omitempty"`
}

type Endpoints struct {
	SharedInbox string `json:"sharedInbox,omitempty"`
}

type PublicKey struct {
	ID           string `json:"id,omitempty"`
	Owner        string `json:"owner,omitempty"`
	PublicKeyPem string `json:"publicKeyPem,omitempty"`
}

// CanonicalID returns the object's identity URI. Absence of an id is a
// validation failure, never a silent default.
func (o *Object) CanonicalID() (string, error) {
	if o == nil || o.ID == "" {
		return "", fmt.Errorf("%w: cannot determine id", ErrInvalidObject)
	}
	return o.ID, nil
}

// SharedInboxURI prefers the LD endpoints form over the bare property.
func (o *Object) SharedInboxURI() string {
	if o.Endpoints != nil && o.Endpoints.SharedInbox != "" {
		return o.Endpoints.SharedInbox
	}
	return o.SharedInbox
}

// Ref is one slot in a reference-valued field: either a bare IRI or an
// embedded object.
type Ref struct {
	IRI      string
	Embedded *Object
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = trimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &r.IRI)
	}
	r.Embedded = &Object{}
	return json.Unmarshal(b, r.Embedded)
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Embedded != nil {
		return json.Marshal(r.Embedded)
	}
	return json.Marshal(r.IRI)
}

// ID returns the reference's identity: the IRI itself, or the embedded
// object's id.
func (r Ref) ID() (string, error) {
	if r.IRI != "" {
		return r.IRI, nil
	}
	return r.Embedded.CanonicalID()
}

func (r Ref) IsZero() bool { return r.IRI == "" && r.Embedded == nil }

// Refs is a reference-valued field. On the wire it may appear as a single
// IRI, a single embedded object, or an ordered list of either.
type Refs []Ref

func (rs *Refs) UnmarshalJSON(b []byte) error {
	b = trimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '[' {
		type alias Refs
		return json.Unmarshal(b, (*alias)(rs))
	}
	var one Ref
	if err := one.UnmarshalJSON(b); err != nil {
		return err
	}
	*rs = Refs{one}
	return nil
}

func (rs Refs) MarshalJSON() ([]byte, error) {
	if len(rs) == 1 {
		return rs[0].MarshalJSON()
	}
	type alias Refs
	return json.Marshal(alias(rs))
}

// First returns the first reference, mirroring the convention that
// single-valued use of these fields takes the head of the list.
func (rs Refs) First() (Ref, bool) {
	if len(rs) == 0 {
		return Ref{}, false
	}
	return rs[0], true
}

// FirstID returns the identity of the first reference.
func (rs Refs) FirstID() (string, error) {
	first, ok := rs.First()
	if !ok {
		return "", fmt.Errorf("%w: empty reference", ErrInvalidObject)
	}
	return first.ID()
}

// IDs returns every derivable identity in order. Entries without a derivable
// id are skipped, so an absent field is an empty slice, never a nil panic.
func (rs Refs) IDs() []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		if id, err := r.ID(); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Objects is an object-valued field that may appear as a single embedded
// object or a list of them. Bare IRIs in such positions are dropped.
type Objects []*Object

func (os *Objects) UnmarshalJSON(b []byte) error {
	b = trimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		for _, item := range raw {
			item = trimSpace(item)
			if len(item) == 0 || item[0] != '{' {
				continue
			}
			o := &Object{}
			if err := json.Unmarshal(item, o); err != nil {
				return err
			}
			*os = append(*os, o)
		}
		return nil
	}
	if b[0] != '{' {
		return nil
	}
	o := &Object{}
	if err := json.Unmarshal(b, o); err != nil {
		return err
	}
	*os = Objects{o}
	return nil
}

// ObjectHost extracts the lowercased, punycode-decoded host of a URI, the
// form used for all same-origin comparisons.
func ObjectHost(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if decoded, err := idna.ToUnicode(host); err == nil {
		return decoded
	}
	return host
}

// ParseTime parses the timestamp formats seen in the wild; ok is false when
// the value is absent or unparseable.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", time.RFC1123} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func trimSpace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t' || b[0] == '\n' || b[0] == '\r') {
		b = b[1:]
	}
	return b
}
