// Package payload defines the tagged inputs accepted by entry scrapers.
//
// On the wire every payload is an envelope {"type": <tag>, "value": <shape>}.
// Decoding never guesses a variant from the value alone: the tag selects the
// variant, and a value that does not fit its tag decodes to Unknown.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matsen/entryscrape/internal/paper"
)

// Kind is a payload's type tag.
type Kind string

// Known payload tags. The values are shared with the host and must not change.
const (
	KindFile        Kind = "file"
	KindBibTeX      Kind = "bibtex"
	KindPaperEntity Kind = "paperEntity"
	KindWebContent  Kind = "webcontent"
)

// Payload is one candidate source of paper metadata.
// The concrete types in this package are the only implementations.
type Payload interface {
	Kind() Kind
	isPayload()
}

// File points at a file, either a bare path or a file:// URL.
type File struct {
	URL string
}

// BibTeX carries raw BibTeX text.
type BibTeX struct {
	Text string
}

// Entity carries an already-shaped paper entity as raw JSON fields, so that
// scrapers can check which fields are present.
type Entity struct {
	Fields map[string]json.RawMessage
}

// WebContent is a web page, optionally with its rendered document.
type WebContent struct {
	URL      string `json:"url"`
	Document string `json:"document"`
	Cookies  string `json:"cookies"`
}

// Unknown holds a payload with an unrecognized tag or a malformed value.
// No scraper accepts it.
type Unknown struct {
	Type  string
	Value json.RawMessage
}

func (File) Kind() Kind       { return KindFile }
func (BibTeX) Kind() Kind     { return KindBibTeX }
func (Entity) Kind() Kind     { return KindPaperEntity }
func (WebContent) Kind() Kind { return KindWebContent }
func (u Unknown) Kind() Kind  { return Kind(u.Type) }

func (File) isPayload()       {}
func (BibTeX) isPayload()     {}
func (Entity) isPayload()     {}
func (WebContent) isPayload() {}
func (Unknown) isPayload()    {}

// Has reports whether the entity payload carries the named field.
func (e Entity) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// envelope is the wire form of a payload.
type envelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Decode parses a single payload envelope. It fails only when data is not a
// JSON object; a value that does not match its tag yields Unknown.
func Decode(data []byte) (Payload, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}
	return fromEnvelope(env), nil
}

// DecodeBatch parses a JSON array of payload envelopes, keeping positions.
func DecodeBatch(data []byte) ([]Payload, error) {
	var envs []json.RawMessage
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, fmt.Errorf("parsing payload batch: %w", err)
	}

	payloads := make([]Payload, 0, len(envs))
	for _, raw := range envs {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// Not an object: keep the slot so output order still lines up.
			payloads = append(payloads, Unknown{Value: raw})
			continue
		}
		payloads = append(payloads, fromEnvelope(env))
	}
	return payloads, nil
}

func fromEnvelope(env envelope) Payload {
	unknown := Unknown{Type: env.Type, Value: env.Value}

	switch Kind(env.Type) {
	case KindFile:
		var s string
		if err := json.Unmarshal(env.Value, &s); err != nil {
			return unknown
		}
		return File{URL: s}
	case KindBibTeX:
		var s string
		if err := json.Unmarshal(env.Value, &s); err != nil {
			return unknown
		}
		return BibTeX{Text: s}
	case KindPaperEntity:
		if !isJSONObject(env.Value) {
			return unknown
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(env.Value, &fields); err != nil {
			return unknown
		}
		return Entity{Fields: fields}
	case KindWebContent:
		if !isJSONObject(env.Value) {
			return unknown
		}
		var wc WebContent
		if err := json.Unmarshal(env.Value, &wc); err != nil {
			return unknown
		}
		return wc
	}
	return unknown
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// Encode renders a payload as its wire envelope.
func Encode(p Payload) ([]byte, error) {
	var value any
	switch v := p.(type) {
	case File:
		value = v.URL
	case BibTeX:
		value = v.Text
	case Entity:
		value = v.Fields
	case WebContent:
		value = v
	case Unknown:
		value = v.Value
	default:
		return nil, fmt.Errorf("encoding payload: unsupported type %T", p)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding payload value: %w", err)
	}
	return json.Marshal(envelope{Type: string(p.Kind()), Value: raw})
}

// EncodeBatch renders payloads as a JSON array of envelopes.
func EncodeBatch(payloads []Payload) ([]byte, error) {
	envs := make([]json.RawMessage, 0, len(payloads))
	for _, p := range payloads {
		raw, err := Encode(p)
		if err != nil {
			return nil, err
		}
		envs = append(envs, raw)
	}
	return json.Marshal(envs)
}

// FromEntity builds a structured entity payload carrying every field of e.
func FromEntity(e *paper.Entity) (Entity, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Entity{}, fmt.Errorf("encoding entity: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Entity{}, fmt.Errorf("decoding entity fields: %w", err)
	}
	return Entity{Fields: fields}, nil
}

// Describe returns a short human label for logs.
func Describe(p Payload) string {
	switch v := p.(type) {
	case File:
		return "file:" + v.URL
	case BibTeX:
		return fmt.Sprintf("bibtex:%d bytes", len(v.Text))
	case Entity:
		var title string
		_ = json.Unmarshal(v.Fields["title"], &title)
		return "paperEntity:" + strings.TrimSpace(title)
	case WebContent:
		return "webcontent:" + v.URL
	case Unknown:
		return "unknown:" + v.Type
	}
	return fmt.Sprintf("%T", p)
}
