package ws

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Subprotocols a client may request. A connection without one speaks JSON.
const (
	SubprotocolJSON    = "hearts.v1+json"
	SubprotocolMsgpack = "hearts.v1+msgpack"
)

// Inbound is a decoded client message whose payload is bound lazily.
type Inbound struct {
	T      string
	raw    []byte
	decode func([]byte, any) error
}

// Bind decodes the payload into v. A message without payload leaves v untouched.
func (in Inbound) Bind(v any) error {
	if len(in.raw) == 0 || in.decode == nil {
		return nil
	}
	if err := in.decode(in.raw, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", in.T, err)
	}
	return nil
}

// Codec frames envelopes for one connection.
type Codec interface {
	// Name is the negotiated subprotocol.
	Name() string
	// MessageType is the websocket frame type used for outgoing messages.
	MessageType() int
	Encode(env Envelope) ([]byte, error)
	Decode(data []byte) (Inbound, error)
}

// CodecFor returns the codec for a negotiated subprotocol.
func CodecFor(subprotocol string) (Codec, error) {
	switch subprotocol {
	case "", SubprotocolJSON:
		return JSONCodec{}, nil
	case SubprotocolMsgpack:
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, subprotocol)
	}
}

// JSONCodec speaks text frames of JSON.
type JSONCodec struct{}

type jsonInEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

func (JSONCodec) Name() string     { return SubprotocolJSON }
func (JSONCodec) MessageType() int { return websocket.TextMessage }

func (JSONCodec) Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

func (JSONCodec) Decode(data []byte) (Inbound, error) {
	var env jsonInEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Inbound{}, fmt.Errorf("decoding envelope: %w", err)
	}
	return Inbound{T: env.T, raw: env.D, decode: json.Unmarshal}, nil
}

// MsgpackCodec speaks binary frames of msgpack. Field names follow the json
// tags so both codecs share one schema.
type MsgpackCodec struct{}

type msgpackInEnvelope struct {
	T string             `json:"t"`
	D msgpack.RawMessage `json:"d,omitempty"`
}

func (MsgpackCodec) Name() string     { return SubprotocolMsgpack }
func (MsgpackCodec) MessageType() int { return websocket.BinaryMessage }

func (MsgpackCodec) Encode(env Envelope) ([]byte, error) {
	return MarshalMsgpack(env)
}

func (MsgpackCodec) Decode(data []byte) (Inbound, error) {
	var env msgpackInEnvelope
	if err := UnmarshalMsgpack(data, &env); err != nil {
		return Inbound{}, fmt.Errorf("decoding envelope: %w", err)
	}
	return Inbound{T: env.T, raw: env.D, decode: UnmarshalMsgpack}, nil
}

// MarshalMsgpack encodes v using json field names.
func MarshalMsgpack(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalMsgpack decodes data into v using json field names.
func UnmarshalMsgpack(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
