package wire

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
)

// compressThreshold is spec.md 6's ">1 KiB" cutoff for zlib compression.
const compressThreshold = 1024

// ErrMessageDecode is returned for any malformed inbound message; the
// transport layer closes the offending session and logs at warn, per
// spec.md 7's MessageDecode error kind.
var ErrMessageDecode = errors.New("wire: malformed message")

// EncodeMessage serializes one or more packets into a single message: a
// 1-byte compressed flag, a varint packet count, then each packet as
// [type byte][varint payload length][payload]. Messages whose
// uncompressed body exceeds compressThreshold are zlib-compressed.
func EncodeMessage(packets []Packet) ([]byte, error) {
	var body bytes.Buffer
	if _, err := WriteVarInt(&body, int32(len(packets))); err != nil {
		return nil, err
	}
	for _, p := range packets {
		body.WriteByte(byte(p.Type))
		if _, err := WriteVarInt(&body, int32(len(p.Payload))); err != nil {
			return nil, err
		}
		body.Write(p.Payload)
	}

	if body.Len() <= compressThreshold {
		out := make([]byte, 0, body.Len()+1)
		out = append(out, 0)
		out = append(out, body.Bytes()...)
		return out, nil
	}

	var compressed bytes.Buffer
	compressed.WriteByte(1)
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(body.Bytes()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return compressed.Bytes(), nil
}

// DecodeMessage parses a message produced by EncodeMessage.
func DecodeMessage(data []byte) ([]Packet, error) {
	if len(data) < 1 {
		return nil, ErrMessageDecode
	}
	flag := data[0]
	body := data[1:]

	if flag == 1 {
		zr, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, errors.Join(ErrMessageDecode, err)
		}
		defer zr.Close()
		decompressed, err := io.ReadAll(zr)
		if err != nil {
			return nil, errors.Join(ErrMessageDecode, err)
		}
		body = decompressed
	} else if flag != 0 {
		return nil, ErrMessageDecode
	}

	r := bytes.NewReader(body)
	count, _, err := ReadVarInt(r)
	if err != nil || count < 0 {
		return nil, errors.Join(ErrMessageDecode, err)
	}

	packets := make([]Packet, 0, count)
	for i := int32(0); i < count; i++ {
		typeByte, err := r.ReadByte()
		if err != nil {
			return nil, errors.Join(ErrMessageDecode, err)
		}
		length, _, err := ReadVarInt(r)
		if err != nil || length < 0 {
			return nil, errors.Join(ErrMessageDecode, err)
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, errors.Join(ErrMessageDecode, err)
		}
		packets = append(packets, Packet{Type: Type(typeByte), Payload: payload})
	}

	return packets, nil
}
