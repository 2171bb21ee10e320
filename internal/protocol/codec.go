package protocol

import (
	"errors"
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// ErrDecode wraps every malformed-payload failure. It is fatal for the
// connection that produced the payload and harmless to everything else.
var ErrDecode = errors.New("malformed wire payload")

// EncodeCommand serializes a command into one wire frame.
func EncodeCommand(c Command) ([]byte, error) {
	switch c := c.(type) {
	case *Connect:
		o := msgp.AppendMapHeader(nil, 2)
		o = appendField(o, "type", TagConnect)
		o = appendField(o, "name", c.Name)
		return o, nil
	case *Move:
		o := msgp.AppendMapHeader(nil, 3)
		o = appendField(o, "type", TagMove)
		o = msgp.AppendString(o, "cell")
		o = msgp.AppendUint32(o, c.Cell)
		o = appendField(o, "name", c.Name)
		return o, nil
	case *Reset:
		o := msgp.AppendMapHeader(nil, 1)
		o = appendField(o, "type", TagReset)
		return o, nil
	default:
		return nil, fmt.Errorf("protocol: unknown command type %T", c)
	}
}

// DecodeCommand parses one wire frame into a command variant.
func DecodeCommand(data []byte) (Command, error) {
	f, err := readFields(data)
	if err != nil {
		return nil, err
	}
	switch f.tag {
	case TagConnect:
		return &Connect{Name: f.name}, nil
	case TagMove:
		return &Move{Cell: f.cell, Name: f.name}, nil
	case TagReset:
		return &Reset{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown command tag %q", ErrDecode, f.tag)
	}
}

// EncodeResponse serializes a response into one wire frame.
func EncodeResponse(r Response) ([]byte, error) {
	switch r := r.(type) {
	case *Ok:
		o := msgp.AppendMapHeader(nil, 2)
		o = appendField(o, "type", TagOk)
		o = appendField(o, "addr", r.Addr)
		return o, nil
	case *Fail:
		o := msgp.AppendMapHeader(nil, 3)
		o = appendField(o, "type", TagFail)
		o = appendField(o, "message", r.Message)
		o = appendField(o, "addr", r.Addr)
		return o, nil
	case *MoveMade:
		o := msgp.AppendMapHeader(nil, 4)
		o = appendField(o, "type", TagMove)
		o = msgp.AppendString(o, "cell")
		o = msgp.AppendUint32(o, r.Cell)
		o = msgp.AppendString(o, "color")
		o = msgp.AppendUint8(o, r.Color)
		o = appendField(o, "winner", r.Winner)
		return o, nil
	case *ResetDone:
		o := msgp.AppendMapHeader(nil, 1)
		o = appendField(o, "type", TagReset)
		return o, nil
	default:
		return nil, fmt.Errorf("protocol: unknown response type %T", r)
	}
}

// DecodeResponse parses one wire frame into a response variant.
func DecodeResponse(data []byte) (Response, error) {
	f, err := readFields(data)
	if err != nil {
		return nil, err
	}
	switch f.tag {
	case TagOk:
		return &Ok{Addr: f.addr}, nil
	case TagFail:
		return &Fail{Message: f.message, Addr: f.addr}, nil
	case TagMove:
		return &MoveMade{Cell: f.cell, Color: f.color, Winner: f.winner}, nil
	case TagReset:
		return &ResetDone{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown response tag %q", ErrDecode, f.tag)
	}
}

func appendField(o []byte, key, value string) []byte {
	o = msgp.AppendString(o, key)
	return msgp.AppendString(o, value)
}

// fields is the union of every field any variant can carry.
type fields struct {
	tag     string
	name    string
	addr    string
	message string
	winner  string
	cell    uint32
	color   uint8
}

// readFields walks the top-level msgpack map once, collecting known keys
// and skipping unknown ones, so field order on the wire does not matter.
func readFields(data []byte) (*fields, error) {
	sz, o, err := msgp.ReadMapHeaderBytes(data)
	if err != nil {
		return nil, decodeErr(err)
	}

	var f fields
	for i := uint32(0); i < sz; i++ {
		key, rest, err := msgp.ReadMapKeyZC(o)
		if err != nil {
			return nil, decodeErr(err)
		}
		o = rest

		switch string(key) {
		case "type":
			f.tag, o, err = msgp.ReadStringBytes(o)
		case "name":
			f.name, o, err = msgp.ReadStringBytes(o)
		case "addr":
			f.addr, o, err = msgp.ReadStringBytes(o)
		case "message":
			f.message, o, err = msgp.ReadStringBytes(o)
		case "winner":
			f.winner, o, err = msgp.ReadStringBytes(o)
		case "cell":
			f.cell, o, err = msgp.ReadUint32Bytes(o)
		case "color":
			f.color, o, err = msgp.ReadUint8Bytes(o)
		default:
			o, err = msgp.Skip(o)
		}
		if err != nil {
			return nil, decodeErr(err)
		}
	}

	if f.tag == "" {
		return nil, fmt.Errorf("%w: missing type tag", ErrDecode)
	}
	return &f, nil
}

func decodeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrDecode, err)
}
