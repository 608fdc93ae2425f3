package tendermint

import (
	"github.com/MariusVanDerWijden/ibc-lc/exported"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

// ErrDecode is wrapped by every client message decoding failure.
var ErrDecode = errors.New("invalid client message encoding")

// Field numbers of
//
//	message Header {
//	  SignedHeader signed_header = 1;
//	  ValidatorSet validator_set = 2;
//	  Height trusted_height = 3;
//	  ValidatorSet trusted_validators = 4;
//	}
//	message Height { uint64 revision_number = 1; uint64 revision_height = 2; }
//	message Misbehaviour { Header header_a = 1; Header header_b = 2; }
const (
	signedHeaderField      = 1
	validatorSetField      = 2
	trustedHeightField     = 3
	trustedValidatorsField = 4

	revisionNumberField = 1
	revisionHeightField = 2

	headerAField = 1
	headerBField = 2
)

func encodeBytes(buf *proto.Buffer, field uint64, b []byte) error {
	if err := buf.EncodeVarint(field<<3 | proto.WireBytes); err != nil {
		return err
	}
	return buf.EncodeRawBytes(b)
}

func encodeUint(buf *proto.Buffer, field, v uint64) error {
	if v == 0 {
		return nil
	}
	if err := buf.EncodeVarint(field<<3 | proto.WireVarint); err != nil {
		return err
	}
	return buf.EncodeVarint(v)
}

// walkFields calls fn for every field of a protobuf message. Varint fields
// pass their value in v, length delimited fields their payload in b.
func walkFields(data []byte, fn func(field uint64, wire int, v uint64, b []byte) error) error {
	for len(data) > 0 {
		tag, n := proto.DecodeVarint(data)
		if n == 0 {
			return errors.Wrap(ErrDecode, "truncated tag")
		}
		data = data[n:]
		field, wire := tag>>3, int(tag&7)
		switch wire {
		case proto.WireVarint:
			v, n := proto.DecodeVarint(data)
			if n == 0 {
				return errors.Wrapf(ErrDecode, "truncated field %d", field)
			}
			data = data[n:]
			if err := fn(field, wire, v, nil); err != nil {
				return err
			}
		case proto.WireBytes:
			length, n := proto.DecodeVarint(data)
			if n == 0 || uint64(len(data)-n) < length {
				return errors.Wrapf(ErrDecode, "truncated field %d", field)
			}
			data = data[n:]
			if err := fn(field, wire, 0, data[:length]); err != nil {
				return err
			}
			data = data[length:]
		default:
			return errors.Wrapf(ErrDecode, "field %d has unsupported wire type %d", field, wire)
		}
	}
	return nil
}

func expectWire(field uint64, wire, want int) error {
	if wire != want {
		return errors.Wrapf(ErrDecode, "field %d has wire type %d, want %d", field, wire, want)
	}
	return nil
}

func marshalValidatorSet(vals *tmtypes.ValidatorSet) ([]byte, error) {
	pb, err := vals.ToProto()
	if err != nil {
		return nil, err
	}
	return pb.Marshal()
}

func unmarshalValidatorSet(b []byte) (*tmtypes.ValidatorSet, error) {
	var pb tmproto.ValidatorSet
	if err := pb.Unmarshal(b); err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}
	vals, err := tmtypes.ValidatorSetFromProto(&pb)
	if err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}
	return vals, nil
}

// Marshal encodes the header as the protobuf Header message.
func (h *Header) Marshal() ([]byte, error) {
	if h.SignedHeader == nil || h.ValidatorSet == nil || h.TrustedValidators == nil {
		return nil, errors.Wrap(exported.ErrInvalidClientMessage, "incomplete header")
	}
	buf := proto.NewBuffer(nil)
	sh, err := h.SignedHeader.ToProto().Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "signed header")
	}
	if err := encodeBytes(buf, signedHeaderField, sh); err != nil {
		return nil, err
	}
	vals, err := marshalValidatorSet(h.ValidatorSet)
	if err != nil {
		return nil, errors.Wrap(err, "validator set")
	}
	if err := encodeBytes(buf, validatorSetField, vals); err != nil {
		return nil, err
	}
	height := proto.NewBuffer(nil)
	if err := encodeUint(height, revisionNumberField, h.TrustedHeight.RevisionNumber); err != nil {
		return nil, err
	}
	if err := encodeUint(height, revisionHeightField, h.TrustedHeight.RevisionHeight); err != nil {
		return nil, err
	}
	if err := encodeBytes(buf, trustedHeightField, height.Bytes()); err != nil {
		return nil, err
	}
	trusted, err := marshalValidatorSet(h.TrustedValidators)
	if err != nil {
		return nil, errors.Wrap(err, "trusted validators")
	}
	if err := encodeBytes(buf, trustedValidatorsField, trusted); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *Header) Unmarshal(data []byte) error {
	var dec Header
	err := walkFields(data, func(field uint64, wire int, _ uint64, b []byte) error {
		if err := expectWire(field, wire, proto.WireBytes); err != nil {
			return err
		}
		switch field {
		case signedHeaderField:
			var pb tmproto.SignedHeader
			if err := pb.Unmarshal(b); err != nil {
				return errors.Wrap(ErrDecode, err.Error())
			}
			sh, err := tmtypes.SignedHeaderFromProto(&pb)
			if err != nil {
				return errors.Wrap(ErrDecode, err.Error())
			}
			dec.SignedHeader = sh
		case validatorSetField:
			vals, err := unmarshalValidatorSet(b)
			if err != nil {
				return errors.Wrap(err, "validator set")
			}
			dec.ValidatorSet = vals
		case trustedHeightField:
			return walkFields(b, func(field uint64, wire int, v uint64, _ []byte) error {
				if err := expectWire(field, wire, proto.WireVarint); err != nil {
					return err
				}
				switch field {
				case revisionNumberField:
					dec.TrustedHeight.RevisionNumber = v
				case revisionHeightField:
					dec.TrustedHeight.RevisionHeight = v
				}
				return nil
			})
		case trustedValidatorsField:
			vals, err := unmarshalValidatorSet(b)
			if err != nil {
				return errors.Wrap(err, "trusted validators")
			}
			dec.TrustedValidators = vals
		}
		return nil
	})
	if err != nil {
		return err
	}
	*h = dec
	return nil
}

// DecodeHeader decodes a protobuf Header and rejects one with missing
// parts.
func DecodeHeader(data []byte) (*Header, error) {
	var h Header
	if err := h.Unmarshal(data); err != nil {
		return nil, err
	}
	if h.SignedHeader == nil || h.ValidatorSet == nil || h.TrustedValidators == nil {
		return nil, errors.Wrap(ErrDecode, "incomplete header")
	}
	return &h, nil
}

// Marshal encodes the misbehaviour as the protobuf Misbehaviour message.
func (m *Misbehaviour) Marshal() ([]byte, error) {
	if m.HeaderA == nil || m.HeaderB == nil {
		return nil, errors.Wrap(exported.ErrInvalidClientMessage, "missing misbehaviour header")
	}
	buf := proto.NewBuffer(nil)
	a, err := m.HeaderA.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "header a")
	}
	if err := encodeBytes(buf, headerAField, a); err != nil {
		return nil, err
	}
	b, err := m.HeaderB.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "header b")
	}
	if err := encodeBytes(buf, headerBField, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMisbehaviour decodes a protobuf Misbehaviour carrying both headers.
func DecodeMisbehaviour(data []byte) (*Misbehaviour, error) {
	var m Misbehaviour
	err := walkFields(data, func(field uint64, wire int, _ uint64, b []byte) error {
		if err := expectWire(field, wire, proto.WireBytes); err != nil {
			return err
		}
		switch field {
		case headerAField:
			h, err := DecodeHeader(b)
			if err != nil {
				return errors.Wrap(err, "header a")
			}
			m.HeaderA = h
		case headerBField:
			h, err := DecodeHeader(b)
			if err != nil {
				return errors.Wrap(err, "header b")
			}
			m.HeaderB = h
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if m.HeaderA == nil || m.HeaderB == nil {
		return nil, errors.Wrap(ErrDecode, "missing misbehaviour header")
	}
	return &m, nil
}
