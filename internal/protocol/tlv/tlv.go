package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const HeaderLen = 7

var (
	ErrShortFieldHeader = errors.New("tlv: short field header")
	ErrShortFieldValue  = errors.New("tlv: short field value")
	ErrNotInteger       = errors.New("tlv: field is not an integer")
	ErrIntOverflow      = errors.New("tlv: integer does not fit in int32")
)

// Type IDs from tlv contract.
const (
	TypeU8    uint8 = 1
	TypeU16   uint8 = 2
	TypeU32   uint8 = 3
	TypeI8    uint8 = 8
	TypeI16   uint8 = 9
	TypeI32   uint8 = 10
	TypeI64   uint8 = 11
	TypeBytes uint8 = 7
)

// Field is one decoded TLV field.
type Field struct {
	ID    uint16
	Type  uint8
	Value []byte
}

// NewInt32 creates a signed 32-bit field.
func NewInt32(id uint16, v int32) Field {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(v))
	return Field{ID: id, Type: TypeI32, Value: buf}
}

// NewInt64 creates a signed 64-bit field.
func NewInt64(id uint16, v int64) Field {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return Field{ID: id, Type: TypeI64, Value: buf}
}

// NewUint8 creates an unsigned 8-bit field.
func NewUint8(id uint16, v uint8) Field {
	return Field{ID: id, Type: TypeU8, Value: []byte{v}}
}

// Int returns any integer-typed field as int32. Values that cannot be
// represented fail with ErrIntOverflow.
func (f Field) Int() (int32, error) {
	var v int64
	switch f.Type {
	case TypeU8, TypeI8:
		if len(f.Value) != 1 {
			return 0, invalidLength(f)
		}
		if f.Type == TypeU8 {
			v = int64(f.Value[0])
		} else {
			v = int64(int8(f.Value[0]))
		}
	case TypeU16, TypeI16:
		if len(f.Value) != 2 {
			return 0, invalidLength(f)
		}
		raw := binary.BigEndian.Uint16(f.Value)
		if f.Type == TypeU16 {
			v = int64(raw)
		} else {
			v = int64(int16(raw))
		}
	case TypeU32, TypeI32:
		if len(f.Value) != 4 {
			return 0, invalidLength(f)
		}
		raw := binary.BigEndian.Uint32(f.Value)
		if f.Type == TypeU32 {
			v = int64(raw)
		} else {
			v = int64(int32(raw))
		}
	case TypeI64:
		if len(f.Value) != 8 {
			return 0, invalidLength(f)
		}
		v = int64(binary.BigEndian.Uint64(f.Value))
	default:
		return 0, fmt.Errorf("%w: field %d type %d", ErrNotInteger, f.ID, f.Type)
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: field %d value %d", ErrIntOverflow, f.ID, v)
	}
	return int32(v), nil
}

// IsInteger reports whether t is one of the integer type ids.
func IsInteger(t uint8) bool {
	switch t {
	case TypeU8, TypeU16, TypeU32, TypeI8, TypeI16, TypeI32, TypeI64:
		return true
	default:
		return false
	}
}

func EncodeField(f Field) []byte {
	buf := make([]byte, HeaderLen+len(f.Value))
	binary.BigEndian.PutUint16(buf[0:2], f.ID)
	buf[2] = f.Type
	binary.BigEndian.PutUint32(buf[3:7], uint32(len(f.Value)))
	copy(buf[7:], f.Value)
	return buf
}

func DecodeFields(payload []byte) ([]Field, error) {
	fields := make([]Field, 0)
	i := 0
	for i < len(payload) {
		if len(payload)-i < HeaderLen {
			return nil, ErrShortFieldHeader
		}
		id := binary.BigEndian.Uint16(payload[i : i+2])
		typeID := payload[i+2]
		l := binary.BigEndian.Uint32(payload[i+3 : i+7])
		i += HeaderLen
		if uint32(len(payload)-i) < l {
			return nil, ErrShortFieldValue
		}
		val := make([]byte, l)
		copy(val, payload[i:i+int(l)])
		i += int(l)
		fields = append(fields, Field{ID: id, Type: typeID, Value: val})
	}
	return fields, nil
}

func EncodeFields(fields []Field) []byte {
	out := make([]byte, 0)
	for _, f := range fields {
		out = append(out, EncodeField(f)...)
	}
	return out
}

func GetField(fields []Field, id uint16) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

func invalidLength(f Field) error {
	return fmt.Errorf("tlv: field %d invalid length %d for type %d", f.ID, len(f.Value), f.Type)
}
