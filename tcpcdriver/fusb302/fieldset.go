package fusb302

import "fmt"

// FieldSet is an in-memory copy of the content of a single register. Fields
// are read and written on the copy; Write transfers the copy to the chip.
//
// Accessors take one of the package's field variables and panic if given a
// Field that does not fit the register.
type FieldSet struct {
	reg  *Register
	bits [RegisterBytes]byte
}

// NewFieldSet returns an all zero field set for register r.
func NewFieldSet(r *Register) FieldSet {
	return FieldSet{reg: r}
}

// FieldSetFromBytes returns a field set for register r holding b. ErrLength
// is returned if b is not exactly as wide as the register.
func FieldSetFromBytes(r *Register, b []byte) (FieldSet, error) {
	s := FieldSet{reg: r}
	if len(b) != len(s.bits) {
		return s, fmt.Errorf("%w: %s is %d bytes, got %d", ErrLength, r.Name, len(s.bits), len(b))
	}
	copy(s.bits[:], b)
	return s, nil
}

// Register returns the register the field set belongs to.
func (s FieldSet) Register() *Register {
	return s.reg
}

// Bytes returns the raw register content.
func (s FieldSet) Bytes() []byte {
	b := s.bits
	return b[:]
}

// Raw returns the raw register value.
func (s FieldSet) Raw() uint8 {
	return s.bits[0]
}

func (s FieldSet) load(f Field) uint8 {
	v, err := loadBits(s.bits[:], uint(f.Pos), uint(f.Width))
	if err != nil {
		panic("fusb302: field " + f.Name + " does not fit register")
	}
	return uint8(v)
}

func (s *FieldSet) store(f Field, v uint8) {
	if err := storeBits(s.bits[:], uint(f.Pos), uint(f.Width), uint32(v)); err != nil {
		panic("fusb302: field " + f.Name + " does not fit register")
	}
}

// Bool returns the value of a single bit field.
func (s FieldSet) Bool(f Field) bool {
	return s.load(f) != 0
}

// SetBool sets the value of a single bit field.
func (s *FieldSet) SetBool(f Field, v bool) {
	var b uint8
	if v {
		b = 1
	}
	s.store(f, b)
}

// Uint returns the raw value of a field.
func (s FieldSet) Uint(f Field) uint8 {
	return s.load(f)
}

// SetUint sets the raw value of a field. Bits of v beyond the field width are
// dropped.
func (s *FieldSet) SetUint(f Field, v uint8) {
	s.store(f, v)
}

// Enum returns the value of an enumerated field. A *ConversionError is
// returned if the register holds a code the field does not define.
func (s FieldSet) Enum(f Field) (uint8, error) {
	v := s.load(f)
	if !f.valid(v) {
		return v, &ConversionError{Field: f.Name, Value: v}
	}
	return v, nil
}

// GetEnum returns the value of an enumerated field as type T.
//
//	lvl, err := GetEnum[BCLevel](s, Status0BCLvl)
func GetEnum[T ~uint8](s FieldSet, f Field) (T, error) {
	v, err := s.Enum(f)
	return T(v), err
}

// SetEnum sets the value of an enumerated field.
func SetEnum[T ~uint8](s *FieldSet, f Field, v T) {
	s.store(f, uint8(v))
}
