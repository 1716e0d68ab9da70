package fusb302

import "fmt"

// Read reads register r in a single bus transaction.
func (f *FUSB302) Read(r *Register) (FieldSet, error) {
	if !r.Access.CanRead() {
		return FieldSet{}, fmt.Errorf("%w: read of %s register %s", ErrNotSupported, r.Access, r.Name)
	}
	f.reg[0] = r.Addr
	if err := f.port.Tx(f.addr, f.reg[:1], f.reg[1:]); err != nil {
		return FieldSet{}, &BusError{Op: "read", Addr: r.Addr, Err: err}
	}
	return FieldSetFromBytes(r, f.reg[1:])
}

// Write writes s to register r in a single bus transaction.
func (f *FUSB302) Write(r *Register, s FieldSet) error {
	if !r.Access.CanWrite() {
		return fmt.Errorf("%w: write of %s register %s", ErrNotSupported, r.Access, r.Name)
	}
	if s.reg != r {
		return fmt.Errorf("%w: field set of %s written to %s", ErrNotSupported, s.reg.nameOrNil(), r.Name)
	}
	f.reg[0] = r.Addr
	copy(f.reg[1:], s.bits[:])
	if err := f.port.Tx(f.addr, f.reg[:], nil); err != nil {
		return &BusError{Op: "write", Addr: r.Addr, Err: err}
	}
	return nil
}

// Modify reads register r, applies fn to its content and writes it back. The
// sequence is not atomic: changes made by the chip between the read and the
// write, such as newly raised bits, are overwritten.
func (f *FUSB302) Modify(r *Register, fn func(*FieldSet)) error {
	s, err := f.Read(r)
	if err != nil {
		return err
	}
	fn(&s)
	return f.Write(r, s)
}

// set writes register r with fn applied to an all zero field set.
func (f *FUSB302) set(r *Register, fn func(*FieldSet)) error {
	s := NewFieldSet(r)
	fn(&s)
	return f.Write(r, s)
}

// ack clears a single interrupt bit. Errors are dropped since an ack is only
// ever issued on the way to reporting another outcome.
func (f *FUSB302) ack(r *Register, bit Field) {
	_ = f.set(r, func(s *FieldSet) { s.SetBool(bit, true) })
}

func (r *Register) nameOrNil() string {
	if r == nil {
		return "<nil>"
	}
	return r.Name
}
