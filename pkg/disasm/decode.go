// Package disasm decodes the bytecode of Code attributes and prints
// javap-style listings.
package disasm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrTruncated indicates an instruction whose operands run past the end of the code.
	ErrTruncated = errors.New("disasm: truncated instruction")
	// ErrUnknownOpcode indicates a byte that is not a defined opcode.
	ErrUnknownOpcode = errors.New("disasm: unknown opcode")
	// ErrInvalidWide indicates wide applied to an opcode it cannot modify.
	ErrInvalidWide = errors.New("disasm: invalid wide instruction")
	// ErrInvalidSwitch indicates a tableswitch with high < low or a negative npairs.
	ErrInvalidSwitch = errors.New("disasm: invalid switch")
)

// Instruction is one decoded instruction.
type Instruction struct {
	PC     int
	Opcode Opcode
	// Wide is set when the instruction was prefixed by wide. PC then points
	// at the wide prefix and Length includes it.
	Wide   bool
	Length int

	// Index is the local variable index or constant pool index operand.
	Index int
	// Value holds the immediate of bipush, sipush and iinc, the array type of
	// newarray, the count of invokeinterface and the dimensions of
	// multianewarray.
	Value int32
	// Target is the absolute branch target for branch instructions.
	Target int
	// Switch is set for tableswitch and lookupswitch.
	Switch *Switch
}

// Switch holds the jump table of a tableswitch or lookupswitch. Targets are
// absolute pcs; Keys[i] jumps to Targets[i].
type Switch struct {
	Default int
	Keys    []int32
	Targets []int
}

// HasConstant reports whether Index refers to the constant pool.
func (ins Instruction) HasConstant() bool {
	switch opcodes[ins.Opcode].kind {
	case operandConst1, operandConst2, operandInvokeInterface, operandInvokeDynamic, operandMultianewarray:
		return true
	}
	return false
}

// IsBranch reports whether Target is meaningful.
func (ins Instruction) IsBranch() bool {
	k := opcodes[ins.Opcode].kind
	return k == operandBranch2 || k == operandBranch4
}

// codeReader walks a method body, keeping pc relative to the start of code.
type codeReader struct {
	code []byte
	pc   int
}

func (r *codeReader) need(n int) error {
	if r.pc+n > len(r.code) {
		return fmt.Errorf("need %d bytes at pc %d, have %d: %w", n, r.pc, len(r.code)-r.pc, ErrTruncated)
	}
	return nil
}

func (r *codeReader) u1() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.code[r.pc]
	r.pc++
	return v, nil
}

func (r *codeReader) u2() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.code[r.pc:])
	r.pc += 2
	return v, nil
}

func (r *codeReader) s4() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(r.code[r.pc:]))
	r.pc += 4
	return v, nil
}

// Decode decodes a complete Code attribute body into instructions.
func Decode(code []byte) ([]Instruction, error) {
	r := &codeReader{code: code}
	var out []Instruction
	for r.pc < len(code) {
		ins, err := decodeOne(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ins)
	}
	return out, nil
}

func decodeOne(r *codeReader) (Instruction, error) {
	start := r.pc
	b, _ := r.u1()
	ins := Instruction{PC: start, Opcode: Opcode(b)}
	if !ins.Opcode.Valid() {
		return ins, fmt.Errorf("0x%02X at pc %d: %w", b, start, ErrUnknownOpcode)
	}

	if err := decodeOperands(r, &ins); err != nil {
		return ins, fmt.Errorf("%s at pc %d: %w", ins.Opcode, start, err)
	}
	ins.Length = r.pc - start
	return ins, nil
}

func decodeOperands(r *codeReader, ins *Instruction) error {
	switch opcodes[ins.Opcode].kind {
	case operandNone:
		return nil

	case operandLocal, operandNewarray, operandConst1:
		v, err := r.u1()
		if err != nil {
			return err
		}
		if ins.Opcode == OpNewarray {
			ins.Value = int32(v)
		} else {
			ins.Index = int(v)
		}

	case operandByte:
		v, err := r.u1()
		if err != nil {
			return err
		}
		ins.Value = int32(int8(v))

	case operandShort:
		v, err := r.u2()
		if err != nil {
			return err
		}
		ins.Value = int32(int16(v))

	case operandConst2:
		v, err := r.u2()
		if err != nil {
			return err
		}
		ins.Index = int(v)

	case operandBranch2:
		v, err := r.u2()
		if err != nil {
			return err
		}
		ins.Target = ins.PC + int(int16(v))

	case operandBranch4:
		v, err := r.s4()
		if err != nil {
			return err
		}
		ins.Target = ins.PC + int(v)

	case operandIinc:
		idx, err := r.u1()
		if err != nil {
			return err
		}
		inc, err := r.u1()
		if err != nil {
			return err
		}
		ins.Index = int(idx)
		ins.Value = int32(int8(inc))

	case operandInvokeInterface:
		if err := r.need(4); err != nil {
			return err
		}
		idx, _ := r.u2()
		count, _ := r.u1()
		r.pc++ // always zero
		ins.Index = int(idx)
		ins.Value = int32(count)

	case operandInvokeDynamic:
		if err := r.need(4); err != nil {
			return err
		}
		idx, _ := r.u2()
		r.pc += 2
		ins.Index = int(idx)

	case operandMultianewarray:
		if err := r.need(3); err != nil {
			return err
		}
		idx, _ := r.u2()
		dims, _ := r.u1()
		ins.Index = int(idx)
		ins.Value = int32(dims)

	case operandTableswitch:
		return decodeTableswitch(r, ins)

	case operandLookupswitch:
		return decodeLookupswitch(r, ins)

	case operandWide:
		return decodeWide(r, ins)
	}
	return nil
}

// alignSwitch skips the 0-3 padding bytes that put the switch operands on a
// 4-byte boundary relative to the start of the code.
func alignSwitch(r *codeReader) error {
	pad := (4 - r.pc%4) % 4
	if err := r.need(pad); err != nil {
		return err
	}
	r.pc += pad
	return nil
}

func decodeTableswitch(r *codeReader, ins *Instruction) error {
	if err := alignSwitch(r); err != nil {
		return err
	}
	if err := r.need(12); err != nil {
		return err
	}
	def, _ := r.s4()
	low, _ := r.s4()
	high, _ := r.s4()
	if high < low {
		return fmt.Errorf("low %d > high %d: %w", low, high, ErrInvalidSwitch)
	}
	n := int64(high) - int64(low) + 1
	if int64(r.pc)+n*4 > int64(len(r.code)) {
		return r.need(int(n * 4))
	}
	sw := &Switch{
		Default: ins.PC + int(def),
		Keys:    make([]int32, n),
		Targets: make([]int, n),
	}
	for i := range sw.Keys {
		off, _ := r.s4()
		sw.Keys[i] = low + int32(i)
		sw.Targets[i] = ins.PC + int(off)
	}
	ins.Switch = sw
	return nil
}

func decodeLookupswitch(r *codeReader, ins *Instruction) error {
	if err := alignSwitch(r); err != nil {
		return err
	}
	if err := r.need(8); err != nil {
		return err
	}
	def, _ := r.s4()
	npairs, _ := r.s4()
	if npairs < 0 {
		return fmt.Errorf("npairs %d: %w", npairs, ErrInvalidSwitch)
	}
	if err := r.need(int(npairs) * 8); err != nil {
		return err
	}
	sw := &Switch{
		Default: ins.PC + int(def),
		Keys:    make([]int32, npairs),
		Targets: make([]int, npairs),
	}
	for i := range sw.Keys {
		key, _ := r.s4()
		off, _ := r.s4()
		sw.Keys[i] = key
		sw.Targets[i] = ins.PC + int(off)
	}
	ins.Switch = sw
	return nil
}

// decodeWide replaces the wide prefix with the instruction it modifies.
func decodeWide(r *codeReader, ins *Instruction) error {
	b, err := r.u1()
	if err != nil {
		return err
	}
	op := Opcode(b)
	k := opcodes[op].kind
	if k != operandLocal && k != operandIinc {
		return fmt.Errorf("wide %s: %w", op, ErrInvalidWide)
	}
	idx, err := r.u2()
	if err != nil {
		return err
	}
	ins.Opcode = op
	ins.Wide = true
	ins.Index = int(idx)
	if k == operandIinc {
		inc, err := r.u2()
		if err != nil {
			return err
		}
		ins.Value = int32(int16(inc))
	}
	return nil
}
