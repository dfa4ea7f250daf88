package cpu

import (
	"errors"
	"fmt"
)

const (
	OpHLT  uint16 = 0x00
	OpNOP  uint16 = 0x01
	OpLDI  uint16 = 0x02
	OpMOV  uint16 = 0x03
	OpLD   uint16 = 0x04
	OpST   uint16 = 0x05
	OpADD  uint16 = 0x06
	OpSUB  uint16 = 0x07
	OpAND  uint16 = 0x08
	OpOR   uint16 = 0x09
	OpXOR  uint16 = 0x0A
	OpNOT  uint16 = 0x0B
	OpSHL  uint16 = 0x0C
	OpSHR  uint16 = 0x0D
	OpJMP  uint16 = 0x0E
	OpPUSH uint16 = 0x12
	OpPOP  uint16 = 0x13
	OpCALL uint16 = 0x14
	OpRET  uint16 = 0x15
	OpMUL  uint16 = 0x1C
	OpIDIV uint16 = 0x22
	OpSAR  uint16 = 0x25
	OpIREM uint16 = 0x26
	OpNEG  uint16 = 0x27
	OpLDA  uint16 = 0x28
	OpSTA  uint16 = 0x29
	OpSYS  uint16 = 0x2A
)

const (
	RegA uint16 = 0
	RegB uint16 = 1
	RegC uint16 = 2
	RegD uint16 = 3
)

// StackTop is the initial stack pointer. The stack grows down one 32-bit
// word at a time.
const StackTop uint16 = 0xFFFC

// DefaultMaxSteps bounds Run when MaxSteps is zero.
const DefaultMaxSteps = 1_000_000

var (
	ErrDivideByZero  = errors.New("division by zero")
	ErrStepLimit     = errors.New("step limit exceeded")
	ErrUnknownHostFn = errors.New("unknown host function")
	ErrNoHost        = errors.New("no host attached")
	ErrBadOpcode     = errors.New("illegal opcode")
)

// Fault is the error a CPU stops with when an instruction cannot complete.
type Fault struct {
	PC  uint16 // address of the faulting instruction
	Err error
}

func (f *Fault) Error() string { return fmt.Sprintf("fault at 0x%04X: %v", f.PC, f.Err) }
func (f *Fault) Unwrap() error { return f.Err }

// CPU is a 32-bit register machine with 64 KiB of little-endian memory.
type CPU struct {
	Regs [8]uint32

	PC uint16
	SP uint16

	Memory [65536]byte

	Halted bool
	Err    error // set when the CPU stopped on a fault

	// Host services SYS traps. It may be nil for programs without host calls.
	Host Host

	// MaxSteps bounds Run; zero means DefaultMaxSteps.
	MaxSteps int
	Steps    int
}

// NewCPU creates a CPU with an optional host for SYS traps.
func NewCPU(host ...Host) *CPU {
	c := &CPU{SP: StackTop}
	if len(host) > 0 {
		c.Host = host[0]
	}
	return c
}

// Reset clears registers, memory and run state but keeps Host and MaxSteps.
func (c *CPU) Reset() {
	host, max := c.Host, c.MaxSteps
	*c = CPU{SP: StackTop, Host: host, MaxSteps: max}
}

// Restart clears registers and run state but leaves memory alone, so a
// program loaded once can be re-run without zeroing all of memory.
func (c *CPU) Restart() {
	c.Regs = [8]uint32{}
	c.PC = 0
	c.SP = StackTop
	c.Halted = false
	c.Err = nil
	c.Steps = 0
}

// Load copies program into memory at address 0.
func (c *CPU) Load(program []byte) error {
	if len(program) > len(c.Memory) {
		return fmt.Errorf("program too large for memory: %d bytes > %d bytes", len(program), len(c.Memory))
	}
	copy(c.Memory[:], program)
	return nil
}

func (c *CPU) reg(idx uint16) *uint32 {
	if idx < 8 {
		return &c.Regs[idx]
	}
	return &c.Regs[0] // Fallback
}

// Read16 reads a little-endian uint16 from addr and addr+1.
func (c *CPU) Read16(addr uint16) uint16 {
	return uint16(c.Memory[addr]) | uint16(c.Memory[addr+1])<<8
}

// Read32 reads a little-endian uint32 starting at addr. Addresses wrap at
// the end of memory.
func (c *CPU) Read32(addr uint16) uint32 {
	return uint32(c.Memory[addr]) |
		uint32(c.Memory[addr+1])<<8 |
		uint32(c.Memory[addr+2])<<16 |
		uint32(c.Memory[addr+3])<<24
}

// Write32 writes a little-endian uint32 starting at addr.
func (c *CPU) Write32(addr uint16, val uint32) {
	c.Memory[addr] = byte(val)
	c.Memory[addr+1] = byte(val >> 8)
	c.Memory[addr+2] = byte(val >> 16)
	c.Memory[addr+3] = byte(val >> 24)
}

func (c *CPU) push(val uint32) {
	c.SP -= 4
	c.Write32(c.SP, val)
}

func (c *CPU) pop() uint32 {
	val := c.Read32(c.SP)
	c.SP += 4
	return val
}

func (c *CPU) fault(pc uint16, err error) {
	c.Err = &Fault{PC: pc, Err: err}
	c.Halted = true
}

// Step executes one instruction.
func (c *CPU) Step() {
	if c.Halted {
		return
	}
	c.Steps++

	pc := c.PC
	instr := c.Read16(c.PC)
	c.PC += 2

	opcode := (instr >> 10) & 0x3F
	regA := (instr >> 7) & 0x07
	regB := (instr >> 4) & 0x07

	switch opcode {
	case OpHLT:
		c.Halted = true

	case OpNOP:
		// No operation.

	case OpLDI:
		*c.reg(regA) = c.Read32(c.PC)
		c.PC += 4

	case OpLDA:
		addr := c.Read16(c.PC)
		c.PC += 2
		*c.reg(regA) = c.Read32(addr)

	case OpSTA:
		addr := c.Read16(c.PC)
		c.PC += 2
		c.Write32(addr, *c.reg(regA))

	case OpMOV:
		*c.reg(regA) = *c.reg(regB)

	case OpLD:
		*c.reg(regA) = c.Read32(uint16(*c.reg(regB)))

	case OpST:
		c.Write32(uint16(*c.reg(regA)), *c.reg(regB))

	case OpADD:
		*c.reg(regA) += *c.reg(regB)

	case OpSUB:
		*c.reg(regA) -= *c.reg(regB)

	case OpMUL:
		*c.reg(regA) *= *c.reg(regB)

	case OpIDIV, OpIREM:
		divisor := int32(*c.reg(regB))
		if divisor == 0 {
			c.fault(pc, ErrDivideByZero)
			return
		}
		dividend := int32(*c.reg(regA))
		if opcode == OpIDIV {
			*c.reg(regA) = uint32(dividend / divisor)
		} else {
			*c.reg(regA) = uint32(dividend % divisor)
		}

	case OpAND:
		*c.reg(regA) &= *c.reg(regB)

	case OpOR:
		*c.reg(regA) |= *c.reg(regB)

	case OpXOR:
		*c.reg(regA) ^= *c.reg(regB)

	case OpNOT:
		*c.reg(regA) = ^*c.reg(regA)

	case OpNEG:
		*c.reg(regA) = uint32(-int32(*c.reg(regA)))

	// Shift counts use the low five bits, as 32-bit integer shifts do.
	case OpSHL:
		*c.reg(regA) <<= *c.reg(regB) & 31

	case OpSHR:
		*c.reg(regA) >>= *c.reg(regB) & 31

	case OpSAR:
		*c.reg(regA) = uint32(int32(*c.reg(regA)) >> (*c.reg(regB) & 31))

	case OpJMP:
		c.PC = c.Read16(c.PC)

	case OpPUSH:
		c.push(*c.reg(regA))

	case OpPOP:
		*c.reg(regA) = c.pop()

	case OpCALL:
		target := c.Read16(c.PC)
		c.PC += 2
		c.push(uint32(c.PC))
		c.PC = target

	case OpRET:
		c.PC = uint16(c.pop())

	case OpSYS:
		index := c.Read16(c.PC)
		c.PC += 2
		if err := c.sys(index); err != nil {
			c.fault(pc, err)
		}

	default:
		c.fault(pc, fmt.Errorf("%w 0x%02X", ErrBadOpcode, opcode))
	}
}

// sys pops the host function's arguments (the last pushed is the last
// argument), invokes it and leaves the result in R0.
func (c *CPU) sys(index uint16) error {
	if c.Host == nil {
		return ErrNoHost
	}
	arity, ok := c.Host.Arity(index)
	if !ok {
		return fmt.Errorf("%w #%d", ErrUnknownHostFn, index)
	}
	args := make([]int32, arity)
	for i := arity - 1; i >= 0; i-- {
		args[i] = int32(c.pop())
	}
	result, err := c.Host.Invoke(index, args)
	if err != nil {
		return err
	}
	c.Regs[RegA] = uint32(result)
	return nil
}

// Run steps until the CPU halts, faults, or exceeds its step budget.
func (c *CPU) Run() error {
	max := c.MaxSteps
	if max <= 0 {
		max = DefaultMaxSteps
	}
	for !c.Halted {
		if c.Steps >= max {
			c.fault(c.PC, ErrStepLimit)
			break
		}
		c.Step()
	}
	return c.Err
}

func EncodeInstruction(opcode, regA, regB, regC uint16) uint16 {
	return (opcode << 10) | ((regA & 0x07) << 7) | ((regB & 0x07) << 4) | ((regC & 0x07) << 1)
}
