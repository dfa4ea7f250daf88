package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"scriptc/pkg/cpu"
)

// operandShape says which operands follow a mnemonic and so how long the
// encoded instruction is.
type operandShape int

const (
	shapeNone      operandShape = iota // HLT
	shapeReg                           // NOT R0
	shapeRegReg                        // ADD R0, R1
	shapeRegImm32                      // LDI R0, -5
	shapeRegAddr                       // LDA R0, label
	shapeAddr                          // JMP label
)

type opInfo struct {
	opcode uint16
	shape  operandShape
}

var instructions = map[string]opInfo{
	"HLT": {cpu.OpHLT, shapeNone},
	"NOP": {cpu.OpNOP, shapeNone},
	"RET": {cpu.OpRET, shapeNone},

	"NOT":  {cpu.OpNOT, shapeReg},
	"NEG":  {cpu.OpNEG, shapeReg},
	"PUSH": {cpu.OpPUSH, shapeReg},
	"POP":  {cpu.OpPOP, shapeReg},

	"MOV":  {cpu.OpMOV, shapeRegReg},
	"LD":   {cpu.OpLD, shapeRegReg},
	"ST":   {cpu.OpST, shapeRegReg},
	"ADD":  {cpu.OpADD, shapeRegReg},
	"SUB":  {cpu.OpSUB, shapeRegReg},
	"MUL":  {cpu.OpMUL, shapeRegReg},
	"IDIV": {cpu.OpIDIV, shapeRegReg},
	"IREM": {cpu.OpIREM, shapeRegReg},
	"AND":  {cpu.OpAND, shapeRegReg},
	"OR":   {cpu.OpOR, shapeRegReg},
	"XOR":  {cpu.OpXOR, shapeRegReg},
	"SHL":  {cpu.OpSHL, shapeRegReg},
	"SHR":  {cpu.OpSHR, shapeRegReg},
	"SAR":  {cpu.OpSAR, shapeRegReg},

	"LDI": {cpu.OpLDI, shapeRegImm32},

	"LDA": {cpu.OpLDA, shapeRegAddr},
	"STA": {cpu.OpSTA, shapeRegAddr},

	"JMP":  {cpu.OpJMP, shapeAddr},
	"CALL": {cpu.OpCALL, shapeAddr},
	"SYS":  {cpu.OpSYS, shapeAddr},
}

func (s operandShape) operands() int {
	switch s {
	case shapeNone:
		return 0
	case shapeReg, shapeAddr:
		return 1
	}
	return 2
}

// length returns the encoded size in bytes: a 2-byte instruction word plus
// a 16-bit address or a 32-bit immediate.
func (s operandShape) length() uint32 {
	switch s {
	case shapeRegImm32:
		return 6
	case shapeRegAddr, shapeAddr:
		return 4
	}
	return 2
}

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble translates source into machine code starting at address 0. The
// returned source map gives the 1-based source line for each emitted address.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

// Labels returns the resolved label addresses, keyed by upper-case name.
// It is only meaningful after Assemble.
func (a *Assembler) Labels() map[string]uint16 {
	out := make(map[string]uint16, len(a.labels))
	for k, v := range a.labels {
		out[k] = v
	}
	return out
}

// Label looks up one label case-insensitively.
func (a *Assembler) Label(name string) (uint16, bool) {
	addr, ok := a.labels[normalizeLabel(name)]
	return addr, ok
}

// pass1 assigns an address to every label.
func (a *Assembler) pass1(lines []string) error {
	var address uint32

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if address > 0xFFFF {
				return fmt.Errorf("label '%s' on line %d points past addressable memory", lbl, lineNo)
			}
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		var length uint32
		switch p.mnemonic {
		case "":
			continue
		case ".ORG":
			target, err := parseOrigin(p, lineNo)
			if err != nil {
				return err
			}
			if target < address {
				return fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			address = target
			continue
		case ".WORD":
			if len(p.operands) != 1 {
				return fmt.Errorf(".WORD expects exactly one operand on line %d", lineNo)
			}
			length = 4
		default:
			info, ok := instructions[p.mnemonic]
			if !ok {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
			length = info.shape.length()
		}

		if address+length > 65536 {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address += length
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		mnemonic := p.mnemonic
		ops := p.operands

		if mnemonic == ".ORG" {
			target, err := parseOrigin(p, lineNo)
			if err != nil {
				return nil, nil, err
			}
			padding := int(target) - len(program)
			if padding < 0 {
				return nil, nil, fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			if padding > 0 {
				program = append(program, make([]byte, padding)...)
			}
			continue
		}

		sourceMap[uint16(len(program))] = lineNo

		if mnemonic == ".WORD" {
			val, err := a.parseImmediate(ops[0], lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append32(program, val)
			continue
		}

		info, ok := instructions[mnemonic]
		if !ok {
			return nil, nil, fmt.Errorf("unknown instruction on line %d: %s", lineNo, mnemonic)
		}
		if want := info.shape.operands(); len(ops) != want {
			return nil, nil, fmt.Errorf("%s expects %d operands on line %d", mnemonic, want, lineNo)
		}

		var regA, regB uint16
		switch info.shape {
		case shapeReg, shapeRegImm32, shapeRegAddr:
			if regA, err = parseRegister(ops[0], lineNo); err != nil {
				return nil, nil, err
			}
		case shapeRegReg:
			if regA, err = parseRegister(ops[0], lineNo); err != nil {
				return nil, nil, err
			}
			if regB, err = parseRegister(ops[1], lineNo); err != nil {
				return nil, nil, err
			}
		}
		program = append16(program, cpu.EncodeInstruction(info.opcode, regA, regB, 0))

		switch info.shape {
		case shapeRegImm32:
			imm, err := a.parseImmediate(ops[1], lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append32(program, imm)
		case shapeRegAddr, shapeAddr:
			addr, err := a.parseAddress(ops[len(ops)-1], lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append16(program, addr)
		}
	}

	return program, sourceMap, nil
}

func append16(program []byte, v uint16) []byte {
	return append(program, byte(v), byte(v>>8))
}

func append32(program []byte, v uint32) []byte {
	return append(program, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func parseOrigin(p parsedLine, lineNo int) (uint32, error) {
	if len(p.operands) != 1 {
		return 0, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}
	target, err := strconv.ParseUint(p.operands[0], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, p.operands[0])
	}
	if target > 0xFFFF {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", lineNo, p.operands[0])
	}
	return uint32(target), nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(normalizeInstructionText(line))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}
	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func normalizeInstructionText(line string) string {
	replacer := strings.NewReplacer(",", " ", "[", " ", "]", " ")
	return replacer.Replace(line)
}

func parseRegister(token string, lineNo int) (uint16, error) {
	t := strings.ToUpper(token)
	if len(t) == 2 && t[0] == 'R' && t[1] >= '0' && t[1] <= '7' {
		return uint16(t[1] - '0'), nil
	}
	return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
}

// parseImmediate accepts a signed or unsigned 32-bit number (any base
// strconv understands) or a label.
func (a *Assembler) parseImmediate(token string, lineNo int) (uint32, error) {
	if value, err := strconv.ParseInt(token, 0, 64); err == nil {
		if value < -1<<31 || value > 0xFFFFFFFF {
			return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
		}
		return uint32(value), nil
	}

	if addr, ok := a.labels[normalizeLabel(token)]; ok {
		return uint32(addr), nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

// parseAddress is parseImmediate restricted to the 16-bit address space.
func (a *Assembler) parseAddress(token string, lineNo int) (uint16, error) {
	v, err := a.parseImmediate(token, lineNo)
	if err != nil {
		return 0, err
	}
	if v > 0xFFFF {
		return 0, fmt.Errorf("address out of range on line %d: %s", lineNo, token)
	}
	return uint16(v), nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
