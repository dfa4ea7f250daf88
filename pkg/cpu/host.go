package cpu

// Host services SYS traps. Index is the host function number encoded after
// the SYS opcode.
type Host interface {
	// Arity reports how many arguments function index pops from the stack.
	Arity(index uint16) (int, bool)
	Invoke(index uint16, args []int32) (int32, error)
}
