package cpu

const (
	STACK_LIMIT = 1024 // Maximum stack depth
)

type Stack struct {
	Data []int32
}

// Push reports false when the stack is full.
func (s *Stack) Push(value int32) (ok bool) {
	if s.Full() {
		return
	}

	s.Data = append(s.Data, value)
	return true
}

func (s *Stack) Pop() (value int32, ok bool) {
	value, ok = s.Peek(1)
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Full() bool {
	return len(s.Data) >= STACK_LIMIT
}

func (s *Stack) Depth() int {
	return len(s.Data)
}

// Peek inspects the n-th value from the top without removing it; n = 1 is the top.
func (s *Stack) Peek(n int) (value int32, ok bool) {
	if n < 1 || n > len(s.Data) {
		return
	}

	return s.Data[len(s.Data)-n], true
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
