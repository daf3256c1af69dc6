package bruntime

type InputPhase string

const (
	InputIdle   InputPhase = "idle"
	InputPrompt InputPhase = "input"
)

// InputRequest describes one pending `input` call.
type InputRequest struct {
	Prompt string
	Line   int
}

type InputState struct {
	Phase     InputPhase
	Current   *InputRequest
	Queue     []string
	LastValue string
}

// InputProvider answers an input request. It runs after the prompt was
// already sent to the output hook.
type InputProvider func(req InputRequest) (string, error)

func defaultInputState() InputState {
	return InputState{
		Phase:   InputIdle,
		Current: nil,
		Queue:   nil,
	}
}

// EnqueueInput queues answers that are consumed before the input provider is
// asked.
func (vm *VM) EnqueueInput(values ...string) {
	vm.input.Queue = append(vm.input.Queue, values...)
}

func (vm *VM) SetInputProvider(fn InputProvider) {
	vm.inputProvider = fn
}

// InputState returns a copy of the current input bookkeeping.
func (vm *VM) InputState() InputState {
	st := vm.input
	st.Queue = append([]string(nil), vm.input.Queue...)
	return st
}

func (vm *VM) beginInputRequest(req InputRequest) {
	vm.input.Phase = InputPrompt
	cp := req
	vm.input.Current = &cp
}

func (vm *VM) finishInputRequest(value string) {
	vm.input.LastValue = value
	vm.input.Current = nil
	vm.input.Phase = InputIdle
}

func (vm *VM) consumeQueuedInput() (string, bool) {
	if len(vm.input.Queue) == 0 {
		return "", false
	}
	v := vm.input.Queue[0]
	vm.input.Queue = vm.input.Queue[1:]
	return v, true
}

// resolveInput answers req from the queue first, then from the provider.
// With neither available the answer is the empty string.
func (vm *VM) resolveInput(req InputRequest) (string, error) {
	vm.beginInputRequest(req)
	raw, ok := vm.consumeQueuedInput()
	if !ok {
		if vm.inputProvider == nil {
			vm.finishInputRequest("")
			return "", nil
		}
		value, err := vm.inputProvider(req)
		if err != nil {
			vm.finishInputRequest("")
			return "", err
		}
		vm.finishInputRequest(value)
		return value, nil
	}
	vm.finishInputRequest(raw)
	return raw, nil
}
