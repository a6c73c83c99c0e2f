package vm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"cafebabe/classfile"
)

var log = commonlog.GetLogger("cafebabe.vm")

// Accepted opcodes. Operand widths are opcode-dependent, so unknown opcodes
// cannot be skipped and abort the run instead.
const (
	opLdc           uint8 = 0x12
	opGetstatic     uint8 = 0xb2
	opInvokevirtual uint8 = 0xb6
)

// EntryDescriptor is the descriptor of a conventional main method.
const EntryDescriptor = "([Ljava/lang/String;)V"

var (
	ErrNoEntryMethod       = errors.New("entry method not found")
	ErrNoCode              = errors.New("entry method has no Code attribute")
	ErrUnimplementedOpcode = errors.New("unimplemented opcode")
	ErrStackUnderflow      = errors.New("operand stack underflow")
)

// Interpreter executes one method's instruction stream against an operand
// stack, resolving every symbolic operand through the enclosing class's
// constant pool.
type Interpreter struct {
	Stdout io.Writer

	cf      *classfile.ClassFile
	pool    *classfile.ConstantPool
	stack   []StackEntry
	natives map[NativeBinding]NativeFunc
}

// New creates an interpreter for the given class file, writing to os.Stdout
// and carrying the default native-binding table.
func New(cf *classfile.ClassFile) *Interpreter {
	return &Interpreter{
		Stdout:  os.Stdout,
		cf:      cf,
		pool:    cf.ConstantPool,
		natives: defaultNatives(),
	}
}

// RegisterNative adds or replaces a native-method binding.
func (in *Interpreter) RegisterNative(b NativeBinding, fn NativeFunc) {
	in.natives[b] = fn
}

// Run locates the entry method by name (preferring the conventional main
// descriptor), extracts its Code attribute, and executes it. Normal
// termination is falling off the end of the instruction stream; the final
// byte is never consumed, matching the execution model that has no return
// instruction.
func (in *Interpreter) Run(entry string) error {
	method := in.cf.FindMethod(entry, EntryDescriptor)
	if method == nil {
		method = in.cf.FindMethodByName(entry)
	}
	if method == nil {
		name, _ := in.cf.ThisClassName()
		return fmt.Errorf("%w: no method %q in class %s", ErrNoEntryMethod, entry, name)
	}

	code := method.Code()
	if code == nil {
		return fmt.Errorf("%w: method %q", ErrNoCode, entry)
	}

	cur := classfile.NewCursor(code.Code)
	for cur.Remaining() > 1 {
		offset := cur.Consumed()
		op, err := cur.U1()
		if err != nil {
			return err
		}
		log.Debugf("opcode 0x%02x at offset %d", op, offset)

		switch op {
		case opGetstatic:
			err = in.execGetstatic(&cur.Reader)
		case opLdc:
			err = in.execLdc(&cur.Reader)
		case opInvokevirtual:
			err = in.execInvokevirtual(&cur.Reader)
		default:
			return fmt.Errorf("%w: 0x%02x at offset %d", ErrUnimplementedOpcode, op, offset)
		}
		if err != nil {
			return fmt.Errorf("at offset %d: %w", offset, err)
		}
	}

	return nil
}

// execGetstatic resolves a field reference and pushes a class-instance
// marker tagged with the field's declared type, standing in for a static
// field load without an actual heap.
func (in *Interpreter) execGetstatic(r *classfile.Reader) error {
	index, err := r.U2()
	if err != nil {
		return fmt.Errorf("getstatic operand: %w", err)
	}
	ref, err := in.pool.FieldrefAt(index)
	if err != nil {
		return fmt.Errorf("getstatic: %w", err)
	}
	// The owning class name is resolved by FieldrefAt for validation; only
	// the declared type tags the marker.
	in.push(InstanceEntry{ClassName: ref.Descriptor})
	return nil
}

// execLdc pushes a constant. Only String constants are accepted at this
// site.
func (in *Interpreter) execLdc(r *classfile.Reader) error {
	index, err := r.U1()
	if err != nil {
		return fmt.Errorf("ldc operand: %w", err)
	}
	entry, err := in.pool.At(uint16(index))
	if err != nil {
		return fmt.Errorf("ldc: %w", err)
	}

	s, ok := entry.(*classfile.StringEntry)
	if !ok {
		return fmt.Errorf("%w: ldc of %s constant at pool index %d",
			classfile.ErrUnsupported, classfile.TagName(entry.Tag()), index)
	}
	text, err := in.pool.Utf8At(s.StringIndex)
	if err != nil {
		return fmt.Errorf("ldc: resolving string: %w", err)
	}
	in.push(StringEntry{Value: text})
	return nil
}

// execInvokevirtual resolves a method reference and dispatches it through
// the native-binding table.
func (in *Interpreter) execInvokevirtual(r *classfile.Reader) error {
	index, err := r.U2()
	if err != nil {
		return fmt.Errorf("invokevirtual operand: %w", err)
	}
	ref, err := in.pool.MethodrefAt(index)
	if err != nil {
		return fmt.Errorf("invokevirtual: %w", err)
	}

	binding := NativeBinding{ClassName: ref.ClassName, Name: ref.Name, Descriptor: ref.Descriptor}
	fn, ok := in.natives[binding]
	if !ok {
		return fmt.Errorf("%w: no native binding for %s", classfile.ErrUnsupported, binding)
	}
	return fn(in)
}

func (in *Interpreter) push(e StackEntry) {
	in.stack = append(in.stack, e)
}

func (in *Interpreter) pop() (StackEntry, error) {
	if len(in.stack) == 0 {
		return nil, ErrStackUnderflow
	}
	e := in.stack[len(in.stack)-1]
	in.stack = in.stack[:len(in.stack)-1]
	return e, nil
}
