package vm

import (
	"fmt"

	"cafebabe/classfile"
)

// NativeBinding identifies a native method by its resolved symbolic triple.
type NativeBinding struct {
	ClassName  string
	Name       string
	Descriptor string
}

func (b NativeBinding) String() string {
	return b.ClassName + "." + b.Name + b.Descriptor
}

// NativeFunc is the handler invoked when invokevirtual resolves to a bound
// native method. The handler pops its own arguments and receiver.
type NativeFunc func(in *Interpreter) error

// defaultNatives returns the built-in binding table. Extending the supported
// surface means adding entries here (or via RegisterNative), not editing the
// interpreter loop.
func defaultNatives() map[NativeBinding]NativeFunc {
	return map[NativeBinding]NativeFunc{
		{ClassName: "java/io/PrintStream", Name: "println", Descriptor: "(Ljava/lang/String;)V"}: nativePrintln,
	}
}

// nativePrintln pops the string argument and the receiver marker beneath it,
// then writes the string followed by a line terminator.
func nativePrintln(in *Interpreter) error {
	arg, err := in.pop()
	if err != nil {
		return fmt.Errorf("println argument: %w", err)
	}
	s, ok := arg.(StringEntry)
	if !ok {
		return fmt.Errorf("%w: println argument is %T, want string", classfile.ErrUnsupported, arg)
	}
	if _, err := in.pop(); err != nil {
		return fmt.Errorf("println receiver: %w", err)
	}
	_, err = fmt.Fprintln(in.Stdout, s.Value)
	return err
}
