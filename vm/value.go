// Package vm executes the minimal bytecode subset needed to run a single
// class file's entry method: getstatic, ldc, invokevirtual. Symbolic
// operands are resolved through the class file's constant pool; the only
// side effect is console output through a native-method binding table.
package vm

// StackEntry is one operand-stack slot. Entries exist only while a method
// runs and are never persisted.
type StackEntry interface {
	stackEntry()
}

// InstanceEntry is a synthetic class-instance marker, pushed by getstatic in
// place of an actual heap value. ClassName carries the referenced field's
// declared type name.
type InstanceEntry struct {
	ClassName string
}

// IntEntry is a 32-bit integer operand.
type IntEntry struct {
	Value int32
}

// FloatEntry is a 32-bit float operand.
type FloatEntry struct {
	Value float32
}

// StringEntry is a string operand, resolved from the constant pool.
type StringEntry struct {
	Value string
}

func (InstanceEntry) stackEntry() {}
func (IntEntry) stackEntry()      {}
func (FloatEntry) stackEntry()    {}
func (StringEntry) stackEntry()   {}
