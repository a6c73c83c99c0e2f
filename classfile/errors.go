package classfile

import "errors"

var (
	ErrBadMagic        = errors.New("invalid magic number: expected 0xCAFEBABE")
	ErrUnexpectedEOF   = errors.New("unexpected end of class data")
	ErrPoolTag         = errors.New("unexpected constant pool tag")
	ErrPoolIndex       = errors.New("constant pool index out of range")
	ErrPoolType        = errors.New("constant pool type mismatch")
	ErrUnsupported     = errors.New("unsupported class file feature")
	ErrAttributeLength = errors.New("attribute length does not match bytes consumed")
)
