// Package wire encodes parsed-class summaries as canonical CBOR, so dumps
// of the same class file compare byte-equal.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"cafebabe/classfile"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MethodSummary is the wire form of one method.
type MethodSummary struct {
	Name       string   `cbor:"name"`
	Descriptor string   `cbor:"descriptor"`
	Flags      []string `cbor:"flags,omitempty"`
	CodeSize   int      `cbor:"code_size"`
	LineCount  int      `cbor:"line_count"`
}

// ClassSummary is the wire form of one parsed class file.
type ClassSummary struct {
	MinorVersion uint16          `cbor:"minor_version"`
	MajorVersion uint16          `cbor:"major_version"`
	ThisClass    string          `cbor:"this_class"`
	SuperClass   string          `cbor:"super_class"`
	AccessFlags  []string        `cbor:"access_flags,omitempty"`
	PoolSize     int             `cbor:"pool_size"`
	Methods      []MethodSummary `cbor:"methods,omitempty"`
	Attributes   []string        `cbor:"attributes,omitempty"`
}

// Summarize builds a ClassSummary from a parsed class file.
func Summarize(cf *classfile.ClassFile) (*ClassSummary, error) {
	thisName, err := cf.ThisClassName()
	if err != nil {
		return nil, fmt.Errorf("wire: resolving this_class: %w", err)
	}
	superName, err := cf.SuperClassName()
	if err != nil {
		return nil, fmt.Errorf("wire: resolving super_class: %w", err)
	}

	s := &ClassSummary{
		MinorVersion: cf.MinorVersion,
		MajorVersion: cf.MajorVersion,
		ThisClass:    thisName,
		SuperClass:   superName,
		PoolSize:     cf.ConstantPool.Size(),
	}
	for _, f := range cf.AccessFlags {
		s.AccessFlags = append(s.AccessFlags, f.String())
	}
	for i := range cf.Methods {
		s.Methods = append(s.Methods, summarizeMethod(&cf.Methods[i]))
	}
	for _, attr := range cf.Attributes {
		s.Attributes = append(s.Attributes, attr.Name)
	}
	return s, nil
}

func summarizeMethod(m *classfile.MethodInfo) MethodSummary {
	ms := MethodSummary{
		Name:       m.Name,
		Descriptor: m.Descriptor,
	}
	for _, f := range m.AccessFlags {
		ms.Flags = append(ms.Flags, f.String())
	}
	if code := m.Code(); code != nil {
		ms.CodeSize = len(code.Code)
		for _, attr := range code.Attributes {
			if table, ok := attr.Kind.(*classfile.LineNumberTableAttribute); ok {
				ms.LineCount += len(table.Table)
			}
		}
	}
	return ms
}

// MarshalSummary serializes a ClassSummary to canonical CBOR bytes.
func MarshalSummary(s *ClassSummary) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSummary deserializes a ClassSummary from CBOR bytes.
func UnmarshalSummary(data []byte) (*ClassSummary, error) {
	var s ClassSummary
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("wire: unmarshal class summary: %w", err)
	}
	return &s, nil
}
