// Package classfile parses JVM class files into a typed in-memory
// representation: constant pool, access flags, methods, and attributes.
//
// Parsing is strictly sequential over a byte source. The constant pool is
// built first and then threaded as a read-only reference through method and
// attribute parsing, because attribute payload shapes are selected by names
// resolved through the pool. Class files that declare interfaces or fields
// are rejected rather than partially parsed.
package classfile
