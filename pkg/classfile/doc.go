// Package classfile decodes JVM class files.
//
// Decode turns a complete class file image into a *Class in one forward
// pass: header, constant pool, access flags, this/super class, interfaces,
// fields, methods and class attributes. The constant pool is decoded first
// and every later name or descriptor is resolved through it with typed,
// strict lookups, so a reference to the wrong kind of entry is an error
// rather than a silent default.
//
// Attributes are decoded as either *CodeAttribute (the "Code" attribute,
// with its exception table and nested attributes) or *OpaqueAttribute (all
// others, body kept verbatim). Each attribute consumes exactly its declared
// length.
//
//	cf, err := classfile.Decode(data)
//	if err != nil {
//		return err
//	}
//	m, err := cf.Method("main", "([Ljava/lang/String;)V")
//	if err != nil {
//		return err
//	}
//	code, ok := m.Code()
//
// A decoded Class is never mutated, so it may be read from many goroutines
// without locking. Slices returned from it must be treated as read-only.
package classfile
