package classfile

import (
	"fmt"
	"math"
)

// ConstantTag identifies the kind of a constant pool entry.
type ConstantTag uint8

// Constant pool tags
const (
	TagUtf8               ConstantTag = 1
	TagInteger            ConstantTag = 3
	TagFloat              ConstantTag = 4
	TagLong               ConstantTag = 5
	TagDouble             ConstantTag = 6
	TagClass              ConstantTag = 7
	TagString             ConstantTag = 8
	TagFieldref           ConstantTag = 9
	TagMethodref          ConstantTag = 10
	TagInterfaceMethodref ConstantTag = 11
	TagNameAndType        ConstantTag = 12
	TagMethodHandle       ConstantTag = 15
	TagMethodType         ConstantTag = 16
	TagDynamic            ConstantTag = 17
	TagInvokeDynamic      ConstantTag = 18
	TagModule             ConstantTag = 19
	TagPackage            ConstantTag = 20
)

var tagNames = map[ConstantTag]string{
	TagUtf8:               "Utf8",
	TagInteger:            "Integer",
	TagFloat:              "Float",
	TagLong:               "Long",
	TagDouble:             "Double",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldref:           "Fieldref",
	TagMethodref:          "Methodref",
	TagInterfaceMethodref: "InterfaceMethodref",
	TagNameAndType:        "NameAndType",
	TagMethodHandle:       "MethodHandle",
	TagMethodType:         "MethodType",
	TagDynamic:            "Dynamic",
	TagInvokeDynamic:      "InvokeDynamic",
	TagModule:             "Module",
	TagPackage:            "Package",
}

func (t ConstantTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// ConstantPool is the 1-indexed constant table of a class file. Slot 0 and
// the slot following each Long or Double hold no entry.
type ConstantPool struct {
	entries []ConstantPoolEntry
}

// Len returns constant_pool_count, i.e. one more than the highest index.
func (cp *ConstantPool) Len() int {
	return len(cp.entries)
}

// Entries calls fn for every addressable entry in index order.
func (cp *ConstantPool) Entries(fn func(index uint16, entry ConstantPoolEntry)) {
	for i, e := range cp.entries {
		if e != nil {
			fn(uint16(i), e)
		}
	}
}

// Get returns the entry at index.
func (cp *ConstantPool) Get(index uint16) (ConstantPoolEntry, error) {
	if index == 0 || int(index) >= len(cp.entries) || cp.entries[index] == nil {
		return nil, fmt.Errorf("index %d (pool count %d): %w", index, len(cp.entries), ErrIndexOutOfRange)
	}
	return cp.entries[index], nil
}

func lookup[T ConstantPoolEntry](cp *ConstantPool, index uint16, want ConstantTag) (T, error) {
	var zero T
	e, err := cp.Get(index)
	if err != nil {
		return zero, err
	}
	v, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("index %d is %s, want %s: %w", index, e.Tag(), want, ErrTypeMismatch)
	}
	return v, nil
}

// Utf8 returns the string of the CONSTANT_Utf8 entry at index.
func (cp *ConstantPool) Utf8(index uint16) (string, error) {
	c, err := lookup[*ConstantUtf8](cp, index, TagUtf8)
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Str resolves index to text. A Utf8 entry is returned directly; a Class or
// String entry is followed one level to its Utf8 entry. Any other kind is a
// type mismatch.
func (cp *ConstantPool) Str(index uint16) (string, error) {
	e, err := cp.Get(index)
	if err != nil {
		return "", err
	}
	switch c := e.(type) {
	case *ConstantUtf8:
		return c.Value, nil
	case *ConstantClass:
		return cp.Utf8(c.NameIndex)
	case *ConstantString:
		return cp.Utf8(c.StringIndex)
	default:
		return "", fmt.Errorf("index %d is %s, want textual entry: %w", index, e.Tag(), ErrTypeMismatch)
	}
}

func (cp *ConstantPool) Class(index uint16) (*ConstantClass, error) {
	return lookup[*ConstantClass](cp, index, TagClass)
}

// ClassName returns the name referenced by the CONSTANT_Class entry at index.
func (cp *ConstantPool) ClassName(index uint16) (string, error) {
	c, err := cp.Class(index)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.NameIndex)
}

func (cp *ConstantPool) StringRef(index uint16) (*ConstantString, error) {
	return lookup[*ConstantString](cp, index, TagString)
}

func (cp *ConstantPool) Integer(index uint16) (*ConstantInteger, error) {
	return lookup[*ConstantInteger](cp, index, TagInteger)
}

func (cp *ConstantPool) Float(index uint16) (*ConstantFloat, error) {
	return lookup[*ConstantFloat](cp, index, TagFloat)
}

func (cp *ConstantPool) Long(index uint16) (*ConstantLong, error) {
	return lookup[*ConstantLong](cp, index, TagLong)
}

func (cp *ConstantPool) Double(index uint16) (*ConstantDouble, error) {
	return lookup[*ConstantDouble](cp, index, TagDouble)
}

func (cp *ConstantPool) NameAndType(index uint16) (*ConstantNameAndType, error) {
	return lookup[*ConstantNameAndType](cp, index, TagNameAndType)
}

func (cp *ConstantPool) Fieldref(index uint16) (*ConstantFieldref, error) {
	return lookup[*ConstantFieldref](cp, index, TagFieldref)
}

func (cp *ConstantPool) Methodref(index uint16) (*ConstantMethodref, error) {
	return lookup[*ConstantMethodref](cp, index, TagMethodref)
}

func (cp *ConstantPool) InterfaceMethodref(index uint16) (*ConstantInterfaceMethodref, error) {
	return lookup[*ConstantInterfaceMethodref](cp, index, TagInterfaceMethodref)
}

func (cp *ConstantPool) MethodHandle(index uint16) (*ConstantMethodHandle, error) {
	return lookup[*ConstantMethodHandle](cp, index, TagMethodHandle)
}

func (cp *ConstantPool) MethodType(index uint16) (*ConstantMethodType, error) {
	return lookup[*ConstantMethodType](cp, index, TagMethodType)
}

func (cp *ConstantPool) Dynamic(index uint16) (*ConstantDynamic, error) {
	return lookup[*ConstantDynamic](cp, index, TagDynamic)
}

func (cp *ConstantPool) InvokeDynamic(index uint16) (*ConstantInvokeDynamic, error) {
	return lookup[*ConstantInvokeDynamic](cp, index, TagInvokeDynamic)
}

// MemberRef holds a resolved field or method reference.
type MemberRef struct {
	ClassName  string
	Name       string
	Descriptor string
}

// NameAndTypeStrings resolves a CONSTANT_NameAndType entry to its two strings.
func (cp *ConstantPool) NameAndTypeStrings(index uint16) (name, descriptor string, err error) {
	nat, err := cp.NameAndType(index)
	if err != nil {
		return "", "", err
	}
	if name, err = cp.Utf8(nat.NameIndex); err != nil {
		return "", "", fmt.Errorf("resolving name: %w", err)
	}
	if descriptor, err = cp.Utf8(nat.DescriptorIndex); err != nil {
		return "", "", fmt.Errorf("resolving descriptor: %w", err)
	}
	return name, descriptor, nil
}

func (cp *ConstantPool) resolveMember(kind string, classIndex, natIndex uint16) (*MemberRef, error) {
	className, err := cp.ClassName(classIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving %s class: %w", kind, err)
	}
	name, desc, err := cp.NameAndTypeStrings(natIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving %s name and type: %w", kind, err)
	}
	return &MemberRef{ClassName: className, Name: name, Descriptor: desc}, nil
}

// ResolveFieldref resolves a CONSTANT_Fieldref entry.
func (cp *ConstantPool) ResolveFieldref(index uint16) (*MemberRef, error) {
	ref, err := cp.Fieldref(index)
	if err != nil {
		return nil, err
	}
	return cp.resolveMember("Fieldref", ref.ClassIndex, ref.NameAndTypeIndex)
}

// ResolveMethodref resolves a CONSTANT_Methodref entry.
func (cp *ConstantPool) ResolveMethodref(index uint16) (*MemberRef, error) {
	ref, err := cp.Methodref(index)
	if err != nil {
		return nil, err
	}
	return cp.resolveMember("Methodref", ref.ClassIndex, ref.NameAndTypeIndex)
}

// ResolveInterfaceMethodref resolves a CONSTANT_InterfaceMethodref entry.
func (cp *ConstantPool) ResolveInterfaceMethodref(index uint16) (*MemberRef, error) {
	ref, err := cp.InterfaceMethodref(index)
	if err != nil {
		return nil, err
	}
	return cp.resolveMember("InterfaceMethodref", ref.ClassIndex, ref.NameAndTypeIndex)
}

// parseConstantPool reads constant_pool_count-1 slots worth of entries.
func parseConstantPool(r *reader) (*ConstantPool, error) {
	count, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading constant pool count: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("constant pool count 0: %w", ErrIndexOutOfRange)
	}
	pool := &ConstantPool{entries: make([]ConstantPoolEntry, count)}

	for i := uint16(1); i < count; i++ {
		b, err := r.U1()
		if err != nil {
			return nil, fmt.Errorf("reading constant pool tag at index %d: %w", i, err)
		}
		tag := ConstantTag(b)
		entry, err := parseConstant(r, tag)
		if err != nil {
			return nil, fmt.Errorf("reading %s at index %d: %w", tag, i, err)
		}
		pool.entries[i] = entry

		if tag == TagLong || tag == TagDouble {
			// The next slot is reserved and stays nil.
			if i+1 >= count {
				return nil, fmt.Errorf("%s at index %d needs two slots, pool count %d: %w", tag, i, count, ErrIndexOutOfRange)
			}
			i++
		}
	}
	return pool, nil
}

func parseConstant(r *reader, tag ConstantTag) (ConstantPoolEntry, error) {
	switch tag {
	case TagUtf8:
		length, err := r.U2()
		if err != nil {
			return nil, err
		}
		b, err := r.Bytes(int(length))
		if err != nil {
			return nil, err
		}
		return &ConstantUtf8{Value: string(b)}, nil

	case TagInteger:
		v, err := r.U4()
		if err != nil {
			return nil, err
		}
		return &ConstantInteger{Value: int32(v)}, nil

	case TagFloat:
		v, err := r.U4()
		if err != nil {
			return nil, err
		}
		return &ConstantFloat{Value: math.Float32frombits(v)}, nil

	case TagLong:
		v, err := r.U8()
		if err != nil {
			return nil, err
		}
		return &ConstantLong{Value: int64(v)}, nil

	case TagDouble:
		v, err := r.U8()
		if err != nil {
			return nil, err
		}
		return &ConstantDouble{Value: math.Float64frombits(v)}, nil

	case TagClass:
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &ConstantClass{NameIndex: idx}, nil

	case TagString:
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &ConstantString{StringIndex: idx}, nil

	case TagMethodType:
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &ConstantMethodType{DescriptorIndex: idx}, nil

	case TagModule:
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &ConstantModule{NameIndex: idx}, nil

	case TagPackage:
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &ConstantPackage{NameIndex: idx}, nil

	case TagMethodHandle:
		kind, err := r.U1()
		if err != nil {
			return nil, err
		}
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &ConstantMethodHandle{ReferenceKind: kind, ReferenceIndex: idx}, nil

	case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagDynamic, TagInvokeDynamic:
		a, err := r.U2()
		if err != nil {
			return nil, err
		}
		b, err := r.U2()
		if err != nil {
			return nil, err
		}
		return pairConstant(tag, a, b), nil

	default:
		return nil, fmt.Errorf("tag %d: %w", uint8(tag), ErrUnknownConstantTag)
	}
}

// pairConstant builds the entries whose payload is two u2 indices.
func pairConstant(tag ConstantTag, a, b uint16) ConstantPoolEntry {
	switch tag {
	case TagFieldref:
		return &ConstantFieldref{ClassIndex: a, NameAndTypeIndex: b}
	case TagMethodref:
		return &ConstantMethodref{ClassIndex: a, NameAndTypeIndex: b}
	case TagInterfaceMethodref:
		return &ConstantInterfaceMethodref{ClassIndex: a, NameAndTypeIndex: b}
	case TagNameAndType:
		return &ConstantNameAndType{NameIndex: a, DescriptorIndex: b}
	case TagDynamic:
		return &ConstantDynamic{BootstrapMethodAttrIndex: a, NameAndTypeIndex: b}
	default:
		return &ConstantInvokeDynamic{BootstrapMethodAttrIndex: a, NameAndTypeIndex: b}
	}
}
