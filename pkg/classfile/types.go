package classfile

// Class is a decoded .class file. It is built once by Decode and never
// modified afterwards, so a *Class may be shared by concurrent readers.
type Class struct {
	Magic        uint32
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []Field
	Methods      []Method
	Attributes   []Attribute
}

// ConstantPoolEntry is an interface implemented by all constant pool types.
type ConstantPoolEntry interface {
	Tag() ConstantTag
}

type ConstantUtf8 struct {
	Value string
}

func (c *ConstantUtf8) Tag() ConstantTag { return TagUtf8 }

type ConstantInteger struct {
	Value int32
}

func (c *ConstantInteger) Tag() ConstantTag { return TagInteger }

type ConstantFloat struct {
	Value float32
}

func (c *ConstantFloat) Tag() ConstantTag { return TagFloat }

type ConstantLong struct {
	Value int64
}

func (c *ConstantLong) Tag() ConstantTag { return TagLong }

type ConstantDouble struct {
	Value float64
}

func (c *ConstantDouble) Tag() ConstantTag { return TagDouble }

type ConstantClass struct {
	NameIndex uint16
}

func (c *ConstantClass) Tag() ConstantTag { return TagClass }

type ConstantString struct {
	StringIndex uint16
}

func (c *ConstantString) Tag() ConstantTag { return TagString }

type ConstantFieldref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldref) Tag() ConstantTag { return TagFieldref }

type ConstantMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodref) Tag() ConstantTag { return TagMethodref }

type ConstantInterfaceMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodref) Tag() ConstantTag { return TagInterfaceMethodref }

type ConstantNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndType) Tag() ConstantTag { return TagNameAndType }

// ConstantMethodHandle is a CONSTANT_MethodHandle entry. ReferenceKind is one
// of the RefGetField..RefInvokeInterface values.
type ConstantMethodHandle struct {
	ReferenceKind  uint8
	ReferenceIndex uint16
}

func (c *ConstantMethodHandle) Tag() ConstantTag { return TagMethodHandle }

type ConstantMethodType struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodType) Tag() ConstantTag { return TagMethodType }

// ConstantDynamic is a CONSTANT_Dynamic entry (dynamically computed constant).
type ConstantDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamic) Tag() ConstantTag { return TagDynamic }

type ConstantInvokeDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantInvokeDynamic) Tag() ConstantTag { return TagInvokeDynamic }

type ConstantModule struct {
	NameIndex uint16
}

func (c *ConstantModule) Tag() ConstantTag { return TagModule }

type ConstantPackage struct {
	NameIndex uint16
}

func (c *ConstantPackage) Tag() ConstantTag { return TagPackage }

// Method handle reference kinds.
const (
	RefGetField         = 1
	RefGetStatic        = 2
	RefPutField         = 3
	RefPutStatic        = 4
	RefInvokeVirtual    = 5
	RefInvokeStatic     = 6
	RefInvokeSpecial    = 7
	RefNewInvokeSpecial = 8
	RefInvokeInterface  = 9
)

// Method represents a method in a class file.
type Method struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Name            string
	Descriptor      string
	Attributes      []Attribute
}

// Field represents a field in a class file.
type Field struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Name            string
	Descriptor      string
	Attributes      []Attribute
}

// ExceptionHandler represents an entry in the exception table.
// CatchType 0 matches any exception (used for finally blocks).
type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// CodeSegment is the executable part of a method as returned by Method.Code.
// Its slices share storage with the decoded Class and must not be modified.
type CodeSegment struct {
	MaxStack          uint16
	MaxLocals         uint16
	Code              []byte
	ExceptionHandlers []ExceptionHandler
	Attributes        []Attribute
}
