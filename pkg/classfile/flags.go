package classfile

// AccessFlags is the access_flags bitmask of a class, field or method.
// Some bits mean different things depending on where they appear, e.g.
// 0x0020 is ACC_SUPER on a class and ACC_SYNCHRONIZED on a method.
type AccessFlags uint16

// Access flags
const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020
	AccSynchronized AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

// Has reports whether every bit of mask is set.
func (f AccessFlags) Has(mask AccessFlags) bool { return f&mask == mask }

func (f AccessFlags) IsPublic() bool       { return f.Has(AccPublic) }
func (f AccessFlags) IsPrivate() bool      { return f.Has(AccPrivate) }
func (f AccessFlags) IsProtected() bool    { return f.Has(AccProtected) }
func (f AccessFlags) IsStatic() bool       { return f.Has(AccStatic) }
func (f AccessFlags) IsFinal() bool        { return f.Has(AccFinal) }
func (f AccessFlags) IsSuper() bool        { return f.Has(AccSuper) }
func (f AccessFlags) IsSynchronized() bool { return f.Has(AccSynchronized) }
func (f AccessFlags) IsVolatile() bool     { return f.Has(AccVolatile) }
func (f AccessFlags) IsBridge() bool       { return f.Has(AccBridge) }
func (f AccessFlags) IsTransient() bool    { return f.Has(AccTransient) }
func (f AccessFlags) IsVarargs() bool      { return f.Has(AccVarargs) }
func (f AccessFlags) IsNative() bool       { return f.Has(AccNative) }
func (f AccessFlags) IsInterface() bool    { return f.Has(AccInterface) }
func (f AccessFlags) IsAbstract() bool     { return f.Has(AccAbstract) }
func (f AccessFlags) IsStrict() bool       { return f.Has(AccStrict) }
func (f AccessFlags) IsSynthetic() bool    { return f.Has(AccSynthetic) }
func (f AccessFlags) IsAnnotation() bool   { return f.Has(AccAnnotation) }
func (f AccessFlags) IsEnum() bool         { return f.Has(AccEnum) }
func (f AccessFlags) IsModule() bool       { return f.Has(AccModule) }

type flagName struct {
	flag AccessFlags
	name string
}

var (
	classFlagNames = []flagName{
		{AccPublic, "public"}, {AccFinal, "final"}, {AccSuper, "super"},
		{AccInterface, "interface"}, {AccAbstract, "abstract"}, {AccSynthetic, "synthetic"},
		{AccAnnotation, "annotation"}, {AccEnum, "enum"}, {AccModule, "module"},
	}
	fieldFlagNames = []flagName{
		{AccPublic, "public"}, {AccPrivate, "private"}, {AccProtected, "protected"},
		{AccStatic, "static"}, {AccFinal, "final"}, {AccVolatile, "volatile"},
		{AccTransient, "transient"}, {AccSynthetic, "synthetic"}, {AccEnum, "enum"},
	}
	methodFlagNames = []flagName{
		{AccPublic, "public"}, {AccPrivate, "private"}, {AccProtected, "protected"},
		{AccStatic, "static"}, {AccFinal, "final"}, {AccSynchronized, "synchronized"},
		{AccBridge, "bridge"}, {AccVarargs, "varargs"}, {AccNative, "native"},
		{AccAbstract, "abstract"}, {AccStrict, "strict"}, {AccSynthetic, "synthetic"},
	}
)

func names(f AccessFlags, table []flagName) []string {
	var out []string
	for _, fn := range table {
		if f.Has(fn.flag) {
			out = append(out, fn.name)
		}
	}
	return out
}

// ClassFlagNames returns the keywords for f interpreted as class flags.
func ClassFlagNames(f AccessFlags) []string { return names(f, classFlagNames) }

// FieldFlagNames returns the keywords for f interpreted as field flags.
func FieldFlagNames(f AccessFlags) []string { return names(f, fieldFlagNames) }

// MethodFlagNames returns the keywords for f interpreted as method flags.
func MethodFlagNames(f AccessFlags) []string { return names(f, methodFlagNames) }
