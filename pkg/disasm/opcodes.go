package disasm

import "fmt"

// Opcode is a JVM instruction opcode.
type Opcode uint8

// Opcodes
const (
	OpNop             Opcode = 0x00
	OpAconstNull      Opcode = 0x01
	OpIconstM1        Opcode = 0x02
	OpIconst0         Opcode = 0x03
	OpIconst1         Opcode = 0x04
	OpIconst2         Opcode = 0x05
	OpIconst3         Opcode = 0x06
	OpIconst4         Opcode = 0x07
	OpIconst5         Opcode = 0x08
	OpLconst0         Opcode = 0x09
	OpLconst1         Opcode = 0x0A
	OpFconst0         Opcode = 0x0B
	OpFconst1         Opcode = 0x0C
	OpFconst2         Opcode = 0x0D
	OpDconst0         Opcode = 0x0E
	OpDconst1         Opcode = 0x0F
	OpBipush          Opcode = 0x10
	OpSipush          Opcode = 0x11
	OpLdc             Opcode = 0x12
	OpLdcW            Opcode = 0x13
	OpLdc2W           Opcode = 0x14
	OpIload           Opcode = 0x15
	OpLload           Opcode = 0x16
	OpFload           Opcode = 0x17
	OpDload           Opcode = 0x18
	OpAload           Opcode = 0x19
	OpIload0          Opcode = 0x1A
	OpIload1          Opcode = 0x1B
	OpIload2          Opcode = 0x1C
	OpIload3          Opcode = 0x1D
	OpLload0          Opcode = 0x1E
	OpLload1          Opcode = 0x1F
	OpLload2          Opcode = 0x20
	OpLload3          Opcode = 0x21
	OpFload0          Opcode = 0x22
	OpFload1          Opcode = 0x23
	OpFload2          Opcode = 0x24
	OpFload3          Opcode = 0x25
	OpDload0          Opcode = 0x26
	OpDload1          Opcode = 0x27
	OpDload2          Opcode = 0x28
	OpDload3          Opcode = 0x29
	OpAload0          Opcode = 0x2A
	OpAload1          Opcode = 0x2B
	OpAload2          Opcode = 0x2C
	OpAload3          Opcode = 0x2D
	OpIaload          Opcode = 0x2E
	OpLaload          Opcode = 0x2F
	OpFaload          Opcode = 0x30
	OpDaload          Opcode = 0x31
	OpAaload          Opcode = 0x32
	OpBaload          Opcode = 0x33
	OpCaload          Opcode = 0x34
	OpSaload          Opcode = 0x35
	OpIstore          Opcode = 0x36
	OpLstore          Opcode = 0x37
	OpFstore          Opcode = 0x38
	OpDstore          Opcode = 0x39
	OpAstore          Opcode = 0x3A
	OpIstore0         Opcode = 0x3B
	OpIstore1         Opcode = 0x3C
	OpIstore2         Opcode = 0x3D
	OpIstore3         Opcode = 0x3E
	OpLstore0         Opcode = 0x3F
	OpLstore1         Opcode = 0x40
	OpLstore2         Opcode = 0x41
	OpLstore3         Opcode = 0x42
	OpFstore0         Opcode = 0x43
	OpFstore1         Opcode = 0x44
	OpFstore2         Opcode = 0x45
	OpFstore3         Opcode = 0x46
	OpDstore0         Opcode = 0x47
	OpDstore1         Opcode = 0x48
	OpDstore2         Opcode = 0x49
	OpDstore3         Opcode = 0x4A
	OpAstore0         Opcode = 0x4B
	OpAstore1         Opcode = 0x4C
	OpAstore2         Opcode = 0x4D
	OpAstore3         Opcode = 0x4E
	OpIastore         Opcode = 0x4F
	OpLastore         Opcode = 0x50
	OpFastore         Opcode = 0x51
	OpDastore         Opcode = 0x52
	OpAastore         Opcode = 0x53
	OpBastore         Opcode = 0x54
	OpCastore         Opcode = 0x55
	OpSastore         Opcode = 0x56
	OpPop             Opcode = 0x57
	OpPop2            Opcode = 0x58
	OpDup             Opcode = 0x59
	OpDupX1           Opcode = 0x5A
	OpDupX2           Opcode = 0x5B
	OpDup2            Opcode = 0x5C
	OpDup2X1          Opcode = 0x5D
	OpDup2X2          Opcode = 0x5E
	OpSwap            Opcode = 0x5F
	OpIadd            Opcode = 0x60
	OpLadd            Opcode = 0x61
	OpFadd            Opcode = 0x62
	OpDadd            Opcode = 0x63
	OpIsub            Opcode = 0x64
	OpLsub            Opcode = 0x65
	OpFsub            Opcode = 0x66
	OpDsub            Opcode = 0x67
	OpImul            Opcode = 0x68
	OpLmul            Opcode = 0x69
	OpFmul            Opcode = 0x6A
	OpDmul            Opcode = 0x6B
	OpIdiv            Opcode = 0x6C
	OpLdiv            Opcode = 0x6D
	OpFdiv            Opcode = 0x6E
	OpDdiv            Opcode = 0x6F
	OpIrem            Opcode = 0x70
	OpLrem            Opcode = 0x71
	OpFrem            Opcode = 0x72
	OpDrem            Opcode = 0x73
	OpIneg            Opcode = 0x74
	OpLneg            Opcode = 0x75
	OpFneg            Opcode = 0x76
	OpDneg            Opcode = 0x77
	OpIshl            Opcode = 0x78
	OpLshl            Opcode = 0x79
	OpIshr            Opcode = 0x7A
	OpLshr            Opcode = 0x7B
	OpIushr           Opcode = 0x7C
	OpLushr           Opcode = 0x7D
	OpIand            Opcode = 0x7E
	OpLand            Opcode = 0x7F
	OpIor             Opcode = 0x80
	OpLor             Opcode = 0x81
	OpIxor            Opcode = 0x82
	OpLxor            Opcode = 0x83
	OpIinc            Opcode = 0x84
	OpI2l             Opcode = 0x85
	OpI2f             Opcode = 0x86
	OpI2d             Opcode = 0x87
	OpL2i             Opcode = 0x88
	OpL2f             Opcode = 0x89
	OpL2d             Opcode = 0x8A
	OpF2i             Opcode = 0x8B
	OpF2l             Opcode = 0x8C
	OpF2d             Opcode = 0x8D
	OpD2i             Opcode = 0x8E
	OpD2l             Opcode = 0x8F
	OpD2f             Opcode = 0x90
	OpI2b             Opcode = 0x91
	OpI2c             Opcode = 0x92
	OpI2s             Opcode = 0x93
	OpLcmp            Opcode = 0x94
	OpFcmpl           Opcode = 0x95
	OpFcmpg           Opcode = 0x96
	OpDcmpl           Opcode = 0x97
	OpDcmpg           Opcode = 0x98
	OpIfeq            Opcode = 0x99
	OpIfne            Opcode = 0x9A
	OpIflt            Opcode = 0x9B
	OpIfge            Opcode = 0x9C
	OpIfgt            Opcode = 0x9D
	OpIfle            Opcode = 0x9E
	OpIfIcmpeq        Opcode = 0x9F
	OpIfIcmpne        Opcode = 0xA0
	OpIfIcmplt        Opcode = 0xA1
	OpIfIcmpge        Opcode = 0xA2
	OpIfIcmpgt        Opcode = 0xA3
	OpIfIcmple        Opcode = 0xA4
	OpIfAcmpeq        Opcode = 0xA5
	OpIfAcmpne        Opcode = 0xA6
	OpGoto            Opcode = 0xA7
	OpJsr             Opcode = 0xA8
	OpRet             Opcode = 0xA9
	OpTableswitch     Opcode = 0xAA
	OpLookupswitch    Opcode = 0xAB
	OpIreturn         Opcode = 0xAC
	OpLreturn         Opcode = 0xAD
	OpFreturn         Opcode = 0xAE
	OpDreturn         Opcode = 0xAF
	OpAreturn         Opcode = 0xB0
	OpReturn          Opcode = 0xB1
	OpGetstatic       Opcode = 0xB2
	OpPutstatic       Opcode = 0xB3
	OpGetfield        Opcode = 0xB4
	OpPutfield        Opcode = 0xB5
	OpInvokevirtual   Opcode = 0xB6
	OpInvokespecial   Opcode = 0xB7
	OpInvokestatic    Opcode = 0xB8
	OpInvokeinterface Opcode = 0xB9
	OpInvokedynamic   Opcode = 0xBA
	OpNew             Opcode = 0xBB
	OpNewarray        Opcode = 0xBC
	OpAnewarray       Opcode = 0xBD
	OpArraylength     Opcode = 0xBE
	OpAthrow          Opcode = 0xBF
	OpCheckcast       Opcode = 0xC0
	OpInstanceof      Opcode = 0xC1
	OpMonitorenter    Opcode = 0xC2
	OpMonitorexit     Opcode = 0xC3
	OpWide            Opcode = 0xC4
	OpMultianewarray  Opcode = 0xC5
	OpIfnull          Opcode = 0xC6
	OpIfnonnull       Opcode = 0xC7
	OpGotoW           Opcode = 0xC8
	OpJsrW            Opcode = 0xC9
)

// operandKind describes the operand bytes that follow an opcode.
type operandKind uint8

const (
	operandNone operandKind = iota
	operandLocal            // u1 local variable index, u2 under wide
	operandByte             // s1 immediate
	operandShort            // s2 immediate
	operandConst1           // u1 constant pool index
	operandConst2           // u2 constant pool index
	operandBranch2          // s2 branch offset
	operandBranch4          // s4 branch offset
	operandIinc             // local index and signed increment
	operandNewarray         // u1 array type code
	operandInvokeInterface  // u2 index, u1 count, u1 zero
	operandInvokeDynamic    // u2 index, two zero bytes
	operandMultianewarray   // u2 index, u1 dimensions
	operandTableswitch
	operandLookupswitch
	operandWide
)

type opInfo struct {
	name string
	kind operandKind
}

var opcodes = [256]opInfo{
	OpNop:             {"nop", operandNone},
	OpAconstNull:      {"aconst_null", operandNone},
	OpIconstM1:        {"iconst_m1", operandNone},
	OpIconst0:         {"iconst_0", operandNone},
	OpIconst1:         {"iconst_1", operandNone},
	OpIconst2:         {"iconst_2", operandNone},
	OpIconst3:         {"iconst_3", operandNone},
	OpIconst4:         {"iconst_4", operandNone},
	OpIconst5:         {"iconst_5", operandNone},
	OpLconst0:         {"lconst_0", operandNone},
	OpLconst1:         {"lconst_1", operandNone},
	OpFconst0:         {"fconst_0", operandNone},
	OpFconst1:         {"fconst_1", operandNone},
	OpFconst2:         {"fconst_2", operandNone},
	OpDconst0:         {"dconst_0", operandNone},
	OpDconst1:         {"dconst_1", operandNone},
	OpBipush:          {"bipush", operandByte},
	OpSipush:          {"sipush", operandShort},
	OpLdc:             {"ldc", operandConst1},
	OpLdcW:            {"ldc_w", operandConst2},
	OpLdc2W:           {"ldc2_w", operandConst2},
	OpIload:           {"iload", operandLocal},
	OpLload:           {"lload", operandLocal},
	OpFload:           {"fload", operandLocal},
	OpDload:           {"dload", operandLocal},
	OpAload:           {"aload", operandLocal},
	OpIload0:          {"iload_0", operandNone},
	OpIload1:          {"iload_1", operandNone},
	OpIload2:          {"iload_2", operandNone},
	OpIload3:          {"iload_3", operandNone},
	OpLload0:          {"lload_0", operandNone},
	OpLload1:          {"lload_1", operandNone},
	OpLload2:          {"lload_2", operandNone},
	OpLload3:          {"lload_3", operandNone},
	OpFload0:          {"fload_0", operandNone},
	OpFload1:          {"fload_1", operandNone},
	OpFload2:          {"fload_2", operandNone},
	OpFload3:          {"fload_3", operandNone},
	OpDload0:          {"dload_0", operandNone},
	OpDload1:          {"dload_1", operandNone},
	OpDload2:          {"dload_2", operandNone},
	OpDload3:          {"dload_3", operandNone},
	OpAload0:          {"aload_0", operandNone},
	OpAload1:          {"aload_1", operandNone},
	OpAload2:          {"aload_2", operandNone},
	OpAload3:          {"aload_3", operandNone},
	OpIaload:          {"iaload", operandNone},
	OpLaload:          {"laload", operandNone},
	OpFaload:          {"faload", operandNone},
	OpDaload:          {"daload", operandNone},
	OpAaload:          {"aaload", operandNone},
	OpBaload:          {"baload", operandNone},
	OpCaload:          {"caload", operandNone},
	OpSaload:          {"saload", operandNone},
	OpIstore:          {"istore", operandLocal},
	OpLstore:          {"lstore", operandLocal},
	OpFstore:          {"fstore", operandLocal},
	OpDstore:          {"dstore", operandLocal},
	OpAstore:          {"astore", operandLocal},
	OpIstore0:         {"istore_0", operandNone},
	OpIstore1:         {"istore_1", operandNone},
	OpIstore2:         {"istore_2", operandNone},
	OpIstore3:         {"istore_3", operandNone},
	OpLstore0:         {"lstore_0", operandNone},
	OpLstore1:         {"lstore_1", operandNone},
	OpLstore2:         {"lstore_2", operandNone},
	OpLstore3:         {"lstore_3", operandNone},
	OpFstore0:         {"fstore_0", operandNone},
	OpFstore1:         {"fstore_1", operandNone},
	OpFstore2:         {"fstore_2", operandNone},
	OpFstore3:         {"fstore_3", operandNone},
	OpDstore0:         {"dstore_0", operandNone},
	OpDstore1:         {"dstore_1", operandNone},
	OpDstore2:         {"dstore_2", operandNone},
	OpDstore3:         {"dstore_3", operandNone},
	OpAstore0:         {"astore_0", operandNone},
	OpAstore1:         {"astore_1", operandNone},
	OpAstore2:         {"astore_2", operandNone},
	OpAstore3:         {"astore_3", operandNone},
	OpIastore:         {"iastore", operandNone},
	OpLastore:         {"lastore", operandNone},
	OpFastore:         {"fastore", operandNone},
	OpDastore:         {"dastore", operandNone},
	OpAastore:         {"aastore", operandNone},
	OpBastore:         {"bastore", operandNone},
	OpCastore:         {"castore", operandNone},
	OpSastore:         {"sastore", operandNone},
	OpPop:             {"pop", operandNone},
	OpPop2:            {"pop2", operandNone},
	OpDup:             {"dup", operandNone},
	OpDupX1:           {"dup_x1", operandNone},
	OpDupX2:           {"dup_x2", operandNone},
	OpDup2:            {"dup2", operandNone},
	OpDup2X1:          {"dup2_x1", operandNone},
	OpDup2X2:          {"dup2_x2", operandNone},
	OpSwap:            {"swap", operandNone},
	OpIadd:            {"iadd", operandNone},
	OpLadd:            {"ladd", operandNone},
	OpFadd:            {"fadd", operandNone},
	OpDadd:            {"dadd", operandNone},
	OpIsub:            {"isub", operandNone},
	OpLsub:            {"lsub", operandNone},
	OpFsub:            {"fsub", operandNone},
	OpDsub:            {"dsub", operandNone},
	OpImul:            {"imul", operandNone},
	OpLmul:            {"lmul", operandNone},
	OpFmul:            {"fmul", operandNone},
	OpDmul:            {"dmul", operandNone},
	OpIdiv:            {"idiv", operandNone},
	OpLdiv:            {"ldiv", operandNone},
	OpFdiv:            {"fdiv", operandNone},
	OpDdiv:            {"ddiv", operandNone},
	OpIrem:            {"irem", operandNone},
	OpLrem:            {"lrem", operandNone},
	OpFrem:            {"frem", operandNone},
	OpDrem:            {"drem", operandNone},
	OpIneg:            {"ineg", operandNone},
	OpLneg:            {"lneg", operandNone},
	OpFneg:            {"fneg", operandNone},
	OpDneg:            {"dneg", operandNone},
	OpIshl:            {"ishl", operandNone},
	OpLshl:            {"lshl", operandNone},
	OpIshr:            {"ishr", operandNone},
	OpLshr:            {"lshr", operandNone},
	OpIushr:           {"iushr", operandNone},
	OpLushr:           {"lushr", operandNone},
	OpIand:            {"iand", operandNone},
	OpLand:            {"land", operandNone},
	OpIor:             {"ior", operandNone},
	OpLor:             {"lor", operandNone},
	OpIxor:            {"ixor", operandNone},
	OpLxor:            {"lxor", operandNone},
	OpIinc:            {"iinc", operandIinc},
	OpI2l:             {"i2l", operandNone},
	OpI2f:             {"i2f", operandNone},
	OpI2d:             {"i2d", operandNone},
	OpL2i:             {"l2i", operandNone},
	OpL2f:             {"l2f", operandNone},
	OpL2d:             {"l2d", operandNone},
	OpF2i:             {"f2i", operandNone},
	OpF2l:             {"f2l", operandNone},
	OpF2d:             {"f2d", operandNone},
	OpD2i:             {"d2i", operandNone},
	OpD2l:             {"d2l", operandNone},
	OpD2f:             {"d2f", operandNone},
	OpI2b:             {"i2b", operandNone},
	OpI2c:             {"i2c", operandNone},
	OpI2s:             {"i2s", operandNone},
	OpLcmp:            {"lcmp", operandNone},
	OpFcmpl:           {"fcmpl", operandNone},
	OpFcmpg:           {"fcmpg", operandNone},
	OpDcmpl:           {"dcmpl", operandNone},
	OpDcmpg:           {"dcmpg", operandNone},
	OpIfeq:            {"ifeq", operandBranch2},
	OpIfne:            {"ifne", operandBranch2},
	OpIflt:            {"iflt", operandBranch2},
	OpIfge:            {"ifge", operandBranch2},
	OpIfgt:            {"ifgt", operandBranch2},
	OpIfle:            {"ifle", operandBranch2},
	OpIfIcmpeq:        {"if_icmpeq", operandBranch2},
	OpIfIcmpne:        {"if_icmpne", operandBranch2},
	OpIfIcmplt:        {"if_icmplt", operandBranch2},
	OpIfIcmpge:        {"if_icmpge", operandBranch2},
	OpIfIcmpgt:        {"if_icmpgt", operandBranch2},
	OpIfIcmple:        {"if_icmple", operandBranch2},
	OpIfAcmpeq:        {"if_acmpeq", operandBranch2},
	OpIfAcmpne:        {"if_acmpne", operandBranch2},
	OpGoto:            {"goto", operandBranch2},
	OpJsr:             {"jsr", operandBranch2},
	OpRet:             {"ret", operandLocal},
	OpTableswitch:     {"tableswitch", operandTableswitch},
	OpLookupswitch:    {"lookupswitch", operandLookupswitch},
	OpIreturn:         {"ireturn", operandNone},
	OpLreturn:         {"lreturn", operandNone},
	OpFreturn:         {"freturn", operandNone},
	OpDreturn:         {"dreturn", operandNone},
	OpAreturn:         {"areturn", operandNone},
	OpReturn:          {"return", operandNone},
	OpGetstatic:       {"getstatic", operandConst2},
	OpPutstatic:       {"putstatic", operandConst2},
	OpGetfield:        {"getfield", operandConst2},
	OpPutfield:        {"putfield", operandConst2},
	OpInvokevirtual:   {"invokevirtual", operandConst2},
	OpInvokespecial:   {"invokespecial", operandConst2},
	OpInvokestatic:    {"invokestatic", operandConst2},
	OpInvokeinterface: {"invokeinterface", operandInvokeInterface},
	OpInvokedynamic:   {"invokedynamic", operandInvokeDynamic},
	OpNew:             {"new", operandConst2},
	OpNewarray:        {"newarray", operandNewarray},
	OpAnewarray:       {"anewarray", operandConst2},
	OpArraylength:     {"arraylength", operandNone},
	OpAthrow:          {"athrow", operandNone},
	OpCheckcast:       {"checkcast", operandConst2},
	OpInstanceof:      {"instanceof", operandConst2},
	OpMonitorenter:    {"monitorenter", operandNone},
	OpMonitorexit:     {"monitorexit", operandNone},
	OpWide:            {"wide", operandWide},
	OpMultianewarray:  {"multianewarray", operandMultianewarray},
	OpIfnull:          {"ifnull", operandBranch2},
	OpIfnonnull:       {"ifnonnull", operandBranch2},
	OpGotoW:           {"goto_w", operandBranch4},
	OpJsrW:            {"jsr_w", operandBranch4},
}

// Valid reports whether o is an opcode that may appear in a class file.
func (o Opcode) Valid() bool { return opcodes[o].name != "" }

// String returns the mnemonic, e.g. "invokevirtual".
func (o Opcode) String() string {
	if !o.Valid() {
		return fmt.Sprintf("opcode(0x%02X)", uint8(o))
	}
	return opcodes[o].name
}

var arrayTypeNames = map[int32]string{
	4:  "boolean",
	5:  "char",
	6:  "float",
	7:  "double",
	8:  "byte",
	9:  "short",
	10: "int",
	11: "long",
}
