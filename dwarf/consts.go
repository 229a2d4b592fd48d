package dwarf

// Tag identifies a DIE's kind (DW_TAG_*).
type Tag uint32

const (
	TagArrayType       Tag = 0x01
	TagClassType       Tag = 0x02
	TagEntryPoint      Tag = 0x03
	TagEnumerationType Tag = 0x04
	TagFormalParameter Tag = 0x05
	TagImportedDecl    Tag = 0x08
	TagLabel           Tag = 0x0a
	TagLexDwarfBlock   Tag = 0x0b
	TagMember          Tag = 0x0d
	TagPointerType     Tag = 0x0f
	TagReferenceType   Tag = 0x10
	TagCompileUnit     Tag = 0x11
	TagStructType      Tag = 0x13
	TagSubroutineType  Tag = 0x15
	TagTypedef         Tag = 0x16
	TagUnionType       Tag = 0x17
	TagUnspecParams    Tag = 0x18
	TagVariant         Tag = 0x19
	TagInheritance     Tag = 0x1c
	TagSubrangeType    Tag = 0x21
	TagBaseType        Tag = 0x24
	TagConstType       Tag = 0x26
	TagEnumerator      Tag = 0x28
	TagSubprogram      Tag = 0x2e
	TagVariable        Tag = 0x34
	TagVolatileType    Tag = 0x35
	TagRestrictType    Tag = 0x37
	TagNamespace       Tag = 0x39
	TagUnspecifiedType Tag = 0x3b
	TagPartialUnit     Tag = 0x3c
	TagImportedUnit    Tag = 0x3d
	TagTypeUnit        Tag = 0x41
	TagLoUser          Tag = 0x4080
	TagHiUser          Tag = 0xffff
)

// Attr identifies a DIE attribute name (DW_AT_*).
type Attr uint32

const (
	AttrSibling       Attr = 0x01
	AttrLocation      Attr = 0x02
	AttrName          Attr = 0x03
	AttrByteSize      Attr = 0x0b
	AttrStmtList      Attr = 0x10
	AttrLowPC         Attr = 0x11
	AttrHighPC        Attr = 0x12
	AttrLanguage      Attr = 0x13
	AttrCompDir       Attr = 0x1b
	AttrConstValue    Attr = 0x1c
	AttrUpperBound    Attr = 0x2f
	AttrAbstractOrig  Attr = 0x31
	AttrArtificial    Attr = 0x34
	AttrDataMemberLoc Attr = 0x38
	AttrDeclFile      Attr = 0x3a
	AttrDeclLine      Attr = 0x3b
	AttrDeclColumn    Attr = 0x39
	AttrDeclaration   Attr = 0x3c
	AttrEncoding      Attr = 0x3e
	AttrExternal      Attr = 0x3f
	AttrFrameBase     Attr = 0x40
	AttrFriend        Attr = 0x41
	AttrSpecification Attr = 0x47
	AttrType          Attr = 0x49
	AttrRanges        Attr = 0x55
	AttrCallFile      Attr = 0x58
	AttrCallLine      Attr = 0x59
	AttrCallColumn    Attr = 0x57
)

// Form identifies the on-disk encoding of an attribute value (DW_FORM_*).
type Form uint32

const (
	FormAddr        Form = 0x01
	FormBlock2      Form = 0x03
	FormBlock4      Form = 0x04
	FormData2       Form = 0x05
	FormData4       Form = 0x06
	FormData8       Form = 0x07
	FormString      Form = 0x08
	FormBlock       Form = 0x09
	FormBlock1      Form = 0x0a
	FormData1       Form = 0x0b
	FormFlag        Form = 0x0c
	FormSdata       Form = 0x0d
	FormStrp        Form = 0x0e
	FormUdata       Form = 0x0f
	FormRefAddr     Form = 0x10
	FormRef1        Form = 0x11
	FormRef2        Form = 0x12
	FormRef4        Form = 0x13
	FormRef8        Form = 0x14
	FormRefUdata    Form = 0x15
	FormIndirect    Form = 0x16
	FormSecOffset   Form = 0x17
	FormExprloc     Form = 0x18
	FormFlagPresent Form = 0x19
	FormRefSig8     Form = 0x20
)

// Op identifies a DWARF expression opcode (DW_OP_*).
type Op byte

const (
	OpAddr             Op = 0x03
	OpDeref             Op = 0x06
	OpConst1u          Op = 0x08
	OpConst1s          Op = 0x09
	OpConst2u          Op = 0x0a
	OpConst2s          Op = 0x0b
	OpConst4u          Op = 0x0c
	OpConst4s          Op = 0x0d
	OpConst8u          Op = 0x0e
	OpConst8s          Op = 0x0f
	OpConstu           Op = 0x10
	OpConsts           Op = 0x11
	OpDup              Op = 0x12
	OpDrop             Op = 0x13
	OpOver             Op = 0x14
	OpPick             Op = 0x15
	OpSwap             Op = 0x16
	OpRot              Op = 0x17
	OpXderef           Op = 0x18
	OpAbs              Op = 0x19
	OpAnd              Op = 0x1a
	OpDiv              Op = 0x1b
	OpMinus            Op = 0x1c
	OpMod              Op = 0x1d
	OpMul              Op = 0x1e
	OpNeg              Op = 0x1f
	OpNot              Op = 0x20
	OpOr               Op = 0x21
	OpPlus             Op = 0x22
	OpPlusUconst       Op = 0x23
	OpShl              Op = 0x24
	OpShr              Op = 0x25
	OpShra             Op = 0x26
	OpXor              Op = 0x27
	OpSkip             Op = 0x2f
	OpBra              Op = 0x28
	OpEq               Op = 0x29
	OpGe               Op = 0x2a
	OpGt               Op = 0x2b
	OpLe               Op = 0x2c
	OpLt               Op = 0x2d
	OpNe               Op = 0x2e
	OpLit0             Op = 0x30
	OpLit31            Op = 0x4f
	OpReg0             Op = 0x50
	OpReg31            Op = 0x6f
	OpBreg0            Op = 0x70
	OpBreg31           Op = 0x8f
	OpRegx             Op = 0x90
	OpFbreg            Op = 0x91
	OpBregx            Op = 0x92
	OpPiece            Op = 0x93
	OpDerefSize        Op = 0x94
	OpXderefSize       Op = 0x95
	OpNop              Op = 0x96
	OpPushObjectAddr   Op = 0x97
	OpCall2            Op = 0x98
	OpCall4            Op = 0x99
	OpCallRef          Op = 0x9a
	OpFormTLSAddress   Op = 0x9b
	OpCallFrameCFA     Op = 0x9c
	OpBitPiece         Op = 0x9d
	OpImplicitValue    Op = 0x9e
	OpStackValue       Op = 0x9f
	OpLoUser           Op = 0xe0
	OpHiUser           Op = 0xff
)

// LNS identifies a standard line-number-program opcode (DW_LNS_*).
type LNS byte

const (
	LNSCopy             LNS = 1
	LNSAdvancePC        LNS = 2
	LNSAdvanceLine      LNS = 3
	LNSSetFile          LNS = 4
	LNSSetColumn        LNS = 5
	LNSNegateStmt       LNS = 6
	LNSSetBasicBlock    LNS = 7
	LNSConstAddPC       LNS = 8
	LNSFixedAdvancePC   LNS = 9
	LNSSetPrologueEnd   LNS = 10
	LNSSetEpilogueBegin LNS = 11
	LNSSetISA           LNS = 12
)

// LNE identifies an extended line-number-program opcode (DW_LNE_*).
type LNE byte

const (
	LNEEndSequence    LNE = 1
	LNESetAddress     LNE = 2
	LNEDefineFile     LNE = 3
	LNESetDiscrimin   LNE = 4
	LNELoUser         LNE = 0x80
	LNEHiUser         LNE = 0xff
)
