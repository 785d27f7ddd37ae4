package value

import (
	"strings"

	"github.com/cactus-lang/cactus/internal/ast"
)

// UserFunction is a closure: a function's syntax body bundled with the
// scope chain captured at its declaration site (spec.md §3 Glossary).
type UserFunction struct {
	Decl    *ast.FuncDecl
	Closure *Environment
}

func (UserFunction) Type() string     { return "FUNCTION" }
func (u UserFunction) String() string { return "<function " + u.Decl.Name + ">" }

// StructDescriptor describes a struct type: its ordered field list and any
// inline methods declared in the struct body.
type StructDescriptor struct {
	Name    string
	Fields  []ast.StructField
	Methods []*ast.FuncDecl
}

func (StructDescriptor) Type() string       { return "STRUCT_TYPE" }
func (s StructDescriptor) String() string { return "<struct " + s.Name + ">" }

// StructInstance is a struct descriptor bound to concrete field values.
type StructInstance struct {
	Descriptor *StructDescriptor
	Fields     *map[string]Value
}

// NewStructInstance builds an instance with every field present in the
// descriptor, defaulting missing trailing constructor arguments to None
// (spec.md §4.4).
func NewStructInstance(desc *StructDescriptor, args []Value) StructInstance {
	fields := make(map[string]Value, len(desc.Fields))
	for i, f := range desc.Fields {
		if i < len(args) {
			fields[f.Name] = args[i]
		} else {
			fields[f.Name] = Nil
		}
	}
	return StructInstance{Descriptor: desc, Fields: &fields}
}

func (StructInstance) Type() string { return "STRUCT" }

func (s StructInstance) String() string {
	var sb strings.Builder
	sb.WriteString(s.Descriptor.Name)
	sb.WriteString("{")
	for i, f := range s.Descriptor.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(": ")
		sb.WriteString(elementRepr((*s.Fields)[f.Name]))
	}
	sb.WriteString("}")
	return sb.String()
}

// Get reads a field; ok is false if the field does not exist on this
// struct (spec.md §4.5: "member not present on struct → runtime failure").
func (s StructInstance) Get(name string) (Value, bool) {
	v, ok := (*s.Fields)[name]
	return v, ok
}

// Set writes a field in place; struct instances have reference semantics
// like lists and maps (spec.md §3).
func (s StructInstance) Set(name string, v Value) {
	(*s.Fields)[name] = v
}

// EnumDescriptor maps each variant name to its own name as a value
// (spec.md §3).
type EnumDescriptor struct {
	Name     string
	Variants map[string]string
	Order    []string
}

func (EnumDescriptor) Type() string       { return "ENUM_TYPE" }
func (e EnumDescriptor) String() string { return "<enum " + e.Name + ">" }

// ContractValue is a contract handle: a name plus the environment
// captured when its body executed (spec.md §4.4).
type ContractValue struct {
	Name string
	Env  *Environment
}

func (ContractValue) Type() string     { return "CONTRACT" }
func (c ContractValue) String() string { return "<contract " + c.Name + ">" }
