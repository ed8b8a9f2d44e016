// Package semant defines the semantic Context the CIL lowering pass reads:
// the resolved class hierarchy, attribute and method tables produced by the
// (out of scope) type-checking stage. The lowering pass treats a Context as
// read-only (§5 of the specification).
package semant

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Attribute is a single class attribute as declared (not inherited).
type Attribute struct {
	Name string
	Type string
}

// Method is a single class method as declared (not inherited), with its
// parameter types and return type already resolved.
type Method struct {
	Name       string
	ParamTypes []string
	ReturnType string
}

// Type is one entry of the semantic Context: a class's name, parent and own
// (not inherited) attributes/methods, in source declaration order.
type Type struct {
	name       string
	parent     *Type
	attributes []Attribute
	methods    []Method
}

// Context maps a type name to its resolved Type record. It is built once by
// the (out of scope) inheritance-resolution pass and never mutated by this
// pass.
type Context struct {
	types map[string]*Type
	order []string // Insertion order, so iteration is deterministic (§5, §8 property 6).
}

// ---------------------
// ----- Constants -----
// ---------------------

// ObjectType names the root of every inheritance chain.
const ObjectType = "Object"

// ---------------------
// ----- Functions -----
// ---------------------

// NewContext returns an empty, ready to populate Context.
func NewContext() *Context {
	return &Context{types: make(map[string]*Type, 16)}
}

// Define registers a new Type named name with the given parent name (empty
// for Object) and returns it for the caller to fill in attributes/methods.
// Define panics if name is already defined or if parent is not yet defined
// (callers must define base classes before their descendants); both are
// internal-tooling invariants, never user input.
func (c *Context) Define(name, parentName string) *Type {
	if _, ok := c.types[name]; ok {
		panic(fmt.Sprintf("semant: type %q already defined", name))
	}
	t := &Type{name: name}
	if parentName != "" {
		parent, ok := c.types[parentName]
		if !ok {
			panic(fmt.Sprintf("semant: parent type %q of %q not yet defined", parentName, name))
		}
		t.parent = parent
	}
	c.types[name] = t
	c.order = append(c.order, name)
	return t
}

// AddAttribute appends an own attribute declaration to t, in source order.
func (t *Type) AddAttribute(name, typ string) {
	t.attributes = append(t.attributes, Attribute{Name: name, Type: typ})
}

// AddMethod appends an own method declaration to t, in source order.
func (t *Type) AddMethod(name, returnType string, paramTypes ...string) {
	t.methods = append(t.methods, Method{Name: name, ParamTypes: paramTypes, ReturnType: returnType})
}

// Name returns t's class name.
func (t *Type) Name() string {
	return t.name
}

// Parent returns t's parent Type, or nil if t is Object.
func (t *Type) Parent() *Type {
	return t.parent
}

// Attributes returns t's own (not inherited) attributes, in source order.
func (t *Type) Attributes() []Attribute {
	return t.attributes
}

// Methods returns t's own (not inherited) methods, in source order.
func (t *Type) Methods() []Method {
	return t.methods
}

// Chain returns the ancestor chain starting at t and ending at Object,
// i.e. [t, parent(t), ..., Object].
func (t *Type) Chain() []*Type {
	chain := make([]*Type, 0, 4)
	for cur := t; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	return chain
}

// AllAttributes returns every attribute visible to t, inherited first, then
// own, in inheritance order (base-first) as required by §3's layout
// invariant: for ancestor A of C, attrs(A) is a prefix of attrs(C).
func (t *Type) AllAttributes() []Attribute {
	chain := t.Chain()
	out := make([]Attribute, 0, 8)
	for i1 := len(chain) - 1; i1 >= 0; i1-- {
		out = append(out, chain[i1].attributes...)
	}
	return out
}

// AttributeBinding pairs a resolved Attribute with the Type that originally
// declares it, so a subclass can still name the correct, stable attribute
// symbol for an inherited slot.
type AttributeBinding struct {
	Attribute Attribute
	Declaring *Type
}

// AllAttributeBindings returns every attribute visible to t, base-first,
// each paired with the Type that declares it. Attribute names are unique
// across a chain (the source language forbids redeclaring an inherited
// attribute), so each name appears exactly once.
func (t *Type) AllAttributeBindings() []AttributeBinding {
	chain := t.Chain()
	out := make([]AttributeBinding, 0, 8)
	for i1 := len(chain) - 1; i1 >= 0; i1-- {
		ct := chain[i1]
		for _, a := range ct.attributes {
			out = append(out, AttributeBinding{Attribute: a, Declaring: ct})
		}
	}
	return out
}

// GetAttribute resolves attribute name for t by walking from t toward
// Object and returning the first declaration found, together with the Type
// that declares it. Declaring is nil if no class in t's ancestor chain
// declares name.
func (t *Type) GetAttribute(name string) (Attribute, *Type) {
	for cur := t; cur != nil; cur = cur.parent {
		for _, a := range cur.attributes {
			if a.Name == name {
				return a, cur
			}
		}
	}
	return Attribute{}, nil
}

// MethodBinding pairs a resolved Method with the Type that declares the
// symbol the lowering pass must call for it (the most-derived override).
type MethodBinding struct {
	Method    Method
	Declaring *Type
}

// AllMethods returns every method visible to t keyed by name, honoring
// overrides: each distinct method name appears once, base-first, bound to
// the most-derived declaring Type.
func (t *Type) AllMethods() []MethodBinding {
	chain := t.Chain()
	seen := make(map[string]bool, 8)

	// Walk base to derived to establish base-first name order, then
	// resolve each name's *symbol* by finding its most-derived
	// declaration (an override further down the chain wins).
	nameOrder := make([]string, 0, 8)
	for i1 := len(chain) - 1; i1 >= 0; i1-- {
		for _, m := range chain[i1].methods {
			if !seen[m.Name] {
				seen[m.Name] = true
				nameOrder = append(nameOrder, m.Name)
			}
		}
	}

	out := make([]MethodBinding, 0, len(nameOrder))
	for _, name := range nameOrder {
		m, declaring := t.GetMethod(name)
		out = append(out, MethodBinding{Method: m, Declaring: declaring})
	}
	return out
}

// GetMethod resolves method name for t by walking from t toward Object and
// returning the first (i.e. most-derived) declaration found, together with
// the Type that declares it. Declaring is nil if no class in t's ancestor
// chain declares name.
func (t *Type) GetMethod(name string) (Method, *Type) {
	for cur := t; cur != nil; cur = cur.parent {
		for _, m := range cur.methods {
			if m.Name == name {
				return m, cur
			}
		}
	}
	return Method{}, nil
}

// GetType looks up a Type by name. ok is false if name is not defined.
func (c *Context) GetType(name string) (*Type, bool) {
	t, ok := c.types[name]
	return t, ok
}

// Types returns every defined Type in definition order, which is also the
// order the lowering pass must walk them in to keep output deterministic
// (§5, §8 property 6).
func (c *Context) Types() []*Type {
	out := make([]*Type, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.types[n])
	}
	return out
}
