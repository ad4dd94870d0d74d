package bytecode

import "fmt"

// ObjectKind tags the payload of a heap object.
type ObjectKind uint8

const (
	// ObjString is a heap-allocated immutable byte string.
	ObjString ObjectKind = iota
)

// String returns a human-readable name for the object kind.
func (k ObjectKind) String() string {
	switch k {
	case ObjString:
		return "string"
	default:
		return fmt.Sprintf("ObjectKind(%d)", k)
	}
}

// Object is a heap-allocated value owned by exactly one VM instance
// (or, for literal constants, by the chunk that carries them).
//
// Every VM-allocated object is linked into the owning VM's registry
// list via next, most-recently-allocated first. The registry exists
// solely for bulk teardown: there is no reference counting and no
// tracing collector, so an object lives until VM.Free.
type Object struct {
	Kind ObjectKind
	next *Object

	// Payload for ObjString.
	chars []byte
}

// NewStringObject creates a free-standing string object owning the
// given bytes. The caller must not alias chars after the call.
func NewStringObject(chars []byte) *Object {
	return &Object{Kind: ObjString, chars: chars}
}

// StringObjectFrom creates a free-standing string object by copying s.
func StringObjectFrom(s string) *Object {
	return &Object{Kind: ObjString, chars: []byte(s)}
}

// Chars returns the string payload.
// Callers must treat the returned slice as read-only.
func (o *Object) Chars() []byte {
	return o.chars
}

// Len returns the payload length in bytes.
func (o *Object) Len() int {
	return len(o.chars)
}

// Equals reports structural equality. Strings compare by content.
func (o *Object) Equals(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.Kind != other.Kind {
		return false
	}
	switch o.Kind {
	case ObjString:
		return string(o.chars) == string(other.chars)
	default:
		return o == other
	}
}

// String returns the printed representation of the object.
func (o *Object) String() string {
	switch o.Kind {
	case ObjString:
		return string(o.chars)
	default:
		return fmt.Sprintf("<%s>", o.Kind)
	}
}

// ---------------------------------------------------------------------------
// Heap registry
// ---------------------------------------------------------------------------

// trackObject links an object at the head of the VM's registry list.
// Linking happens only after the payload is fully built, so a failed
// allocation can never leave a partial object in the registry.
func (vm *VM) trackObject(o *Object) *Object {
	o.next = vm.objects
	vm.objects = o
	vm.objectCount++
	return o
}

// allocateString allocates a VM-owned string object and registers it
// for teardown. This is the engine's only allocation path.
func (vm *VM) allocateString(chars []byte) *Object {
	return vm.trackObject(NewStringObject(chars))
}

// ObjectCount returns the number of live VM-owned heap objects.
func (vm *VM) ObjectCount() int {
	return vm.objectCount
}

// Objects returns the registry head, most-recently-allocated first.
// Exposed for inspection; callers must not mutate the list.
func (vm *VM) Objects() *Object {
	return vm.objects
}

// Free releases every heap object the VM has allocated, walking the
// registry once. The next link is captured before the node is cleared,
// since clearing invalidates it. After Free the VM holds no objects
// and may be reused.
func (vm *VM) Free() {
	obj := vm.objects
	for obj != nil {
		next := obj.next
		obj.chars = nil
		obj.next = nil
		obj = next
	}
	vm.objects = nil
	vm.objectCount = 0
}
