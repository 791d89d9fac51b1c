package typeinfo

import (
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// descriptorCache maps reflect.Type to *Descriptor for lock-free lookups.
var descriptorCache sync.Map

var registry = struct {
	mu   sync.Mutex
	byID map[TypeID]reflect.Type
}{
	byID: make(map[TypeID]reflect.Type),
}

// Describe returns the descriptor of T.
func Describe[T any]() *Descriptor {
	typ := reflect.TypeFor[T]()
	if v, ok := descriptorCache.Load(typ); ok {
		return v.(*Descriptor)
	}
	return register(typ, newGeneric[T](typ))
}

// DescribeType returns the descriptor of typ. Prefer Describe when the type
// is known statically: its thunks avoid reflection.
func DescribeType(typ reflect.Type) *Descriptor {
	if typ == nil {
		panic("typeinfo: nil type")
	}
	if v, ok := descriptorCache.Load(typ); ok {
		return v.(*Descriptor)
	}
	return register(typ, newReflect(typ))
}

// DescribeValue returns the descriptor of v's dynamic type.
func DescribeValue(v any) *Descriptor {
	return DescribeType(reflect.TypeOf(v))
}

// Lookup returns the already registered type for id.
func Lookup(id TypeID) (reflect.Type, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	typ, ok := registry.byID[id]
	return typ, ok
}

func register(typ reflect.Type, d *Descriptor) *Descriptor {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	// Lost a race with another registration of the same type.
	if v, ok := descriptorCache.Load(typ); ok {
		return v.(*Descriptor)
	}

	id := hashType(typ)
	for {
		owner, taken := registry.byID[id]
		if !taken || owner == typ {
			break
		}
		id++
	}
	d.id = id
	registry.byID[id] = typ
	descriptorCache.Store(typ, d)
	return d
}

func hashType(typ reflect.Type) TypeID {
	h := xxhash.New()
	_, _ = h.WriteString(typ.PkgPath())
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(typ.String())
	return TypeID(h.Sum64())
}
