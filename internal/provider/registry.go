package provider

import (
	"fmt"
	"sync"
)

// ReverseArrowEntry is one row of the REVERSE_ARROW_LIST: type prefixes
// earlier in the list are the "outer" context and win direction ties, per
// §4.5.
type ReverseArrowEntry struct {
	TypePrefix string
}

// AutoAnnotation is one row of AUTO_ANNOTATIONS (§4.7): an automatic edge
// from every node matching Prefix to Target (which may end in ".*").
type AutoAnnotation struct {
	Prefix    string
	Target    string
	Direction string // "forward" | "reverse"
	Delete    []string
}

// NodeVariant maps a base type to its keyword->variant-type table (§4.8).
type NodeVariant struct {
	BaseType string
	Keywords map[string]string
}

// HandlerOp is one declarative transformation op from the §4.9 vocabulary.
type HandlerOp struct {
	Op         string
	Params     map[string]string
}

// HandlerSpec is one SPECIAL_RESOURCES entry (§4.9): a prefix mapped to a
// declarative op list and/or an imperative handler name, with an explicit
// before/after execution order.
type HandlerSpec struct {
	Prefix            string
	Ops               []HandlerOp
	ImperativeHandler string // resolved against the function registry below
	ExecutionOrder    string // "before" | "after" (default "after")
}

// Tables is the full per-provider rule-table bundle the loader hands to
// the pipeline, per §4.3's enumeration.
type Tables struct {
	Name string

	ConsolidatedNodes     map[string]string // type prefix -> canonical id
	GroupNodes            map[string]bool   // type -> is a containment/group node
	EdgeNodes             map[string]bool
	OuterNodes            map[string]bool
	AutoAnnotations       []AutoAnnotation
	NodeVariants          []NodeVariant
	ReverseArrowList      []ReverseArrowEntry
	ForcedDest            map[string]string
	ForcedOrigin          map[string]string
	ImpliedConnections    map[string]string // attribute keyword -> implied target type
	SpecialResources      []HandlerSpec
	SharedServices        map[string]bool
	AlwaysDrawLine        map[string]bool
	NeverDrawLine         map[string]bool
	DisconnectList        [][2]string
	NameReplacements      map[string]string
	MultiInstancePatterns map[string]string // type -> trigger attribute (e.g. subnet_ids)
}

// ReverseArrowRank returns the position of typ's prefix in ReverseArrowList
// (lower = earlier = wins ties), or -1 if not present.
func (t *Tables) ReverseArrowRank(typ string) int {
	for i, e := range t.ReverseArrowList {
		if hasPrefix(typ, e.TypePrefix) {
			return i
		}
	}
	return -1
}

func hasPrefix(s, prefix string) bool {
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)] == prefix
}

// Registry is a thread-safe provider-name -> Tables lookup, mirroring the
// teacher's EngineRegistry (Register/Get/MustGet; Register returns an
// error on duplicate registration) and replacing the original's PROVIDER_CONFIG_MODULES dict
// (SPEC_FULL §3).
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Tables
}

func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Tables)}
}

func (r *Registry) Register(t *Tables) error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("provider: table has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tables[t.Name]; exists {
		return fmt.Errorf("provider: tables %q already registered", t.Name)
	}
	r.tables[t.Name] = t
	return nil
}

func (r *Registry) Get(name string) (*Tables, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

func (r *Registry) MustGet(name string) *Tables {
	t, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("provider: tables %q not registered", name))
	}
	return t
}

// Default is the process-wide registry populated by each provider
// sub-package's init().
var Default = NewRegistry()
