package graph

import (
	"sort"

	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

// Metadata is the attribute map carried per node. Required keys per §3:
// name, type, provider.
type Metadata map[string]tfvalue.Value

func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ProviderDetection is the §6 output block describing which cloud
// provider(s) were detected in the input.
type ProviderDetection struct {
	PrimaryProvider string         `json:"primary_provider"`
	Providers       []string       `json:"providers"`
	ResourceCounts  map[string]int `json:"resource_counts"`
	Confidence      float64        `json:"confidence"`
}

// TfData is the pipeline's threaded state object: every pass takes one and
// returns a transformed one (spec §2: "Each stage takes a TfData state
// object and returns a transformed TfData").
type TfData struct {
	GraphDict  map[string][]string `json:"graphdict"`
	MetaData   map[string]Metadata `json:"meta_data"`
	Hidden     map[string]bool     `json:"-"`
	HiddenList []string            `json:"hidden"`

	OriginalGraphDict map[string][]string `json:"original_graphdict"`
	OriginalMetadata  map[string]Metadata `json:"original_metadata"`

	ProviderDetection ProviderDetection `json:"provider_detection"`

	// NodeList is the deduplicated planner-order sequence of identifiers
	// produced by C2; later passes that must iterate in "node_list
	// iteration order" (spec §4.9) read this rather than map range order.
	NodeList []string `json:"-"`

	// Module-scoping symbol tables threaded from C2 into C1.
	VariableMap    map[string]map[string]tfvalue.Value `json:"-"`
	AllLocals      map[string]map[string]tfvalue.Value `json:"-"`
	ModuleOutputs  map[string]map[string]tfvalue.Value `json:"-"`
	ModuleOf       map[string]string                   `json:"-"` // identifier -> owning module ("main" for root)
}

func New() *TfData {
	return &TfData{
		GraphDict:     map[string][]string{},
		MetaData:      map[string]Metadata{},
		Hidden:        map[string]bool{},
		VariableMap:   map[string]map[string]tfvalue.Value{},
		AllLocals:     map[string]map[string]tfvalue.Value{},
		ModuleOutputs: map[string]map[string]tfvalue.Value{},
		ModuleOf:      map[string]string{},
	}
}

// EnsureNode adds id as a graphdict key (with an empty adjacency list, if
// absent) and a metadata entry if missing. Idempotent.
func (t *TfData) EnsureNode(id string, md Metadata) {
	if _, ok := t.GraphDict[id]; !ok {
		t.GraphDict[id] = []string{}
		t.NodeList = append(t.NodeList, id)
	}
	if _, ok := t.MetaData[id]; !ok {
		if md == nil {
			md = Metadata{}
		}
		t.MetaData[id] = md
	}
	delete(t.Hidden, id)
}

// AddEdge appends child to parent's adjacency list with set semantics
// (idempotent within the list), per §4.5 "Edges are added idempotently".
func (t *TfData) AddEdge(parent, child string) {
	if parent == child {
		return
	}
	list := t.GraphDict[parent]
	for _, c := range list {
		if c == child {
			return
		}
	}
	t.GraphDict[parent] = append(list, child)
}

// RemoveEdge deletes child from parent's adjacency list if present.
func (t *TfData) RemoveEdge(parent, child string) {
	list := t.GraphDict[parent]
	out := list[:0]
	for _, c := range list {
		if c != child {
			out = append(out, c)
		}
	}
	t.GraphDict[parent] = out
}

// DeleteNode removes id from graphdict and metadata entirely, and strips
// every reference to it from other adjacency lists.
func (t *TfData) DeleteNode(id string) {
	delete(t.GraphDict, id)
	delete(t.MetaData, id)
	delete(t.Hidden, id)
	for parent, children := range t.GraphDict {
		out := children[:0]
		for _, c := range children {
			if c != id {
				out = append(out, c)
			}
		}
		t.GraphDict[parent] = out
	}
	t.NodeList = removeString(t.NodeList, id)
}

func removeString(ss []string, target string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

// Hide moves id into the hidden set, per §3: "A node is in hidden iff it
// is absent from graphdict keys" — hiding removes the graphdict entry and
// every other node's edge to it, but metadata is retained so lookups
// never KeyError.
func (t *TfData) Hide(id string) {
	delete(t.GraphDict, id)
	t.Hidden[id] = true
	t.NodeList = removeString(t.NodeList, id)
	for parent, children := range t.GraphDict {
		t.GraphDict[parent] = removeString(append([]string{}, children...), id)
	}
}

// SnapshotOriginal captures the post-C4 pristine graph/metadata, per §4.4.
func (t *TfData) SnapshotOriginal() {
	t.OriginalGraphDict = cloneGraphDict(t.GraphDict)
	t.OriginalMetadata = cloneMetadata(t.MetaData)
}

func cloneGraphDict(g map[string][]string) map[string][]string {
	out := make(map[string][]string, len(g))
	for k, v := range g {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

func cloneMetadata(m map[string]Metadata) map[string]Metadata {
	out := make(map[string]Metadata, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// Finalize sorts every adjacency list and the hidden-set projection so the
// emitted JSON is a deterministic function of content alone (§4.11,
// §8 "byte-identical output").
func (t *TfData) Finalize() {
	for k, v := range t.GraphDict {
		sorted := append([]string{}, v...)
		sort.Strings(sorted)
		t.GraphDict[k] = sorted
	}
	hidden := make([]string, 0, len(t.Hidden))
	for id := range t.Hidden {
		hidden = append(hidden, id)
	}
	sort.Strings(hidden)
	t.HiddenList = hidden
}

// Nodes returns graphdict keys in sorted order, used whenever a pass must
// iterate deterministically rather than rely on Go's randomized map order.
func (t *TfData) Nodes() []string {
	out := make([]string, 0, len(t.GraphDict))
	for k := range t.GraphDict {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
