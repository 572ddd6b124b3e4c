package provider

import "github.com/patrickchugh/terravision-core/internal/graph"

// ImperativeHandlerFn is a hand-coded per-resource-type transformer too
// specific for C9's declarative op vocabulary (§4.9). Provider packages
// register these under the name their SpecialResources table references;
// C9 resolves and invokes them by that name. This registry lives in
// internal/provider rather than internal/pipeline so that provider
// sub-packages (aws, gcp, azure) can register into it without importing
// internal/pipeline back -- pipeline already imports provider for Tables,
// so the reverse edge would be an import cycle.
type ImperativeHandlerFn func(t *graph.TfData, tables *Tables, spec HandlerSpec) error

// ImperativeHandlers is the process-wide name -> function table; provider
// packages populate it in their init().
var ImperativeHandlers = map[string]ImperativeHandlerFn{}

// RegisterImperativeHandler lets a provider package (e.g.
// internal/provider/aws) install an imperative C9 handler under the name
// its SpecialResources table references.
func RegisterImperativeHandler(name string, fn ImperativeHandlerFn) {
	ImperativeHandlers[name] = fn
}

// IntermediateNodeGeneratorFn synthesizes the name of the node
// insert_intermediate_node should splice between a matched parent/child
// pair (e.g. an availability-zone name derived from a subnet's metadata).
type IntermediateNodeGeneratorFn func(t *graph.TfData, child string) string

// IntermediateNodeGenerators is the process-wide name -> generator table.
var IntermediateNodeGenerators = map[string]IntermediateNodeGeneratorFn{}

// RegisterIntermediateNodeGenerator installs a named synthetic-node name
// generator for use by the insert_intermediate_node op.
func RegisterIntermediateNodeGenerator(name string, fn IntermediateNodeGeneratorFn) {
	IntermediateNodeGenerators[name] = fn
}
