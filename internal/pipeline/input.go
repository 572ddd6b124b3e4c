// Package pipeline wires C2..C11 into the ordered transformation described
// in §2: C2 -> C3 -> C4 -> C1 -> (C5,C6,C7,C9,C8,C10) -> C11.
package pipeline

import (
	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

// ResourceChange mirrors one entry of Input A's resource_changes list
// (§6), field-for-field with `terraform show -json`'s output.
type ResourceChange struct {
	Address string `json:"address"`
	Mode    string `json:"mode"`
	Type    string `json:"type"`
	Change  struct {
		After          map[string]interface{} `json:"after"`
		AfterUnknown   map[string]interface{} `json:"after_unknown"`
		AfterSensitive map[string]interface{} `json:"after_sensitive"`
	} `json:"change"`
}

// PlannerJSON is Input A.
type PlannerJSON struct {
	ResourceChanges []ResourceChange `json:"resource_changes"`
}

// GraphObject/GraphEdge/LowLevelGraph are Input B (the planner's dot/xdot
// JSON dependency graph).
type GraphObject struct {
	GVID  int    `json:"_gvid"`
	Label string `json:"label"`
}
type GraphEdge struct {
	Head int `json:"head"`
	Tail int `json:"tail"`
}
type LowLevelGraph struct {
	Objects []GraphObject `json:"objects"`
	Edges   []GraphEdge   `json:"edges"`
}

// SourceFile is Input C: one already-parsed HCL file, keyed by top-level
// block kind (resource/data/module/variable/output/locals/provider) as
// the external parser hands it to the core.
type SourceFile struct {
	Path   string
	Blocks map[string]interface{}
}

// Annotation is Input D, parsed from YAML (see internal/annotation).
type Annotation struct {
	Add        map[string]map[string]tfvalue.Value
	Connect    map[string][]ConnectTarget
	Disconnect map[string][]string
	Remove     []string
	Update     map[string]map[string]tfvalue.Value
}

type ConnectTarget struct {
	Target string
	Label  string
}

// Input bundles everything the pipeline consumes (§6).
type Input struct {
	Planner      PlannerJSON
	LowLevel     LowLevelGraph
	SourceFiles  []SourceFile
	Annotation   *Annotation
	VarFiles     []map[string]interface{} // Input E, .tfvars/.tfvars.json already parsed
	EnvTFVars    map[string]string        // TF_VAR_<name> -> value, pre-collected by the caller
	DefaultProvider string
}
