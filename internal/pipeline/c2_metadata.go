package pipeline

import (
	"strings"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

// runMetadataBuilder is C2: flattens the planner's resource_changes list
// into node_list + meta_data, and extracts variable defaults, locals and
// module call arguments from the parsed source files, per §4.2.
func runMetadataBuilder(t *graph.TfData, in *Input) error {
	seen := map[string]bool{}

	for _, rc := range in.Planner.ResourceChanges {
		if rc.Mode == "data" {
			continue
		}
		id, module := addressToID(rc.Address)
		if seen[id] {
			continue
		}
		seen[id] = true

		md := graph.Metadata{}
		merge := func(src map[string]interface{}) {
			for k, v := range src {
				md[k] = fromInterface(v)
			}
		}
		merge(rc.Change.AfterUnknown)
		merge(rc.Change.AfterSensitive)
		merge(rc.Change.After) // after-values win, applied last

		md["type"] = tfvalue.String(rc.Type)
		md["name"] = tfvalue.String(graph.NameOf(id))
		md["module"] = tfvalue.String(module)

		t.EnsureNode(id, md)
		t.ModuleOf[id] = module
	}

	extractSymbolTables(t, in)
	return nil
}

// addressToID normalizes a planner address ("module.x.aws_vpc.main[0]")
// into (identifier, owning module), applying the bracket-index -> ~k
// rewrite from §3.
func addressToID(address string) (id string, module string) {
	module = "main"
	rest := address
	if strings.HasPrefix(rest, "module.") {
		parts := strings.SplitN(rest, ".", 3)
		if len(parts) == 3 {
			module = parts[1]
			rest = parts[2]
		}
	}
	return graph.NormalizeID(rest), module
}

func fromInterface(v interface{}) tfvalue.Value {
	switch val := v.(type) {
	case nil:
		return tfvalue.Null()
	case string:
		return tfvalue.String(val)
	case bool:
		return tfvalue.Bool(val)
	case int:
		return tfvalue.Int(int64(val))
	case int64:
		return tfvalue.Int(val)
	case float64:
		return tfvalue.Int(int64(val))
	case []interface{}:
		out := make([]tfvalue.Value, len(val))
		for i, e := range val {
			out[i] = fromInterface(e)
		}
		return tfvalue.List(out)
	case map[string]interface{}:
		out := make(map[string]tfvalue.Value, len(val))
		for k, e := range val {
			out[k] = fromInterface(e)
		}
		return tfvalue.Map(out)
	default:
		return tfvalue.Sentinel(tfvalue.SentinelUnknown)
	}
}

// extractSymbolTables walks the parsed source files for variable
// defaults, locals, module call arguments and applies the precedence
// tfvars > TF_VAR_* > module args > default (§4.2, SPEC_FULL §3).
func extractSymbolTables(t *graph.TfData, in *Input) {
	t.VariableMap["main"] = map[string]tfvalue.Value{}
	t.AllLocals["main"] = map[string]tfvalue.Value{}

	for _, sf := range in.SourceFiles {
		if vars, ok := sf.Blocks["variable"].(map[string]interface{}); ok {
			for name, def := range vars {
				if defMap, ok := def.(map[string]interface{}); ok {
					if d, ok := defMap["default"]; ok {
						t.VariableMap["main"][name] = fromInterface(d)
					}
				}
			}
		}
		if locals, ok := sf.Blocks["locals"].(map[string]interface{}); ok {
			for name, v := range locals {
				t.AllLocals["main"][name] = fromInterface(v)
			}
		}
		if modules, ok := sf.Blocks["module"].(map[string]interface{}); ok {
			for modName, def := range modules {
				if _, exists := t.VariableMap[modName]; !exists {
					t.VariableMap[modName] = map[string]tfvalue.Value{}
				}
				if defMap, ok := def.(map[string]interface{}); ok {
					for argName, argVal := range defMap {
						t.VariableMap[modName][argName] = fromInterface(argVal)
					}
				}
			}
		}
	}

	// Input E var files override defaults/module args.
	fromVarFile := map[string]bool{}
	for _, vf := range in.VarFiles {
		for k, v := range vf {
			t.VariableMap["main"][k] = fromInterface(v)
			fromVarFile[k] = true
		}
	}

	// TF_VAR_* env vars override defaults but yield to a var-file value,
	// except that a var-file entry of exactly "" counts as unset and
	// falls through to env.
	for k, v := range in.EnvTFVars {
		name := strings.TrimPrefix(k, "TF_VAR_")
		if existing, ok := t.VariableMap["main"][name]; ok && fromVarFile[name] && existing.AsString() != "" {
			continue
		}
		t.VariableMap["main"][name] = tfvalue.String(v)
	}
}
