// Package sourcefiles turns raw Terraform source text into Input C
// (§6): one pipeline.SourceFile per parsed .tf file, blocks keyed by
// their top-level kind. It uses hashicorp/hcl/v2's native parser
// (hclparse/hclsyntax) rather than hclwrite, which is an editing/
// formatting API, not a reader.
package sourcefiles

import (
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	apperrors "github.com/patrickchugh/terravision-core/internal/domain/errors"
	"github.com/patrickchugh/terravision-core/internal/pipeline"
)

// namedKinds are the HCL block types keyed by name -> definition map in
// the output, matching the shape C2's extractSymbolTables reads:
// variable.<name>, module.<name>, plus "locals" whose attributes are
// themselves the name -> value pairs (locals has no label).
var namedKinds = map[string]bool{"variable": true, "module": true}

// listedKinds are block types that can repeat with the same label
// (resource/data by type+name, output/provider by label) and are kept
// as a flat list per kind for forward compatibility with callers that
// want to cross-reference source text against the planner graph;
// nothing in C2/C1 reads these today.
var listedKinds = map[string]bool{"resource": true, "data": true, "output": true, "provider": true}

// Parse parses one .tf file's bytes into a pipeline.SourceFile, keyed by
// block kind (§6 Input C). Expression bodies that are not whole-known
// literals are rendered back to their source text (e.g. "var.region",
// "${local.name}-bucket"); C1's evaluator, not this package, resolves
// those references.
func Parse(path string, src []byte) (*pipeline.SourceFile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, apperrors.Wrap(diags, "SOURCEFILE_PARSE_FAILED", apperrors.KindBadRequest,
			"HCL parse error in "+path)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, apperrors.New("SOURCEFILE_BAD_BODY", apperrors.KindInternal,
			"parsed body is not hclsyntax.Body for "+path)
	}

	blocks := map[string]interface{}{}
	for _, blk := range body.Blocks {
		switch {
		case blk.Type == "locals":
			localsMap, _ := blocks["locals"].(map[string]interface{})
			if localsMap == nil {
				localsMap = map[string]interface{}{}
			}
			for name, attr := range blk.Body.Attributes {
				localsMap[name] = exprToInterface(attr.Expr, src)
			}
			blocks["locals"] = localsMap

		case namedKinds[blk.Type]:
			if len(blk.Labels) == 0 {
				continue
			}
			named, _ := blocks[blk.Type].(map[string]interface{})
			if named == nil {
				named = map[string]interface{}{}
			}
			named[blk.Labels[0]] = blockToRecord(blk, src)
			blocks[blk.Type] = named

		case listedKinds[blk.Type]:
			list, _ := blocks[blk.Type].([]map[string]interface{})
			blocks[blk.Type] = append(list, blockToRecord(blk, src))
		}
	}

	return &pipeline.SourceFile{Path: path, Blocks: blocks}, nil
}

// blockToRecord flattens one HCL block into the generic map shape C2's
// fromInterface already knows how to read: labels under "_labels",
// attribute expressions reduced to literal Go values or source text,
// and nested blocks recursed the same way.
func blockToRecord(blk *hclsyntax.Block, src []byte) map[string]interface{} {
	record := map[string]interface{}{}
	if len(blk.Labels) > 0 {
		labels := make([]interface{}, len(blk.Labels))
		for i, l := range blk.Labels {
			labels[i] = l
		}
		record["_labels"] = labels
	}

	for name, attr := range blk.Body.Attributes {
		record[name] = exprToInterface(attr.Expr, src)
	}

	nested := map[string][]interface{}{}
	for _, child := range blk.Body.Blocks {
		nested[child.Type] = append(nested[child.Type], blockToRecord(child, src))
	}
	for k, v := range nested {
		record[k] = v
	}

	return record
}

// exprToInterface evaluates an expression with no variable context: a
// constant literal (string/number/bool/tuple/object of those) folds to
// a plain Go value, matching the shape terraform plan JSON would have
// produced for the same attribute. Anything that needs var/local/module
// resolution falls back to its original source text, which C1 later
// re-tokenizes and evaluates.
func exprToInterface(expr hclsyntax.Expression, src []byte) interface{} {
	val, diags := expr.Value(nil)
	if !diags.HasErrors() && val.IsWhollyKnown() && !val.IsNull() {
		if iv, ok := ctyToLiteral(val); ok {
			return iv
		}
	}
	rng := expr.Range()
	return string(rng.SliceBytes(src))
}

func ctyToLiteral(val cty.Value) (interface{}, bool) {
	switch {
	case val.Type() == cty.String:
		return val.AsString(), true
	case val.Type() == cty.Bool:
		return val.True(), true
	case val.Type() == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, true
	case val.Type().IsTupleType() || val.Type().IsListType():
		var out []interface{}
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			iv, ok := ctyToLiteral(ev)
			if !ok {
				return nil, false
			}
			out = append(out, iv)
		}
		return out, true
	case val.Type().IsObjectType() || val.Type().IsMapType():
		out := map[string]interface{}{}
		for it := val.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			iv, ok := ctyToLiteral(ev)
			if !ok {
				return nil, false
			}
			out[kv.AsString()] = iv
		}
		return out, true
	default:
		return nil, false
	}
}
