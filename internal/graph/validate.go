package graph

import (
	"fmt"
	"sort"

	apperrors "github.com/patrickchugh/terravision-core/internal/domain/errors"
)

// ValidationIssue records one violated invariant from §3/§8, collected
// rather than aborting per §7 kind 3 ("metadata inconsistency ... never
// silently dropped").
type ValidationIssue struct {
	Kind string
	Node string
	Detail string
}

// Validate checks the invariants in §3 and the cross-group rule in §8:
//   - every id in graphdict has a metadata entry with name/type/provider
//   - every child in every adjacency list is itself a graphdict key
//   - no non-group node without a ~k suffix appears under two distinct
//     group-node parents
func (t *TfData) Validate(groupTypes map[string]bool) []ValidationIssue {
	var issues []ValidationIssue

	for _, id := range t.Nodes() {
		md, ok := t.MetaData[id]
		if !ok {
			issues = append(issues, ValidationIssue{"missing_metadata", id, "no meta_data entry"})
			continue
		}
		for _, req := range []string{"name", "type", "provider"} {
			if _, ok := md[req]; !ok {
				issues = append(issues, ValidationIssue{"missing_required_key", id, req})
			}
		}
	}

	for parent, children := range t.GraphDict {
		for _, c := range children {
			if _, ok := t.GraphDict[c]; !ok {
				issues = append(issues, ValidationIssue{"dangling_child", parent, c})
			}
		}
	}

	// No concrete (non-suffixed) child may appear under two distinct
	// group-type parents.
	owners := map[string][]string{}
	for parent, children := range t.GraphDict {
		if !groupTypes[TypeOf(parent)] {
			continue
		}
		for _, c := range children {
			if groupTypes[TypeOf(c)] {
				continue
			}
			if CloneIndex(c) != 0 {
				continue
			}
			owners[c] = append(owners[c], parent)
		}
	}
	for child, parents := range owners {
		if len(parents) > 1 {
			sort.Strings(parents)
			issues = append(issues, ValidationIssue{
				"shared_across_groups", child,
				fmt.Sprintf("owned by %v", parents),
			})
		}
	}

	return issues
}

// ValidateOrError is a convenience wrapper returning an AppError (Kind
// conflict, per §7 kind 3) when issues are found.
func (t *TfData) ValidateOrError(groupTypes map[string]bool) error {
	issues := t.Validate(groupTypes)
	if len(issues) == 0 {
		return nil
	}
	details := make([]interface{}, 0, len(issues))
	for _, iss := range issues {
		details = append(details, fmt.Sprintf("%s: %s (%s)", iss.Kind, iss.Node, iss.Detail))
	}
	return apperrors.New("GRAPH_METADATA_INCONSISTENT", apperrors.KindConflict,
		"graph and metadata diverge").WithMeta("issues", details)
}
