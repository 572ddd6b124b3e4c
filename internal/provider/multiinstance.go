package provider

import "sort"

// ExpandSpecsFromPatterns turns a MultiInstancePatterns table into
// SpecialResources entries that fire C9's expand_to_numbered_instances op,
// so a provider's declared trigger attributes actually reach the pipeline
// instead of sitting unread (§4.9, §4.10). Providers call this from their
// specialResources() builder and append the result to any hand-written
// entries for the same prefix. Sorted by resource type so handler order
// stays deterministic across runs despite the map's randomized iteration.
func ExpandSpecsFromPatterns(patterns map[string]string) []HandlerSpec {
	types := make([]string, 0, len(patterns))
	for typ := range patterns {
		types = append(types, typ)
	}
	sort.Strings(types)

	specs := make([]HandlerSpec, 0, len(types))
	for _, typ := range types {
		specs = append(specs, HandlerSpec{
			Prefix: typ,
			Ops: []HandlerOp{
				{Op: "expand_to_numbered_instances", Params: map[string]string{
					"pattern":   typ,
					"attribute": patterns[typ],
				}},
			},
		})
	}
	return specs
}
