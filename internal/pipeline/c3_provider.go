package pipeline

import (
	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

// runProviderDetector is C3: classifies node_list by type prefix, picks
// the primary provider, and loads that provider's rule-table context
// (§4.3).
func runProviderDetector(t *graph.TfData, in *Input) (*provider.Tables, error) {
	types := make([]string, 0, len(t.NodeList))
	for _, id := range t.NodeList {
		types = append(types, graph.TypeOf(id))
	}

	det := provider.Detect(types)
	if in.DefaultProvider != "" && len(det.Providers) == 0 {
		det.PrimaryProvider = in.DefaultProvider
	}

	t.ProviderDetection = graph.ProviderDetection{
		PrimaryProvider: det.PrimaryProvider,
		Providers:       det.Providers,
		ResourceCounts:  det.ResourceCounts,
		Confidence:      det.Confidence,
	}

	for id, md := range t.MetaData {
		if _, ok := md["provider"]; !ok {
			md["provider"] = tfvalue.String(det.PrimaryProvider)
		}
		t.MetaData[id] = md
	}

	tables, ok := provider.Default.Get(det.PrimaryProvider)
	if !ok {
		tables = provider.Default.MustGet("aws")
	}
	return tables, nil
}
