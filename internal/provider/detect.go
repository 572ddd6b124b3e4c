// Package provider implements C3: classifying resource types by prefix and
// loading the per-provider rule-table context, grounded on
// original_source/modules/provider_detector.py and config_loader.py.
package provider

import (
	"sort"
	"strings"
)

// PrefixTable maps a resource-type prefix to the provider name it belongs
// to, per §4.3.
var PrefixTable = map[string]string{
	"aws_":       "aws",
	"azurerm_":   "azure",
	"azuread_":   "azure",
	"azurestack_": "azure",
	"azapi_":     "azure",
	"google_":    "gcp",
}

// Detection mirrors the §6 provider_detection output block.
type Detection struct {
	PrimaryProvider string
	Providers       []string
	ResourceCounts  map[string]int
	Confidence      float64
}

func providerForType(resourceType string) (string, bool) {
	for prefix, p := range PrefixTable {
		if strings.HasPrefix(resourceType, prefix) {
			return p, true
		}
	}
	return "", false
}

// Detect classifies every resource type in nodeTypes (parallel to
// node_list) and returns the provider_detection block. Empty or
// all-unknown input defaults to AWS with confidence < 0.5, per §4.3 and
// the §8 boundary-behavior test.
func Detect(nodeTypes []string) Detection {
	counts := map[string]int{}
	unknown := 0
	for _, t := range nodeTypes {
		if p, ok := providerForType(t); ok {
			counts[p]++
		} else {
			unknown++
		}
	}

	if len(nodeTypes) == 0 || len(counts) == 0 {
		return Detection{
			PrimaryProvider: "aws",
			Providers:       []string{},
			ResourceCounts:  map[string]int{},
			Confidence:      0.1,
		}
	}

	providers := make([]string, 0, len(counts))
	for p := range counts {
		providers = append(providers, p)
	}
	sort.Strings(providers)

	primary := providers[0]
	best := -1
	for _, p := range providers {
		if counts[p] > best {
			best = counts[p]
			primary = p
		}
	}

	total := len(nodeTypes)
	confidence := calculateConfidence(counts[primary], total)

	return Detection{
		PrimaryProvider: primary,
		Providers:       providers,
		ResourceCounts:  counts,
		Confidence:      confidence,
	}
}

// calculateConfidence follows provider_detector._calculate_confidence: the
// raw known/total ratio is discounted for small samples so that a handful
// of matching resources never reports full confidence (SPEC_FULL §3).
func calculateConfidence(primaryCount, total int) float64 {
	if total == 0 {
		return 0
	}
	ratio := float64(primaryCount) / float64(total)
	sampleDiscount := 1.0
	if total < 5 {
		sampleDiscount = 0.5 + 0.1*float64(total)
	}
	conf := ratio * sampleDiscount
	if conf > 1 {
		conf = 1
	}
	return conf
}

// FilterByProvider returns the subset of identifiers whose type prefix
// belongs to the given provider.
func FilterByProvider(ids []string, providerName string, typeOf func(string) string) []string {
	var out []string
	for _, id := range ids {
		if p, ok := providerForType(typeOf(id)); ok && p == providerName {
			out = append(out, id)
		}
	}
	return out
}
