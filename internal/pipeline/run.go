package pipeline

import (
	apperrors "github.com/patrickchugh/terravision-core/internal/domain/errors"
	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/platform/logger"

	_ "github.com/patrickchugh/terravision-core/internal/provider/aws"   // registers the AWS rule tables
	_ "github.com/patrickchugh/terravision-core/internal/provider/azure" // registers the Azure rule tables
	_ "github.com/patrickchugh/terravision-core/internal/provider/gcp"   // registers the GCP rule tables
)

// Run executes the full C2 -> C3 -> C4 -> C1 -> (C5,C6,C7,C9,C8,C10) -> C11
// pipeline described in §2 and returns the resulting TfData, or an
// AppError tagged with the failing component's kind (§7).
func Run(in *Input) (*graph.TfData, error) {
	log := logger.Get()
	t := graph.New()

	if err := runMetadataBuilder(t, in); err != nil {
		return nil, apperrors.Wrap(err, "C2_METADATA_FAILED", apperrors.KindBadRequest, "metadata builder failed")
	}
	log.Debug("C2 metadata builder complete", "nodes", len(t.NodeList))

	tables, err := runProviderDetector(t, in)
	if err != nil {
		return nil, apperrors.Wrap(err, "C3_PROVIDER_FAILED", apperrors.KindInternal, "provider detection failed")
	}
	log.Debug("C3 provider detector complete", "provider", t.ProviderDetection.PrimaryProvider,
		"confidence", t.ProviderDetection.Confidence)

	if err := runBaseGraphBuilder(t, in, tables); err != nil {
		return nil, apperrors.Wrap(err, "C4_BASEGRAPH_FAILED", apperrors.KindInternal, "base graph builder failed")
	}
	log.Debug("C4 base graph builder complete", "edges", countEdges(t))

	if err := runExpressionEvaluator(t); err != nil {
		return nil, apperrors.Wrap(err, "C1_EXPRESSION_FAILED", apperrors.KindBadRequest,
			"expression evaluation hit an unresolvable symbol").WithOp("C1")
	}
	log.Debug("C1 expression evaluator complete", "hidden", len(t.Hidden))

	if err := runRelationEnricher(t, tables); err != nil {
		return nil, apperrors.Wrap(err, "C5_ENRICHER_FAILED", apperrors.KindInternal, "relation enricher failed")
	}
	if err := runConsolidator(t, tables); err != nil {
		return nil, apperrors.Wrap(err, "C6_CONSOLIDATOR_FAILED", apperrors.KindInternal, "consolidator failed")
	}
	if err := runAnnotationEngine(t, tables, in.Annotation); err != nil {
		return nil, apperrors.Wrap(err, "C7_ANNOTATION_FAILED", apperrors.KindBadRequest, "annotation engine failed")
	}
	if err := runResourceHandlers(t, tables); err != nil {
		return nil, apperrors.Wrap(err, "C9_HANDLERS_FAILED", apperrors.KindInternal, "resource handlers failed")
	}

	specialPrefixes := make(map[string]bool, len(tables.SpecialResources))
	for _, spec := range tables.SpecialResources {
		specialPrefixes[spec.Prefix] = true
	}
	if err := runVariantSelector(t, tables, specialPrefixes); err != nil {
		return nil, apperrors.Wrap(err, "C8_VARIANTS_FAILED", apperrors.KindInternal, "variant selector failed")
	}
	if err := runMultiInstanceExpander(t, tables); err != nil {
		return nil, apperrors.Wrap(err, "C10_EXPANDER_FAILED", apperrors.KindInternal, "multi-instance expander failed")
	}
	log.Debug("C5-C10 block complete", "nodes", len(t.GraphDict))

	if err := runCleanup(t, tables, log); err != nil {
		return nil, apperrors.Wrap(err, "C11_CLEANUP_FAILED", apperrors.KindInternal, "cleanup pass failed")
	}
	log.Info("pipeline run complete", "nodes", len(t.GraphDict), "hidden", len(t.HiddenList))

	return t, nil
}

func countEdges(t *graph.TfData) int {
	n := 0
	for _, children := range t.GraphDict {
		n += len(children)
	}
	return n
}
