// Package annotation loads the user annotation document (Input D, §6) from
// YAML into a pipeline.Annotation, the same way the teacher's config layer
// loads typed documents with gopkg.in/yaml.v2.
package annotation

import (
	"fmt"

	apperrors "github.com/patrickchugh/terravision-core/internal/domain/errors"
	"github.com/patrickchugh/terravision-core/internal/pipeline"
	"github.com/patrickchugh/terravision-core/internal/tfvalue"

	"gopkg.in/yaml.v2"
)

// document mirrors the on-disk YAML shape:
//
//	add:
//	  aws_s3_bucket.extra:
//	    name: extra
//	connect:
//	  aws_lambda_function.*:
//	    - target: aws_sqs_queue.dlq
//	      label: on_failure
//	disconnect:
//	  aws_lb.elb:
//	    - aws_nat_gateway.this
//	remove:
//	  - aws_cloudwatch_log_group.*
//	update:
//	  aws_db_instance.main:
//	    tier: critical
type document struct {
	Add        map[string]map[string]interface{}  `yaml:"add"`
	Connect    map[string][]connectEntry          `yaml:"connect"`
	Disconnect map[string][]string                `yaml:"disconnect"`
	Remove     []string                           `yaml:"remove"`
	Update     map[string]map[string]interface{}  `yaml:"update"`
}

type connectEntry struct {
	Target string `yaml:"target"`
	Label  string `yaml:"label"`
}

// Parse decodes raw YAML bytes into a pipeline.Annotation. An empty or
// all-nil document is valid and yields an Annotation with empty sections,
// never a nil pointer, so C7 can treat "no annotation file" and "annotation
// file present but with no sections" the same way.
func Parse(raw []byte) (*pipeline.Annotation, error) {
	var doc document
	if err := yaml.UnmarshalStrict(raw, &doc); err != nil {
		return nil, apperrors.Wrap(err, "ANNOTATION_PARSE_FAILED", apperrors.KindBadRequest,
			"annotation document is not valid YAML")
	}

	ann := &pipeline.Annotation{
		Add:        map[string]map[string]tfvalue.Value{},
		Connect:    map[string][]pipeline.ConnectTarget{},
		Disconnect: doc.Disconnect,
		Remove:     doc.Remove,
		Update:     map[string]map[string]tfvalue.Value{},
	}

	for id, fields := range doc.Add {
		ann.Add[id] = convertFields(fields)
	}
	for id, fields := range doc.Update {
		ann.Update[id] = convertFields(fields)
	}
	for src, targets := range doc.Connect {
		converted := make([]pipeline.ConnectTarget, 0, len(targets))
		for _, tgt := range targets {
			if tgt.Target == "" {
				return nil, apperrors.New("ANNOTATION_BAD_CONNECT", apperrors.KindBadRequest,
					fmt.Sprintf("connect entry for %q is missing a target", src))
			}
			converted = append(converted, pipeline.ConnectTarget{Target: tgt.Target, Label: tgt.Label})
		}
		ann.Connect[src] = converted
	}

	return ann, nil
}

// convertFields turns the generic YAML scalar/map/slice values produced by
// yaml.v2 into tfvalue.Value, the same conversion C2's fromInterface does
// for planner JSON (§4.2) — annotation fields and resource attributes share
// one dynamic value representation throughout the pipeline.
func convertFields(fields map[string]interface{}) map[string]tfvalue.Value {
	out := make(map[string]tfvalue.Value, len(fields))
	for k, v := range fields {
		out[k] = fromYAML(v)
	}
	return out
}

func fromYAML(v interface{}) tfvalue.Value {
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
			out[i] = fromYAML(e)
		}
		return tfvalue.List(out)
	case map[interface{}]interface{}:
		out := make(map[string]tfvalue.Value, len(val))
		for k, e := range val {
			out[fmt.Sprintf("%v", k)] = fromYAML(e)
		}
		return tfvalue.Map(out)
	case map[string]interface{}:
		return tfvalue.Map(convertFields(val))
	default:
		return tfvalue.String(fmt.Sprintf("%v", val))
	}
}
