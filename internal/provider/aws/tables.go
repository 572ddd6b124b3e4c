// Package aws supplies the AWS provider rule tables, grounded on
// original_source/modules/config/cloud_config_aws.py and
// resource_handler_configs_aws.py. Registered into provider.Default on
// package init so C3 can load it by name without a switch statement.
package aws

import (
	"github.com/patrickchugh/terravision-core/internal/provider"
)

func init() {
	if err := provider.Default.Register(Tables()); err != nil {
		panic(err)
	}
}

// Tables builds the AWS rule-table bundle. Split into small builder
// functions below so each table can be grown independently, the same way
// cloud_config_aws.py lays out one module-level constant per table.
func Tables() *provider.Tables {
	return &provider.Tables{
		Name:                  "aws",
		ConsolidatedNodes:     consolidatedNodes(),
		GroupNodes:            groupNodes(),
		EdgeNodes:             edgeNodes(),
		OuterNodes:            outerNodes(),
		AutoAnnotations:       autoAnnotations(),
		NodeVariants:          nodeVariants(),
		ReverseArrowList:      reverseArrowList(),
		ForcedDest:            map[string]string{},
		ForcedOrigin:          map[string]string{},
		ImpliedConnections:    impliedConnections(),
		SpecialResources:      specialResources(),
		SharedServices:        sharedServices(),
		AlwaysDrawLine:        map[string]bool{},
		NeverDrawLine:         neverDrawLine(),
		DisconnectList:        disconnectList(),
		NameReplacements:      map[string]string{},
		MultiInstancePatterns: multiInstancePatterns(),
	}
}

// consolidatedNodes collapses family prefixes into one canonical node, per
// §4.6 (e.g. every aws_route53_* resource becomes one route53 node).
func consolidatedNodes() map[string]string {
	return map[string]string{
		"aws_route53":             "aws_route53_record.route_53",
		"aws_cloudwatch_log":      "aws_cloudwatch_log_group.logs",
		"aws_cloudwatch_metric":   "aws_cloudwatch_log_group.logs",
		"aws_kms":                 "aws_kms_key.kms",
		"aws_acm":                 "aws_acm_certificate.cert",
		"aws_iam":                 "aws_iam_role.iam",
		"aws_ecr":                 "aws_ecr_repository.registry",
		"aws_sns":                 "aws_sns_topic.notifications",
		"aws_cloudtrail":          "aws_cloudtrail.audit",
		"aws_config":              "aws_config_configuration_recorder.compliance",
	}
}

// groupNodes marks which AWS types are containers whose edges mean
// containment rather than logical dependency, per §3.
func groupNodes() map[string]bool {
	return boolSet(
		"aws_vpc", "aws_subnet", "aws_az", "tv_aws_zone", "tv_aws_region",
		"aws_security_group", "aws_group", "aws_eks_cluster",
		"aws_ecs_cluster", "aws_autoscaling_group",
	)
}

func edgeNodes() map[string]bool {
	return boolSet("aws_lb_listener", "aws_lb_target_group", "aws_lb_listener_rule")
}

func outerNodes() map[string]bool {
	return boolSet("tv_aws_region", "aws_vpc")
}

// reverseArrowList gives the tie-break ordering used in base-graph
// construction (§4.4) and relation enrichment (§4.5): earlier entries are
// "more outer" and win direction ties.
func reverseArrowList() []provider.ReverseArrowEntry {
	order := []string{
		"tv_aws_region",
		"aws_vpc",
		"aws_az",
		"aws_subnet",
		"aws_security_group",
		"aws_eks_cluster",
		"aws_ecs_cluster",
		"aws_autoscaling_group",
		"aws_lb",
		"aws_alb",
		"aws_nlb",
		"aws_elb",
	}
	out := make([]provider.ReverseArrowEntry, len(order))
	for i, p := range order {
		out[i] = provider.ReverseArrowEntry{TypePrefix: p}
	}
	return out
}

// autoAnnotations is the AUTO_ANNOTATIONS table (§4.7): automatic edges to
// synthetic users/internet nodes, and competing-connection cleanup so an
// Internet Gateway is preferred over a NAT gateway as the default internet
// edge.
func autoAnnotations() []provider.AutoAnnotation {
	return []provider.AutoAnnotation{
		{
			Prefix:    "aws_internet_gateway",
			Target:    "tv_aws_internet.internet",
			Direction: "reverse",
			Delete:    []string{"aws_nat_gateway"},
		},
		{
			Prefix:    "aws_lb",
			Target:    "tv_aws_users.users",
			Direction: "reverse",
		},
		{
			Prefix:    "aws_alb",
			Target:    "tv_aws_users.users",
			Direction: "reverse",
		},
		{
			Prefix:    "aws_api_gateway_rest_api",
			Target:    "tv_aws_users.users",
			Direction: "reverse",
		},
		{
			Prefix:    "aws_cloudfront_distribution",
			Target:    "tv_aws_users.users",
			Direction: "reverse",
		},
	}
}

// nodeVariants is the NODE_VARIANTS table (§4.8): metadata keyword ->
// renamed type.
func nodeVariants() []provider.NodeVariant {
	return []provider.NodeVariant{
		{
			BaseType: "aws_lb",
			Keywords: map[string]string{
				"application": "aws_alb",
				"network":     "aws_nlb",
			},
		},
		{
			BaseType: "aws_db_instance",
			Keywords: map[string]string{
				"aurora": "aws_rds_cluster_instance",
			},
		},
	}
}

func impliedConnections() map[string]string {
	return map[string]string{
		"certificate_arn":  "aws_acm_certificate",
		"kms_key_id":       "aws_kms_key",
		"log_group_name":   "aws_cloudwatch_log_group",
		"security_group_id": "aws_security_group",
		"role_arn":         "aws_iam_role",
		"target_group_arn": "aws_lb_target_group",
	}
}

func sharedServices() map[string]bool {
	return boolSet(
		"aws_kms_key", "aws_cloudwatch_log_group", "aws_acm_certificate",
		"aws_ecr_repository", "aws_sns_topic", "aws_cloudtrail",
		"aws_config_configuration_recorder",
	)
}

func neverDrawLine() map[string]bool {
	return boolSet("aws_iam_policy_document")
}

func disconnectList() [][2]string {
	return [][2]string{
		{"aws_lambda_function", "aws_iam_role"},
	}
}

// multiInstancePatterns names the trigger attribute that, when it
// references multiple known subnets, causes expand_to_numbered_instances
// to fire (§4.9).
func multiInstancePatterns() map[string]string {
	return map[string]string{
		"aws_lb":                      "subnets",
		"aws_autoscaling_group":       "vpc_zone_identifier",
		"aws_ecs_service":             "subnets",
		"aws_eks_node_group":          "subnet_ids",
		"aws_eks_fargate_profile":     "subnet_ids",
		"aws_db_subnet_group":         "subnet_ids",
		"aws_elasticache_subnet_group": "subnet_ids",
	}
}

// specialResources is the SPECIAL_RESOURCES table (§4.9): prefix ->
// declarative ops and/or a named imperative handler. The multi-subnet
// expansion entries at the end are generated from multiInstancePatterns so
// that table isn't just documentation -- every declared trigger attribute
// actually reaches C9 (aws_lb is handled by aws_lb_variant_rewire instead,
// since its expansion also needs listener/target-group cloning that the
// generic op doesn't do).
func specialResources() []provider.HandlerSpec {
	specs := []provider.HandlerSpec{
		{
			Prefix:            "aws_subnet",
			ImperativeHandler: "aws_subnet_az_insertion",
			ExecutionOrder:    "after",
		},
		{
			Prefix:            "aws_security_group",
			ImperativeHandler: "aws_security_group_wrap",
			ExecutionOrder:    "after",
		},
		{
			Prefix:            "aws_lb",
			ImperativeHandler: "aws_lb_variant_rewire",
			ExecutionOrder:    "before",
		},
		{
			Prefix: "aws_lambda_event_source_mapping",
			Ops: []provider.HandlerOp{
				{Op: "link_peers_via_intermediary", Params: map[string]string{
					"pattern": "aws_lambda_event_source_mapping",
				}},
			},
		},
		{
			Prefix:            "aws_eks_cluster",
			ImperativeHandler: "aws_eks_cluster_grouping",
			ExecutionOrder:    "after",
		},
		{
			Prefix:            "aws_helm_release",
			ImperativeHandler: "aws_helm_release_handling",
			ExecutionOrder:    "after",
		},
		{
			Prefix:            "aws_wafv2_web_acl_association",
			ImperativeHandler: "aws_waf_association",
			ExecutionOrder:    "after",
		},
		{
			Prefix: "aws_vpc_endpoint",
			Ops: []provider.HandlerOp{
				{Op: "move_to_parent", Params: map[string]string{
					"pattern":             "aws_vpc_endpoint",
					"from_parent_pattern": "aws_subnet",
					"to_parent_pattern":   "aws_vpc",
				}},
			},
		},
		{
			Prefix: "aws_group",
			Ops: []provider.HandlerOp{
				{Op: "group_shared_services", Params: map[string]string{}},
			},
		},
	}

	patterns := multiInstancePatterns()
	delete(patterns, "aws_lb")
	specs = append(specs, provider.ExpandSpecsFromPatterns(patterns)...)
	return specs
}

func boolSet(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
