package annotation

import "testing"

func TestParseAllSections(t *testing.T) {
	raw := []byte(`
add:
  aws_s3_bucket.extra:
    name: extra
connect:
  aws_lambda_function.*:
    - target: aws_sqs_queue.dlq
      label: on_failure
disconnect:
  aws_lb.elb:
    - aws_nat_gateway.this
remove:
  - aws_cloudwatch_log_group.*
update:
  aws_db_instance.main:
    tier: critical
`)
	ann, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := ann.Add["aws_s3_bucket.extra"]; !ok {
		t.Fatal("expected add section to contain aws_s3_bucket.extra")
	}
	targets, ok := ann.Connect["aws_lambda_function.*"]
	if !ok || len(targets) != 1 || targets[0].Target != "aws_sqs_queue.dlq" || targets[0].Label != "on_failure" {
		t.Fatalf("got connect targets %v", targets)
	}
	if got := ann.Disconnect["aws_lb.elb"]; len(got) != 1 || got[0] != "aws_nat_gateway.this" {
		t.Fatalf("got disconnect %v", got)
	}
	if len(ann.Remove) != 1 || ann.Remove[0] != "aws_cloudwatch_log_group.*" {
		t.Fatalf("got remove %v", ann.Remove)
	}
	if ann.Update["aws_db_instance.main"]["tier"].AsString() != "critical" {
		t.Fatal("expected update.tier to be critical")
	}
}

func TestParseEmptyDocumentYieldsEmptySections(t *testing.T) {
	ann, err := Parse([]byte(``))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ann == nil {
		t.Fatal("expected a non-nil Annotation for an empty document")
	}
	if len(ann.Add) != 0 || len(ann.Connect) != 0 || len(ann.Remove) != 0 {
		t.Fatal("expected all sections empty")
	}
}

func TestParseRejectsConnectEntryWithoutTarget(t *testing.T) {
	raw := []byte(`
connect:
  aws_lambda_function.*:
    - label: on_failure
`)
	if _, err := Parse(raw); err == nil {
		t.Fatal("expected an error for a connect entry missing its target")
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	raw := []byte(`
bogus_section:
  foo: bar
`)
	if _, err := Parse(raw); err == nil {
		t.Fatal("expected UnmarshalStrict to reject an unknown top-level field")
	}
}
