package provider

import "testing"

func TestDetectPicksMajorityProvider(t *testing.T) {
	det := Detect([]string{"aws_vpc", "aws_subnet", "aws_instance", "azurerm_vnet"})
	if det.PrimaryProvider != "aws" {
		t.Fatalf("got %q, want aws", det.PrimaryProvider)
	}
	if det.ResourceCounts["aws"] != 3 || det.ResourceCounts["azure"] != 1 {
		t.Fatalf("got counts %v", det.ResourceCounts)
	}
}

func TestDetectEmptyInputDefaultsToAWSWithLowConfidence(t *testing.T) {
	det := Detect(nil)
	if det.PrimaryProvider != "aws" {
		t.Fatalf("got %q, want aws", det.PrimaryProvider)
	}
	if det.Confidence >= 0.5 {
		t.Fatalf("got confidence %v, want < 0.5", det.Confidence)
	}
}

func TestDetectSmallSampleDiscountsConfidence(t *testing.T) {
	small := Detect([]string{"aws_vpc"})
	large := make([]string, 20)
	for i := range large {
		large[i] = "aws_instance"
	}
	bigDet := Detect(large)

	if small.Confidence >= bigDet.Confidence {
		t.Fatalf("small-sample confidence %v should be lower than large-sample %v",
			small.Confidence, bigDet.Confidence)
	}
}

func TestFilterByProvider(t *testing.T) {
	ids := []string{"aws_vpc.main", "azurerm_vnet.main"}
	typeOf := func(id string) string {
		for i, c := range id {
			if c == '.' {
				return id[:i]
			}
		}
		return id
	}
	got := FilterByProvider(ids, "aws", typeOf)
	if len(got) != 1 || got[0] != "aws_vpc.main" {
		t.Fatalf("got %v, want [aws_vpc.main]", got)
	}
}
