// corecheck is a developer smoke-test harness: it feeds a Terraform
// plan JSON (plus an optional .tf source directory and annotation file)
// through the core pipeline and prints the resulting graph as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/patrickchugh/terravision-core/internal/annotation"
	"github.com/patrickchugh/terravision-core/internal/pipeline"
	"github.com/patrickchugh/terravision-core/internal/sourcefiles"
)

func main() {
	plannerPath := flag.String("planner", "", "path to terraform show -json plan output (Input A, required)")
	sourceDir := flag.String("source", "", "directory of .tf files to parse as Input C (optional)")
	annotationPath := flag.String("annotation", "", "path to a YAML annotation document (Input D, optional)")
	defaultProvider := flag.String("provider", "", "fallback provider name when detection is inconclusive")
	flag.Parse()

	if *plannerPath == "" {
		fmt.Fprintln(os.Stderr, "corecheck: -planner is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	in := &pipeline.Input{DefaultProvider: *defaultProvider}

	plannerBytes, err := os.ReadFile(*plannerPath)
	if err != nil {
		log.Fatalf("corecheck: reading planner JSON: %v", err)
	}
	if err := json.Unmarshal(plannerBytes, &in.Planner); err != nil {
		log.Fatalf("corecheck: parsing planner JSON: %v", err)
	}

	if *sourceDir != "" {
		entries, err := os.ReadDir(*sourceDir)
		if err != nil {
			log.Fatalf("corecheck: reading source dir: %v", err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".tf") {
				continue
			}
			path := *sourceDir + "/" + e.Name()
			raw, err := os.ReadFile(path)
			if err != nil {
				log.Fatalf("corecheck: reading %s: %v", path, err)
			}
			sf, err := sourcefiles.Parse(path, raw)
			if err != nil {
				log.Fatalf("corecheck: parsing %s: %v", path, err)
			}
			in.SourceFiles = append(in.SourceFiles, *sf)
		}
	}

	if *annotationPath != "" {
		raw, err := os.ReadFile(*annotationPath)
		if err != nil {
			log.Fatalf("corecheck: reading annotation file: %v", err)
		}
		ann, err := annotation.Parse(raw)
		if err != nil {
			log.Fatalf("corecheck: parsing annotation file: %v", err)
		}
		in.Annotation = ann
	}

	result, err := pipeline.Run(in)
	if err != nil {
		log.Fatalf("corecheck: pipeline run failed: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("corecheck: marshaling result: %v", err)
	}
	fmt.Println(string(out))
}
