//go:build ignore

// generate_testdata.go writes sample catalogs for benchmarking and manual
// runs of cv.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/catalogs/small.json   (50 indicators)
//	testdata/catalogs/medium.json  (500 indicators)
//	testdata/catalogs/large.json   (5000 indicators)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/catalogview/pkg/testutil"
)

type datasetSpec struct {
	name string
	size int
	tags int
}

var datasets = []datasetSpec{
	{"small", 50, 12},
	{"medium", 500, 40},
	{"large", 5000, 120},
}

func main() {
	outputDir := filepath.Join("testdata", "catalogs")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s catalog (%d indicators)...\n", ds.name, ds.size)

		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(ds.size)
		cfg.TagCount = ds.tags
		cfg.MaxTags = 5
		cat := testutil.New(cfg).Catalog(ds.size)

		data := testutil.ToJSON(cat)
		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(outputPath, []byte(data), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d bytes, %d datasets)\n", outputPath, len(data), cat.DatasetCount())
	}

	fmt.Println("\nDone! Sample catalogs created in", outputDir)
}
