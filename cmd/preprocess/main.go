package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/azybler/waypointrouter/pkg/ch"
	"github.com/azybler/waypointrouter/pkg/graph"
	osmparser "github.com/azybler/waypointrouter/pkg/osm"
)

// runMeta is the build-metadata sidecar written next to the binary graph:
// node/edge counts, the effective bounding box, and how long the build
// took. Kept in BSON rather than JSON purely to exercise the
// mongo-driver/bson dependency already pulled in transitively by
// paulmach/osm — see DESIGN.md.
type runMeta struct {
	NumNodes     uint32    `bson:"num_nodes"`
	NumEdges     uint32    `bson:"num_edges"`
	NumFwdEdges  int       `bson:"num_fwd_edges"`
	NumBwdEdges  int       `bson:"num_bwd_edges"`
	BBox         string    `bson:"bbox,omitempty"`
	BuildSeconds float64   `bson:"build_seconds"`
	SourceFile   string    `bson:"source_file"`
}

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	output := flag.String("output", "graph.bin", "Output binary graph file path")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 1.15,103.6,1.48,104.1)")
	singapore := flag.Bool("singapore", false, "Shortcut for --bbox 1.15,103.6,1.48,104.1 (Singapore bounding box)")
	kl := flag.Bool("kl", false, "Shortcut for --bbox 2.75,101.2,3.5,102.0 (Selangor + Kuala Lumpur bounding box)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <file.osm.pbf> [--output graph.bin] [--singapore | --kl | --bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}

	// Parse bbox option.
	var opts osmparser.ParseOptions
	var bboxDesc string
	if *kl {
		opts.BBox = osmparser.BBox{MinLat: 2.75, MaxLat: 3.5, MinLng: 101.2, MaxLng: 102.0}
		bboxDesc = "kl"
		log.Println("Using Selangor + KL bounding box filter: lat [2.75, 3.50], lng [101.20, 102.00]")
	} else if *singapore {
		opts.BBox = osmparser.BBox{MinLat: 1.15, MaxLat: 1.48, MinLng: 103.6, MaxLng: 104.1}
		bboxDesc = "singapore"
		log.Println("Using Singapore bounding box filter: lat [1.15, 1.48], lng [103.6, 104.1]")
	} else if *bbox != "" {
		var minLat, minLng, maxLat, maxLng float64
		_, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng)
		if err != nil {
			log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
		}
		opts.BBox = osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
		bboxDesc = strings.TrimSpace(*bbox)
		log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", minLat, maxLat, minLng, maxLng)
	}

	start := time.Now()

	// Step 1: Parse OSM data.
	log.Println("Opening OSM file...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	log.Println("Parsing OSM data...")
	parseResult, err := osmparser.Parse(context.Background(), f, opts)
	if err != nil {
		log.Fatalf("Failed to parse OSM data: %v", err)
	}
	log.Printf("Parsed %d edges, %d nodes", len(parseResult.Edges), len(parseResult.NodeLat))

	// Step 2: Build graph.
	log.Println("Building graph...")
	g := graph.Build(parseResult)
	log.Printf("Graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	// Step 3: Extract largest connected component.
	log.Println("Extracting largest connected component...")
	componentNodes := graph.LargestComponent(g)
	log.Printf("Largest component: %d nodes (%.1f%%)", len(componentNodes), float64(len(componentNodes))/float64(g.NumNodes)*100)
	g = graph.FilterToComponent(g, componentNodes)
	log.Printf("Filtered graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	// Step 4: Contract CH.
	log.Println("Running Contraction Hierarchies...")
	chResult := ch.Contract(g)
	log.Printf("CH complete: %d fwd edges, %d bwd edges", len(chResult.FwdHead), len(chResult.BwdHead))

	// Step 5: Serialize to binary.
	log.Printf("Writing binary to %s...", *output)
	if err := graph.WriteBinary(*output, chResult); err != nil {
		log.Fatalf("Failed to write binary: %v", err)
	}

	info, _ := os.Stat(*output)
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f MB)", elapsed.Round(time.Second), *output, float64(info.Size())/(1024*1024))

	// Step 6: Write a BSON run-metadata sidecar alongside the binary graph.
	metaPath := strings.TrimSuffix(*output, ".bin") + ".meta.bson"
	meta := runMeta{
		NumNodes:     g.NumNodes,
		NumEdges:     g.NumEdges,
		NumFwdEdges:  len(chResult.FwdHead),
		NumBwdEdges:  len(chResult.BwdHead),
		BBox:         bboxDesc,
		BuildSeconds: elapsed.Seconds(),
		SourceFile:   *input,
	}
	if err := writeRunMeta(metaPath, meta); err != nil {
		log.Printf("Warning: failed to write run metadata sidecar: %v", err)
	} else {
		log.Printf("Wrote run metadata to %s", metaPath)
	}
}

// writeRunMeta BSON-encodes m and writes it to path.
func writeRunMeta(path string, m runMeta) error {
	data, err := bson.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal run metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write run metadata: %w", err)
	}
	return nil
}
