// Command generate-config writes an example configuration with every default
// filled in. Pass "-" to print to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/debemdeboas/archive-comments/internal/config"
	"gopkg.in/yaml.v3"
)

const header = "# Archive Comments Configuration Example\n" +
	"# Shared by comment-server and composer. Copy to config.yaml and customize as needed.\n\n"

// exampleConfig renders the default configuration as commented YAML.
func exampleConfig() ([]byte, error) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return append([]byte(header), yamlData...), nil
}

func main() {
	output, err := exampleConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		os.Stdout.Write(output)
		return
	}
	if err := os.WriteFile(outputFile, output, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
