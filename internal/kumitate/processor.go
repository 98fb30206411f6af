package kumitate

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Processor runs the scan, check and generate pipeline over package
// patterns.
type Processor struct {
	parser *Parser
	output string
}

// NewProcessor creates a processor writing a generated file named output
// into each package directory.
func NewProcessor(output string) *Processor {
	return &Processor{
		parser: NewParser(),
		output: output,
	}
}

// ProcessPatterns generates constructors for every matched package that
// declares components.
func (p *Processor) ProcessPatterns(patterns []string) error {
	scans, err := p.parser.ParsePatterns(patterns)
	if err != nil {
		return err
	}

	if len(scans) == 0 {
		slog.Info("No components found", "patterns", patterns)
		return nil
	}

	var eg errgroup.Group
	for _, scan := range scans {
		eg.Go(func() error {
			return p.processPackage(scan)
		})
	}

	return eg.Wait()
}

// processPackage checks and generates one package.
func (p *Processor) processPackage(scan *PackageScan) error {
	slog.Debug("Processing package", "package", scan.Path, "components", len(scan.Components))

	graph, err := NewGraph(scan)
	if err != nil {
		return fmt.Errorf("package %s: %w", scan.Path, err)
	}

	outputPath := filepath.Join(scan.Dir, p.output)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create file %s: %w", outputPath, err)
	}
	defer f.Close()

	if err := Generate(f, scan, graph.Order()); err != nil {
		return fmt.Errorf("generate %s: %w", outputPath, err)
	}

	slog.Info("Generated constructors", "package", scan.Path, "file", outputPath, "components", len(scan.Components))

	return nil
}

// VerifyPatterns checks the component graphs of the matched packages
// without writing any files.
func (p *Processor) VerifyPatterns(patterns []string) error {
	scans, err := p.parser.ParsePatterns(patterns)
	if err != nil {
		return err
	}

	var errs []error
	for _, scan := range scans {
		if _, err := NewGraph(scan); err != nil {
			errs = append(errs, fmt.Errorf("package %s: %w", scan.Path, err))
			continue
		}

		slog.Info("Component graph ok", "package", scan.Path, "components", len(scan.Components))
	}

	return errors.Join(errs...)
}
