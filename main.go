package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mcncl/ctyper/internal/analyzer"
	"github.com/mcncl/ctyper/internal/config"
	"github.com/mcncl/ctyper/internal/errors"
	"github.com/mcncl/ctyper/internal/formatter"
	"github.com/mcncl/ctyper/internal/generator"
	"github.com/mcncl/ctyper/internal/logging"
	"github.com/mcncl/ctyper/internal/models"
	"github.com/mcncl/ctyper/internal/parser"
	"github.com/mcncl/ctyper/internal/writer"
	"github.com/rs/zerolog/log"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to the model file (YAML or JSON). If not specified, reads from stdin." short:"i"`
	OutputDir   string `help:"Directory the generated files are written to." short:"o" type:"path" default:"."`
	Name        string `help:"Base name of the generated files, overriding the model and config." short:"n"`
	Config      string `help:"Path to a config file. If not specified, .ctyper.yml is searched for." short:"c" type:"path"`
	HeaderOnly  bool   `help:"Generate only the header file." xor:"only"`
	SourceOnly  bool   `help:"Generate only the source file." xor:"only"`
	Stdout      bool   `help:"Write the generated code to stdout instead of files."`
	Format      bool   `help:"Tidy the generated code." short:"f" default:"true" negatable:""`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct model input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
}

// outputFile is a generated file waiting to be written.
type outputFile struct {
	name string
	text string
}

// newParser builds the kong parser for CLI. The input path is kept as typed
// since it is written into the autogen comment of every generated file.
func newParser(options ...kong.Option) (*kong.Kong, error) {
	return kong.New(&CLI, append([]kong.Option{
		kong.Name("ctyper"),
		kong.Description("A tool to generate C headers and sources from YAML or JSON models"),
		kong.UsageOnError(),
	}, options...)...)
}

func main() {
	parser, err := newParser()
	if err != nil {
		panic(err)
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		// Usage has already been shown by kong.UsageOnError()
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("ctyper version %s\n", writer.Version)
		return
	}

	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, CLI.Name, CLI.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	logging.Setup(os.Stderr, cfg.Dev.Debug)
	if configPath != "" {
		log.Debug().Str("path", configPath).Msg("using config file")
	}

	if err := run(&Context{Debug: cfg.Dev.Debug, Config: cfg}); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: ctyper --help\n")
		os.Exit(1)
	}
}

// run executes the main program logic. Nothing is written unless every
// requested file was generated.
func run(ctx *Context) error {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	// 1. Parse the model
	doc, err := parseInput()
	if err != nil {
		return err
	}
	if cfg.Name != "" {
		doc.Name = cfg.Name
	}

	// 2. Check it and fill in what can be derived
	if err := analyzer.NewAnalyzerWithConfig(cfg).Analyze(doc); err != nil {
		return err
	}

	// 3. Generate the requested files
	log.Debug().Str("name", doc.Name).Bool("header", !CLI.SourceOnly).Bool("source", !CLI.HeaderOnly).Msg("generating files")
	gen := generator.NewGeneratorWithConfig(cfg)
	var files []outputFile

	if !CLI.SourceOnly {
		header, err := gen.GenerateHeader(doc)
		if err != nil {
			return err
		}
		files = append(files, outputFile{name: generator.HeaderFileName(doc), text: header})
	}
	if !CLI.HeaderOnly {
		source, err := gen.GenerateSource(doc)
		if err != nil {
			return err
		}
		files = append(files, outputFile{name: generator.SourceFileName(doc), text: source})
	}

	// 4. Tidy the code if requested
	if CLI.Format && cfg.Formatting.Enabled {
		f := formatter.NewFormatterWithLineFeed(cfg.LineFeedString())
		for i := range files {
			files[i].text, err = f.Format(files[i].text)
			if err != nil {
				return err
			}
		}
	}

	// 5. Output the result
	return writeOutput(files)
}

// parseInput reads the model from a file or stdin
func parseInput() (*models.Document, error) {
	if CLI.Input != "" {
		return parser.ParseFile(CLI.Input)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return nil, errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput()
		}
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	return parser.Parse(os.Stdin)
}

// writeOutput writes the files to the output directory or to stdout
func writeOutput(files []outputFile) error {
	if CLI.Stdout {
		for i, file := range files {
			if i > 0 {
				if _, err := fmt.Fprintln(os.Stdout); err != nil {
					return errors.NewOutputError("failed to write to stdout", err)
				}
			}
			if _, err := io.WriteString(os.Stdout, file.text); err != nil {
				return errors.NewOutputError("failed to write to stdout", err)
			}
		}
		return nil
	}

	dir := CLI.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to create output directory '%s'", dir), err)
	}

	for _, file := range files {
		path := filepath.Join(dir, file.name)
		if err := os.WriteFile(path, []byte(file.text), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		log.Info().Str("file", path).Msg("generated")
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste a
// model and signal completion with Ctrl+D (EOF)
func readInteractiveInput() (*models.Document, error) {
	fmt.Fprintln(os.Stderr, "ctyper Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your YAML or JSON model below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var model strings.Builder

	for {
		line, err := reader.ReadString('\n')
		model.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
	}

	if strings.TrimSpace(model.String()) == "" {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing model...")
	return parser.ParseString(model.String())
}
