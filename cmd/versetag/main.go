// Command versetag ingests Bible XML sources into a verse database and
// annotates every verse with themes, moods, tone and daypart distributions,
// safety flags, and familiarity scores.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/versetag/core/semantic"
	"github.com/FocuswithJustin/versetag/internal/logging"
	"github.com/FocuswithJustin/versetag/internal/pipeline"
	"github.com/FocuswithJustin/versetag/internal/store"
)

const version = "0.1.0"

// CLI defines the command-line interface for versetag.
var CLI struct {
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log output format (text or json)"`

	Ingest  IngestCmd  `cmd:"" help:"Ingest a source file: extract, annotate, and store verses"`
	Patch   PatchCmd   `cmd:"" help:"Fill empty verse texts from a second source without touching populated rows"`
	Labels  LabelsCmd  `cmd:"" help:"Print the annotation label vocabularies"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// storeFlags are the database flags shared by the writing commands.
type storeFlags struct {
	Driver string `default:"sqlite" enum:"sqlite,postgres" env:"VERSETAG_DRIVER" help:"Database backend"`
	DSN    string `name:"dsn" default:"versetag.db" env:"VERSETAG_DSN" help:"Database path (sqlite) or connection string (postgres)"`
}

func (f storeFlags) open(ctx context.Context) (*store.Store, error) {
	s, err := store.Open(f.Driver, f.DSN)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// IngestCmd runs the full extract-annotate-store pipeline on one file.
type IngestCmd struct {
	storeFlags

	Paths       []string `arg:"" name:"path" help:"Source files (.xml, .xml.gz, or .xml.xz)" type:"existingfile"`
	Translation string   `required:"" help:"Translation code to tag rows with (e.g. KJV)"`
	Dialect     string   `default:"" enum:",osis,usfx" help:"Force the source dialect instead of sniffing"`
	BatchSize   int      `name:"batch-size" default:"2000" help:"Verses per transaction"`
	Workers     int      `default:"1" help:"Concurrent annotation workers per batch"`

	NoEmbeddings bool   `name:"no-embeddings" help:"Skip the embedding model and use keyword fallback annotations"`
	EmbedURL     string `name:"embed-url" default:"http://localhost:11434" env:"VERSETAG_EMBED_URL" help:"Embedding server base URL"`
	EmbedModel   string `name:"embed-model" default:"all-minilm" env:"VERSETAG_EMBED_MODEL" help:"Embedding model name"`
}

func (c *IngestCmd) Run() error {
	ctx, stop := signalContext()
	defer stop()

	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	emb := c.embedder(ctx)
	annotator, err := semantic.NewAnnotator(ctx, emb)
	if err != nil {
		return err
	}

	runner := pipeline.New(pipeline.Config{
		Store:       s,
		Annotator:   annotator,
		Translation: c.Translation,
		Dialect:     c.Dialect,
		BatchSize:   c.BatchSize,
		Workers:     c.Workers,
	})
	for _, path := range c.Paths {
		res, err := runner.Run(ctx, path)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		fmt.Printf("%s run %s: %d verses, %d annotations (%d batches, %s dialect, %s)\n",
			path, res.RunID, res.Verses, res.Annotations, res.Batches, res.Dialect, res.Elapsed.Round(time.Millisecond))
		if skipped := res.Stats.Skipped(); skipped > 0 {
			fmt.Printf("  skipped %d records (%d malformed, %d empty)\n",
				skipped, res.Stats.SkippedMalformed, res.Stats.SkippedEmpty)
		}
		if res.Stats.AnomalousRefs > 0 {
			fmt.Printf("  kept %d refs with anomalous chapter/verse numbers\n", res.Stats.AnomalousRefs)
		}
	}
	return nil
}

// embedder picks the fingerprint provider. An unreachable embedding server
// degrades to the keyword fallback instead of failing the run.
func (c *IngestCmd) embedder(ctx context.Context) semantic.Embedder {
	if c.NoEmbeddings {
		logging.Info("embeddings disabled, using keyword fallback")
		return semantic.Deterministic{}
	}
	emb := semantic.NewOllamaEmbedder(c.EmbedModel, semantic.WithBaseURL(c.EmbedURL))
	if err := emb.Ping(ctx); err != nil {
		logging.Warn("embedding server unreachable, using keyword fallback",
			"url", c.EmbedURL, "error", err.Error())
		return semantic.Deterministic{}
	}
	return emb
}

// PatchCmd fills empty verse texts from a second source.
type PatchCmd struct {
	storeFlags

	Path        string `arg:"" help:"Source file (.xml, .xml.gz, or .xml.xz)" type:"existingfile"`
	Translation string `required:"" help:"Translation code of the rows to patch"`
	Dialect     string `default:"" enum:",osis,usfx" help:"Force the source dialect instead of sniffing"`
	BatchSize   int    `name:"batch-size" default:"2000" help:"Verses per transaction"`
}

func (c *PatchCmd) Run() error {
	ctx, stop := signalContext()
	defer stop()

	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	runner := pipeline.New(pipeline.Config{
		Store:       s,
		Translation: c.Translation,
		Dialect:     c.Dialect,
		BatchSize:   c.BatchSize,
		Patch:       true,
	})
	res, err := runner.Run(ctx, c.Path)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: patched from %d source verses (%d batches, %s dialect)\n",
		res.RunID, res.Verses, res.Batches, res.Dialect)
	return nil
}

// LabelsCmd prints the annotation vocabularies.
type LabelsCmd struct{}

func (c *LabelsCmd) Run() error {
	sections := []struct {
		name   string
		labels []semantic.Label
	}{
		{"themes", semantic.Themes},
		{"moods", semantic.Moods},
		{"tones", semantic.Tones},
		{"dayparts", semantic.Dayparts},
	}
	for _, sec := range sections {
		fmt.Printf("%s:\n", sec.name)
		for _, l := range sec.labels {
			fmt.Printf("  %-14s %s\n", l.Name, l.Description)
		}
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("versetag %s (sqlite driver: %s)\n", version, store.DriverType())
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("versetag"),
		kong.Description("Bible verse ingestion and semantic annotation pipeline"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
