package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kittclouds/postag/internal/store"
	"github.com/kittclouds/postag/pkg/batch"
	"github.com/kittclouds/postag/pkg/corpus"
	"github.com/kittclouds/postag/pkg/evaluate"
	"github.com/kittclouds/postag/pkg/model"
	"github.com/kittclouds/postag/pkg/pipeline"
	"github.com/kittclouds/postag/pkg/tagger"
)

// modelFlags selects a model from a table file or from the store.
type modelFlags struct {
	path string
	db   string
	id   string
	name string
}

func (f *modelFlags) register(fs *flag.FlagSet, e *env) {
	fs.StringVar(&f.path, "model", e.cfg.ModelPath, "probability table file")
	fs.StringVar(&f.db, "db", e.cfg.DBPath, "model store DSN")
	fs.StringVar(&f.id, "model-id", "", "stored model ID")
	fs.StringVar(&f.name, "name", "", "use the latest stored model with this name")
}

// load returns the selected model. When it came from the store, the open
// store and the model ID are returned too; the caller closes the store.
func (f *modelFlags) load(e *env) (*model.Model, *store.SQLiteStore, string, error) {
	if f.id != "" || f.name != "" {
		if f.db == "" {
			return nil, nil, "", usageErr("-model-id and -name need -db")
		}
		s, err := store.NewSQLiteStoreWithDSN(f.db)
		if err != nil {
			return nil, nil, "", err
		}
		id := f.id
		if id == "" {
			info, err := s.LatestModel(f.name)
			if err != nil {
				s.Close()
				return nil, nil, "", err
			}
			if info == nil {
				s.Close()
				return nil, nil, "", fmt.Errorf("no stored model named %q: %w", f.name, store.ErrNotFound)
			}
			id = info.ID
		}
		m, err := s.LoadModel(id)
		if err != nil {
			s.Close()
			return nil, nil, "", err
		}
		e.logger.Info("model loaded", "db", f.db, "model_id", id, "words", m.Len())
		return m, s, id, nil
	}

	if f.path == "" {
		return nil, nil, "", usageErr("no model given; use -model FILE or -db DSN -model-id ID")
	}
	m, err := readModelFile(f.path)
	if err != nil {
		return nil, nil, "", err
	}
	e.logger.Info("model loaded", "path", f.path, "words", m.Len())
	return m, nil, "", nil
}

func readModelFile(path string) (*model.Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return model.ReadProbabilities(file, path)
}

// =============================================================================
// train
// =============================================================================

func runTrain(e *env, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	corpusPath := fs.String("corpus", e.cfg.CorpusPath, "tagged training corpus")
	counts := fs.Bool("counts", false, "corpus is a word/tag count table")
	out := fs.String("out", e.cfg.ModelPath, "probability table to write")
	db := fs.String("db", e.cfg.DBPath, "model store DSN")
	name := fs.String("name", "", "name to store the model under")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *corpusPath == "" {
		return usageErr("-corpus is required")
	}
	if *out == "" && *name == "" {
		return usageErr("nothing to do; give -out FILE or -db DSN -name NAME")
	}
	if *name != "" && *db == "" {
		return usageErr("-name needs -db")
	}

	file, err := os.Open(*corpusPath)
	if err != nil {
		return err
	}
	defer file.Close()

	var tc model.TagCount
	if *counts {
		tc, err = model.ReadCounts(file, *corpusPath)
	} else {
		tc, err = model.ReadCorpus(file, *corpusPath)
	}
	if err != nil {
		return err
	}
	m := model.FromCounts(tc)
	e.logger.Info("model trained", "corpus", *corpusPath, "tokens", tc.Tokens(), "words", m.Len())

	if *out != "" {
		if err := writeModelFile(*out, m); err != nil {
			return err
		}
		e.logger.Info("model written", "path", *out)
	}

	if *name != "" {
		s, err := store.NewSQLiteStoreWithDSN(*db)
		if err != nil {
			return err
		}
		defer s.Close()
		info, err := s.SaveModel(*name, m)
		if err != nil {
			return err
		}
		e.logger.Info("model stored", "db", *db, "model_id", info.ID, "name", info.Name)
		fmt.Fprintln(e.stdout, info.ID)
	}
	return nil
}

func writeModelFile(path string, m *model.Model) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := model.WriteProbabilities(file, m); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// =============================================================================
// tag
// =============================================================================

// explainer wraps a classifier and keeps the rule behind its last decision.
type explainer struct {
	classify func(word string, ctx tagger.Context) (string, string)
	last     string
}

func newExplainer(c tagger.Classifier, m *model.Model) *explainer {
	if cascade, ok := c.(*tagger.Cascade); ok {
		return &explainer{classify: cascade.Decide}
	}
	return &explainer{classify: func(word string, ctx tagger.Context) (string, string) {
		rule := tagger.RuleDefault
		if m.Contains(word) {
			rule = tagger.RuleTopTag
		}
		return c.Classify(word, ctx), rule
	}}
}

func (x *explainer) Classify(word string, ctx tagger.Context) string {
	tag, rule := x.classify(word, ctx)
	x.last = rule
	return tag
}

func runTag(e *env, args []string) error {
	fs := flag.NewFlagSet("tag", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	var mf modelFlags
	mf.register(fs, e)
	modeName := fs.String("mode", e.cfg.Mode, "baseline or enhanced")
	explain := fs.Bool("explain", false, "print the deciding rule after each token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 2 {
		return usageErr("at most one input and one output file")
	}
	mode, err := tagger.ParseMode(*modeName)
	if err != nil {
		return err
	}

	m, s, modelID, err := mf.load(e)
	if err != nil {
		return err
	}
	if s != nil {
		defer s.Close()
	}

	in, source := e.stdin, "stdin"
	if fs.NArg() >= 1 && fs.Arg(0) != "-" {
		file, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer file.Close()
		in, source = file, fs.Arg(0)
	}
	out := e.stdout
	var outFile *os.File
	if fs.NArg() == 2 && fs.Arg(1) != "-" {
		if outFile, err = os.Create(fs.Arg(1)); err != nil {
			return err
		}
		defer outFile.Close()
		out = outFile
	}

	c, err := tagger.New(mode, m)
	if err != nil {
		return err
	}
	x := newExplainer(c, m)
	p := pipeline.NewWithClassifier(x, m, pipeline.WithLogger(e.logger))

	sc := corpus.NewWordScanner(in, source)
	bw := bufio.NewWriter(out)
	for tok := range p.Run(sc.Words()) {
		if *explain {
			_, err = fmt.Fprintf(bw, "%s\t%s\n", tok, x.last)
		} else {
			_, err = fmt.Fprintln(bw, tok)
		}
		if err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if outFile != nil {
		if err := outFile.Close(); err != nil {
			return err
		}
	}

	stats := p.Stats()
	e.logger.Info("tagging finished", "source", source, "mode", mode, "tokens", stats.Tokens, "unknown", stats.Unknown)
	if s != nil {
		run := &store.Run{ModelID: modelID, Mode: mode.String(), Source: source, Tokens: stats.Tokens, Unknown: stats.Unknown}
		if err := s.RecordRun(run); err != nil {
			e.logger.Warn("failed to record run", "error", err)
		}
	}
	return nil
}

// =============================================================================
// batch
// =============================================================================

func runBatch(e *env, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	var mf modelFlags
	mf.register(fs, e)
	modeName := fs.String("mode", e.cfg.Mode, "baseline or enhanced")
	workers := fs.Int("workers", e.cfg.Workers, "documents tagged at once")
	outDir := fs.String("out", "", "directory for tagged files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outDir == "" || fs.NArg() == 0 {
		return usageErr("-out DIR and at least one input file are required")
	}
	mode, err := tagger.ParseMode(*modeName)
	if err != nil {
		return err
	}

	m, s, modelID, err := mf.load(e)
	if err != nil {
		return err
	}
	if s != nil {
		defer s.Close()
	}

	docs := make([]batch.Document, 0, fs.NArg())
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, batch.Document{ID: path, Text: string(data)})
	}

	svc, err := batch.NewService(batch.Config{Mode: mode, Workers: *workers}, m, e.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := svc.TagDocuments(ctx, docs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	total := pipeline.Stats{}
	for _, res := range results {
		dst := filepath.Join(*outDir, strings.TrimSuffix(filepath.Base(res.ID), filepath.Ext(res.ID))+".pos")
		if err := writeTokens(dst, res.Tokens); err != nil {
			return err
		}
		total.Tokens += res.Stats.Tokens
		total.Unknown += res.Stats.Unknown
		if s != nil {
			run := &store.Run{ModelID: modelID, Mode: mode.String(), Source: res.ID, Tokens: res.Stats.Tokens, Unknown: res.Stats.Unknown}
			if err := s.RecordRun(run); err != nil {
				e.logger.Warn("failed to record run", "source", res.ID, "error", err)
			}
		}
	}
	e.logger.Info("batch finished",
		"documents", len(results),
		"tokens", total.Tokens,
		"unknown", total.Unknown,
		"elapsed", time.Since(start))
	return nil
}

func writeTokens(path string, toks []corpus.Token) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := corpus.NewWriter(file)
	for _, tok := range toks {
		if err := w.Write(tok); err != nil {
			file.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// =============================================================================
// score
// =============================================================================

func readTaggedFile(path string) ([]corpus.Token, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return corpus.ReadTagged(file, path)
}

func runScore(e *env, args []string) error {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	goldPath := fs.String("gold", "", "gold tagged file")
	outputPath := fs.String("output", "", "tagger output file")
	modelPath := fs.String("model", "", "probability table for the known/unknown split")
	db := fs.String("db", e.cfg.DBPath, "model store DSN")
	modelID := fs.String("model-id", "", "stored model; the score is recorded as a run")
	modeName := fs.String("mode", e.cfg.Mode, "mode recorded with the run")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *goldPath == "" || *outputPath == "" {
		return usageErr("-gold and -output are required")
	}
	mode, err := tagger.ParseMode(*modeName)
	if err != nil {
		return err
	}

	gold, err := readTaggedFile(*goldPath)
	if err != nil {
		return err
	}
	pred, err := readTaggedFile(*outputPath)
	if err != nil {
		return err
	}

	var (
		m *model.Model
		s *store.SQLiteStore
	)
	switch {
	case *modelID != "":
		mf := modelFlags{db: *db, id: *modelID}
		if m, s, _, err = mf.load(e); err != nil {
			return err
		}
		defer s.Close()
	case *modelPath != "":
		if m, err = readModelFile(*modelPath); err != nil {
			return err
		}
	}

	var known func(string) bool
	if m != nil {
		known = m.Contains
	}
	report, err := evaluate.Score(pred, gold, known)
	if err != nil {
		return err
	}
	if _, err := report.WriteTo(e.stdout); err != nil {
		return err
	}

	if s != nil {
		acc := report.Accuracy()
		run := &store.Run{
			ModelID:  *modelID,
			Mode:     mode.String(),
			Source:   *outputPath,
			Tokens:   report.All.Total,
			Unknown:  report.Unknown.Total,
			Accuracy: &acc,
		}
		if err := s.RecordRun(run); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// models
// =============================================================================

func runModels(e *env, args []string) error {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	db := fs.String("db", e.cfg.DBPath, "model store DSN")
	del := fs.String("delete", "", "delete the model with this ID")
	export := fs.String("export", "", "print the model with this ID as JSON")
	importPath := fs.String("import", "", "import a model exported as JSON")
	runs := fs.String("runs", "", "list runs of the model with this ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *db == "" {
		return usageErr("-db is required")
	}

	s, err := store.NewSQLiteStoreWithDSN(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	switch {
	case *del != "":
		if err := s.DeleteModel(*del); err != nil {
			return err
		}
		e.logger.Info("model deleted", "model_id", *del)
		return nil
	case *export != "":
		data, err := s.Export(*export)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(e.stdout, string(data))
		return err
	case *importPath != "":
		data, err := os.ReadFile(*importPath)
		if err != nil {
			return err
		}
		info, err := s.Import(data)
		if err != nil {
			return err
		}
		e.logger.Info("model imported", "model_id", info.ID, "name", info.Name)
		return nil
	case *runs != "":
		list, err := s.ListRuns(*runs)
		if err != nil {
			return err
		}
		return printRuns(e.stdout, list)
	}

	list, err := s.ListModels()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tWORDS\tENTRIES\tCREATED")
	for _, info := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", info.ID, info.Name, info.Words, info.Entries,
			time.Unix(0, info.CreatedAt).UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func printRuns(w io.Writer, runs []*store.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMODE\tSOURCE\tTOKENS\tUNKNOWN\tACCURACY")
	for _, r := range runs {
		acc := "-"
		if r.Accuracy != nil {
			acc = fmt.Sprintf("%.4f", *r.Accuracy)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", r.ID, r.Mode, r.Source, r.Tokens, r.Unknown, acc)
	}
	return tw.Flush()
}
