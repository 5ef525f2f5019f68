package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"goa.design/clue/log"
	"golang.org/x/sync/errgroup"

	"github.com/w-h-a/factfinder"
	"github.com/w-h-a/factfinder/generator"
	"github.com/w-h-a/factfinder/generator/anthropic"
	"github.com/w-h-a/factfinder/generator/google"
	"github.com/w-h-a/factfinder/generator/ratelimit"
	queryhandler "github.com/w-h-a/factfinder/internal/handler/query"
	"github.com/w-h-a/factfinder/internal/service/query"
	"github.com/w-h-a/factfinder/model"
	"github.com/w-h-a/factfinder/server"
	httpserver "github.com/w-h-a/factfinder/server/http"
)

var (
	cfg struct {
		// Generator config
		Provider  string        `help:"Chat model provider" enum:"openai,anthropic,google" default:"openai"`
		APIKey    string        `help:"API Key for the chat model" env:"OPENAI_API_KEY" default:""`
		Model     string        `help:"Model identifier, required for non-openai providers" default:""`
		Timeout   time.Duration `help:"Per-request timeout for the chat model" default:"2m"`
		RateLimit float64       `help:"Chat requests per second, 0 disables limiting" default:"0"`
		Burst     int           `help:"Burst size for the chat rate limit" default:"1"`

		// Tool config
		SearchKey    string `help:"API Key for the web search tool" env:"TAVILY_API_KEY" default:""`
		Encyclopedia bool   `help:"Offer the encyclopedia lookup tool to the agent" default:"false"`

		// Agent config
		MaxIterations int           `help:"Number of steps the agent may take per question" default:"15"`
		QueryTimeout  time.Duration `help:"Upper bound on one question end to end" default:"5m"`
		SystemPrompt  string        `help:"Override the agent's system prompt" default:""`

		Verbose bool `help:"Enable debug logs" short:"v"`

		Ask   askCmd   `cmd:"" help:"Answer a single question and print the envelope"`
		Batch batchCmd `cmd:"" help:"Answer questions from a JSONL file"`
		Serve serveCmd `cmd:"" help:"Serve the query API over HTTP"`
	}
)

type askCmd struct {
	Id       string `help:"Envelope id, a random UUID when empty" default:""`
	Question string `arg:"" help:"Question to answer"`
}

func (c *askCmd) Run(ctx context.Context, ff *factfinder.FactFinder) error {
	id := c.Id
	if len(id) == 0 {
		id = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()

	out, err := ff.ProcessQuery(ctx, c.Question, id)
	if err != nil {
		return err
	}

	fmt.Println(out)

	return nil
}

type batchCmd struct {
	In       string `help:"JSONL input of {\"id\", \"question\"} rows, - for stdin" default:"-"`
	Out      string `help:"JSONL output of envelopes, - for stdout" default:"-"`
	Parallel int    `help:"Number of questions processed at once" default:"4"`
}

type batchRow struct {
	Id       json.RawMessage `json:"id"`
	Question string          `json:"question"`
}

func (c *batchCmd) Run(ctx context.Context, ff *factfinder.FactFinder) error {
	in, err := openInput(c.In)
	if err != nil {
		return err
	}
	defer in.Close()

	rows, err := readRows(in)
	if err != nil {
		return err
	}

	out, err := openOutput(c.Out)
	if err != nil {
		return err
	}
	defer out.Close()

	results := make([]string, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Parallel, 1))

	for i, row := range rows {
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(gctx, cfg.QueryTimeout)
			defer cancel()

			id := query.ResolveId(row.Id)

			envelope, err := ff.ProcessQuery(qctx, row.Question, id)
			if err != nil {
				log.Error(gctx, err, log.KV{K: "row", V: i})
				envelope, err = query.Marshal(query.Failure{Id: id, Error: err.Error()})
				if err != nil {
					return err
				}
			}

			results[i] = envelope

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	for _, envelope := range results {
		if _, err := fmt.Fprintln(w, envelope); err != nil {
			return err
		}
	}

	log.Info(ctx, log.KV{K: "msg", V: "batch done"}, log.KV{K: "rows", V: len(rows)})

	return w.Flush()
}

func readRows(r io.Reader) ([]batchRow, error) {
	var rows []batchRow

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 {
			continue
		}

		var row batchRow
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rows = append(rows, row)
	}

	return rows, scanner.Err()
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type serveCmd struct {
	Address           string        `help:"Address to listen on" default:":8080"`
	ShutdownTimeout   time.Duration `help:"Grace period for in-flight requests on shutdown" default:"10s"`
	ReadHeaderTimeout time.Duration `help:"Limit on reading request headers" default:"10s"`
}

func (c *serveCmd) Run(ctx context.Context, ff *factfinder.FactFinder) error {
	srv := httpserver.NewServer(
		server.WithAddress(c.Address),
		server.WithShutdownTimeout(c.ShutdownTimeout),
		server.WithHandler(queryhandler.NewRouter(ff, cfg.QueryTimeout)),
		httpserver.WithMiddleware(log.HTTP(ctx)),
		httpserver.WithReadHeaderTimeout(c.ReadHeaderTimeout),
	)

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Start()
	}()

	log.Info(ctx, log.KV{K: "msg", V: "serving"}, log.KV{K: "address", V: c.Address})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(ctx, log.KV{K: "msg", V: "shutting down"})

	if err := srv.Stop(context.Background()); err != nil {
		return err
	}

	return <-errCh
}

func newGenerator() (generator.Generator, error) {
	opts := []generator.Option{
		generator.WithTimeout(cfg.Timeout),
	}

	if len(cfg.APIKey) > 0 {
		opts = append(opts, generator.WithApiKey(cfg.APIKey))
	}

	var gen generator.Generator

	switch cfg.Provider {
	case "anthropic", "google":
		if len(cfg.Model) == 0 {
			return nil, fmt.Errorf("--model is required for provider %q", cfg.Provider)
		}
		opts = append(opts, generator.WithModel(cfg.Model))
		if cfg.Provider == "anthropic" {
			gen = anthropic.NewGenerator(opts...)
		} else {
			gen = google.NewGenerator(opts...)
		}
	default:
		gen = model.LoadModel(opts...)
	}

	return ratelimit.NewGenerator(gen, cfg.RateLimit, cfg.Burst), nil
}

func main() {
	// Parse inputs
	kctx := kong.Parse(&cfg,
		kong.Name("factfinder"),
		kong.Description("Answers factual questions with a tool-using agent."),
	)

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if cfg.Verbose {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create the chat model
	gen, err := newGenerator()
	if err != nil {
		log.Fatal(ctx, err)
	}

	if len(cfg.SearchKey) == 0 {
		log.Fatal(ctx, errors.New("missing search API key; set TAVILY_API_KEY or --search-key"))
	}

	// Create the agent
	ff := factfinder.New(
		gen,
		factfinder.DefaultToolHandlers(gen, cfg.SearchKey, cfg.Encyclopedia),
		cfg.MaxIterations,
		cfg.SystemPrompt,
	)

	kctx.BindTo(ctx, (*context.Context)(nil))

	if err := kctx.Run(ff); err != nil {
		log.Fatal(ctx, err)
	}
}
