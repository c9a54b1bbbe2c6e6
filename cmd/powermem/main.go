// Command powermem is a small CLI over the memory lifecycle engine,
// exercising add/search/update/delete/get-all/get-history from the shell.
// Grounded on the teacher's examples/basic/main.go flow (find .env, load
// config, construct client, run one operation, report outcome), adapted
// from a fixed demo script to a flag-driven subcommand dispatcher.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	embedderopenai "github.com/oblabs/memlifecycle/pkg/embedder/openai"
	"github.com/oblabs/memlifecycle/pkg/config"
	"github.com/oblabs/memlifecycle/pkg/engine"
	"github.com/oblabs/memlifecycle/pkg/graphstore"
	llmopenai "github.com/oblabs/memlifecycle/pkg/llm/openai"
	"github.com/oblabs/memlifecycle/pkg/vectorstore"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("failed to build engine: %v", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			log.Printf("warning: close failed: %v", err)
		}
	}()

	ctx := context.Background()

	switch cmd {
	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		user := fs.String("user", "", "user id")
		text := fs.String("text", "", "memory text")
		_ = fs.Parse(args)
		id, err := eng.Add(ctx, *text, *user, nil)
		must(err)
		fmt.Println(id)

	case "search":
		fs := flag.NewFlagSet("search", flag.ExitOnError)
		user := fs.String("user", "", "user id")
		query := fs.String("query", "", "query text")
		limit := fs.Int("limit", 10, "result limit")
		_ = fs.Parse(args)
		results, err := eng.Search(ctx, *query, *user, *limit)
		must(err)
		printMemories(results)

	case "update":
		fs := flag.NewFlagSet("update", flag.ExitOnError)
		id := fs.String("id", "", "memory id")
		text := fs.String("text", "", "new text")
		_ = fs.Parse(args)
		m, err := eng.Update(ctx, *id, *text)
		must(err)
		printMemories([]engine.Memory{m})

	case "delete":
		fs := flag.NewFlagSet("delete", flag.ExitOnError)
		id := fs.String("id", "", "memory id")
		_ = fs.Parse(args)
		must(eng.Delete(ctx, *id))
		fmt.Println("deleted")

	case "get-all":
		fs := flag.NewFlagSet("get-all", flag.ExitOnError)
		user := fs.String("user", "", "user id")
		_ = fs.Parse(args)
		results, err := eng.GetAll(ctx, *user)
		must(err)
		printMemories(results)

	case "get-history":
		fs := flag.NewFlagSet("get-history", flag.ExitOnError)
		user := fs.String("user", "", "user id")
		_ = fs.Parse(args)
		results, err := eng.GetHistory(ctx, *user)
		must(err)
		printMemories(results)

	default:
		usage()
		os.Exit(1)
	}
}

func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	embed, err := embedderopenai.NewClient(&embedderopenai.Config{
		APIKey:     cfg.Embedder.APIKey.Reveal(),
		BaseURL:    cfg.Embedder.Endpoint,
		Dimensions: config.EmbeddingDimensions(),
	})
	if err != nil {
		return nil, err
	}

	llmClient, err := llmopenai.NewClient(&llmopenai.Config{
		APIKey:  cfg.LLM.APIKey.Reveal(),
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.Endpoint,
	})
	if err != nil {
		return nil, err
	}

	return engine.New(embed, llmClient, vectorstore.NewInMemory(), graphstore.NewInMemory())
}

func printMemories(memories []engine.Memory) {
	for _, m := range memories {
		fmt.Printf("%s\t%s\t%s\t%.2f\t%s\n", m.ID, m.Category, m.UserID, m.Importance, m.Content)
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: powermem <add|search|update|delete|get-all|get-history> [flags]")
}
