// colonelctl is a minimal control CLI over the colonel document store.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/regularfry/colonel/internal/author"
	"github.com/regularfry/colonel/internal/config"
	"github.com/regularfry/colonel/internal/content"
	"github.com/regularfry/colonel/internal/revision"
	"github.com/regularfry/colonel/internal/search"
)

var configPath = flag.String("config", "", "path to config file")

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	switch cmd {
	case "save":
		if flag.NArg() < 3 {
			fmt.Fprintln(os.Stderr, "Usage: colonelctl save <doc-id> <json-content> [state]")
			os.Exit(1)
		}
		state := "master"
		if flag.NArg() >= 4 {
			state = flag.Arg(3)
		}
		cmdSave(flag.Arg(1), flag.Arg(2), state)
	case "promote":
		if flag.NArg() < 4 {
			fmt.Fprintln(os.Stderr, "Usage: colonelctl promote <doc-id> <from> <to>")
			os.Exit(1)
		}
		cmdPromote(flag.Arg(1), flag.Arg(2), flag.Arg(3))
	case "history":
		if flag.NArg() < 3 {
			fmt.Fprintln(os.Stderr, "Usage: colonelctl history <doc-id> <state>")
			os.Exit(1)
		}
		cmdHistory(flag.Arg(1), flag.Arg(2))
	case "list":
		cmdList()
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `colonelctl - control utility for the colonel document store

Usage: colonelctl [options] <command> [args]

Commands:
  save <doc-id> <json> [state]    Save json content to a document's state (default master)
  promote <doc-id> <from> <to>    Promote a document's content from one state to another
  history <doc-id> <state>        Print a state's revision history
  list                            List every registered document
  help                            Show this help message

Options:
  -config <path>  Path to config file (default: colonel.toml)`)
}

func loadConfig() *config.Config {
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "colonel: error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "colonel: error preparing storage: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func openIndex(cfg *config.Config) *revision.DocumentIndex {
	idx, err := revision.OpenDocumentIndex(cfg.StoragePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "colonel: error opening document index: %v\n", err)
		os.Exit(1)
	}
	return idx
}

func searchProvider(cfg *config.Config) search.Provider {
	switch cfg.SearchBackend {
	case "memory":
		return search.NewMemoryProvider()
	default:
		return search.NoopProvider{}
	}
}

func cmdSave(id, jsonContent, state string) {
	cfg := loadConfig()
	idx := openIndex(cfg)
	doc := revision.New(cfg.StoragePath, id, "document", idx, searchProvider(cfg))

	c, err := content.Parse([]byte(jsonContent))
	if err != nil {
		fmt.Fprintf(os.Stderr, "colonel: invalid content: %v\n", err)
		os.Exit(1)
	}
	doc.SetContent(c)

	rev, err := doc.SaveIn(state, author.Resolve(), "colonelctl save", time.Now())
	if err != nil && rev == nil {
		fmt.Fprintf(os.Stderr, "colonel: save failed: %v\n", err)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "colonel: warning: %v\n", err)
	}
	fmt.Printf("saved %s as revision %s\n", id, rev.ID())
}

func cmdPromote(id, from, to string) {
	cfg := loadConfig()
	idx := openIndex(cfg)
	doc := revision.Open(cfg.StoragePath, id, "document", idx, searchProvider(cfg))

	rev, err := doc.Promote(from, to, author.Resolve(), "colonelctl promote", time.Now())
	if err != nil && rev == nil {
		fmt.Fprintf(os.Stderr, "colonel: promote failed: %v\n", err)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "colonel: warning: %v\n", err)
	}
	fmt.Printf("promoted %s from %s to %s as revision %s\n", id, from, to, rev.ID())
}

func cmdHistory(id, state string) {
	cfg := loadConfig()
	idx := openIndex(cfg)
	doc := revision.Open(cfg.StoragePath, id, "document", idx, searchProvider(cfg))

	it, err := doc.History(state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "colonel: history failed: %v\n", err)
		os.Exit(1)
	}
	revs, err := it.Collect()
	if err != nil {
		fmt.Fprintf(os.Stderr, "colonel: history failed: %v\n", err)
		os.Exit(1)
	}
	for _, r := range revs {
		msg, _ := r.Message()
		ts, _ := r.Timestamp()
		typ, _ := r.Type()
		fmt.Printf("%s  %-10s  %s  %s\n", r.ID(), typ, ts.Format(time.RFC3339), msg)
	}
}

func cmdList() {
	cfg := loadConfig()
	idx := openIndex(cfg)
	docs, err := idx.Documents()
	if err != nil {
		fmt.Fprintf(os.Stderr, "colonel: list failed: %v\n", err)
		os.Exit(1)
	}
	for _, d := range docs {
		fmt.Printf("%s\t%s\n", d.ID, d.Type)
	}
}
