// Command crawlkit-demo is a minimal CLI around package crawlkit: it
// crawls one or more seed URLs on their own host, isolates each page's
// main content, converts it to Markdown, drops pages whose content
// duplicates one already emitted, and prints one JSON line per
// surviving page to stdout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/crawlkit/crawlkit"
	"github.com/crawlkit/crawlkit/contrib/hashutil"
	"github.com/crawlkit/crawlkit/contrib/markdown"
	"github.com/crawlkit/crawlkit/contrib/readability"
	"github.com/crawlkit/crawlkit/extract"
)

var (
	seedURLs      []string
	parallelLimit int
	timeout       time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "crawlkit-demo",
	Short: "Crawl a site and print Markdown-converted pages as JSON lines.",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringArrayVar(&seedURLs, "seed-url", nil, "one or more starting URLs (can be repeated)")
	rootCmd.Flags().IntVar(&parallelLimit, "parallel-limit", 16, "per-site concurrent fetch budget")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "overall crawl timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// page is the demo's output record: a converted document plus its
// source URL, gated by ShouldProcess to drop pages with no usable
// content.
type page struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

func (p page) ShouldProcess() bool { return p.Markdown != "" }

func run(cmd *cobra.Command, args []string) error {
	if len(seedURLs) == 0 {
		return fmt.Errorf("at least one --seed-url is required")
	}

	builder := crawlkit.NewSite[struct{}, page]().ParallelLimit(parallelLimit)
	for _, raw := range seedURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parsing seed URL %q: %w", raw, err)
		}
		builder = builder.Seed(u)
	}

	// seenContent dedups pages by content fingerprint, independent of
	// and layered on top of the site's mandatory per-path URL dedup:
	// two distinct paths serving byte-identical rendered content (a
	// canonical/alias pair, a paginated duplicate) only emit once.
	var seenContent sync.Map

	builder = builder.Handle(func(u extract.URL, doc readability.Document) page {
		result, err := markdown.Convert(doc.Content())
		if err != nil {
			return page{}
		}
		sum, err := hashutil.Fingerprint(result.Markdown, hashutil.AlgoBLAKE3)
		if err != nil {
			return page{}
		}
		if _, duplicate := seenContent.LoadOrStore(sum, struct{}{}); duplicate {
			return page{}
		}
		title, _ := markdown.Title(result.Markdown)
		return page{URL: u.Value().String(), Title: title, Markdown: string(result.Markdown)}
	})

	site, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building site: %w", err)
	}

	runner := crawlkit.NewRunner()
	runner.Add(site)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	for p := range crawlkit.RunTyped[page](runner, ctx) {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
	}
	return nil
}
