// Package snapshot captures the dashboard in headless Chrome.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"golang.org/x/net/html"
)

type Config struct {
	URL     string
	Timeout time.Duration
	Width   int64
	Height  int64
	// Settle is how long to wait after load so the physics layout can spread out.
	Settle time.Duration
	// Quality is the PNG screenshot quality, 100 is lossless.
	Quality int
}

func DefaultConfig() Config {
	return Config{
		URL:     "http://127.0.0.1:8501/",
		Timeout: 30 * time.Second,
		Width:   1600,
		Height:  900,
		Settle:  3 * time.Second,
		Quality: 100,
	}
}

type Result struct {
	PNG []byte
	// NodeCount is what the page reported in its sidebar, -1 if it could not be read.
	NodeCount       int
	DownloadedBytes int64
	Took            time.Duration
}

func (c Config) validate() error {
	if c.URL == "" {
		return errors.New("snapshot: no URL given")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("snapshot: unsupported scheme %q", u.Scheme)
	}
	if c.Timeout <= 0 {
		return errors.New("snapshot: timeout must be positive")
	}
	return nil
}

// Take loads the dashboard, waits for it to settle and screenshots the full page.
func Take(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	timeoutCtx, timeoutCancel := context.WithTimeout(ctx, cfg.Timeout)
	defer timeoutCancel()

	ctx, cancel := chromedp.NewContext(timeoutCtx)
	defer cancel()

	var downloadedBytes atomic.Int64
	countBytesAction := func(ctx context.Context) error {
		chromedp.ListenTarget(ctx, func(ev interface{}) {
			switch ev := ev.(type) {
			case *network.EventLoadingFinished:
				downloadedBytes.Add(int64(ev.EncodedDataLength))
			}
		})
		return nil
	}

	var png []byte
	var pageSource string
	err := chromedp.Run(ctx,
		network.Enable(),
		chromedp.ActionFunc(countBytesAction),
		chromedp.EmulateViewport(cfg.Width, cfg.Height),
		chromedp.Navigate(cfg.URL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(cfg.Settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			node, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return err
			}
			pageSource, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			return err
		}),
		chromedp.FullScreenshot(&png, cfg.Quality),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot of %s: %w", cfg.URL, err)
	}

	nodeCount := -1
	if parsed, err := html.Parse(strings.NewReader(pageSource)); err == nil {
		nodeCount = NodeCount(parsed)
	}

	return &Result{
		PNG:             png,
		NodeCount:       nodeCount,
		DownloadedBytes: downloadedBytes.Load(),
		Took:            time.Since(startTime),
	}, nil
}

// NodeCount reads the "Nodos visualizados" counter out of a rendered dashboard, -1
// if it is missing.
func NodeCount(doc *html.Node) int {
	var count = -1
	var f func(*html.Node) bool
	f = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "id" && a.Val == "node-count-value" {
					if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
						if v, err := strconv.Atoi(strings.TrimSpace(n.FirstChild.Data)); err == nil {
							count = v
						}
					}
					return true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if f(c) {
				return true
			}
		}
		return false
	}
	f(doc)
	return count
}
