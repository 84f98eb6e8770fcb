package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"

	"khabar-verifier/internal/classifier"
	"khabar-verifier/internal/config"
	"khabar-verifier/internal/crawler"
	"khabar-verifier/internal/ioformats"
	"khabar-verifier/internal/models"
	"khabar-verifier/internal/parser"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup happens before exit.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("input", "", "input file (csv with 'url' column or ndjson)")
	out := fs.String("output", "", "output NDJSON file (default stdout)")
	concurrency := fs.Int("concurrency", 10, "worker concurrency")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *in == "" {
		fmt.Fprintln(stderr, "missing --input")
		return 2
	}
	if *concurrency < 1 {
		*concurrency = 1
	}

	urls, err := ioformats.ReadURLs(*in)
	if err != nil {
		fmt.Fprintln(stderr, "read input:", err)
		return 1
	}

	cfg := config.Load()
	client := crawler.NewHTTPClient(cfg.FetchTimeout, cfg.DialTimeout, cfg.MaxBodyBytes, cfg.UserAgent)
	cl := classifier.New(classifier.DefaultKeywords())
	par := parser.New()

	results := make([]models.BatchRecord, len(urls))

	var mu sync.Mutex // guards stderr
	sem := make(chan struct{}, *concurrency)
	done := make(chan int, len(urls))

	for i, u := range urls {
		i, u := i, u
		sem <- struct{}{} // acquire
		go func() {
			defer func() { <-sem; done <- i }()
			ctx, cancel := context.WithTimeout(context.Background(), cfg.HandlerTimeout)
			defer cancel()
			rec, err := analyze(ctx, client, cl, par, u)
			if err != nil {
				mu.Lock()
				fmt.Fprintln(stderr, "failed:", failureDetail(err))
				mu.Unlock()
			}
			results[i] = rec
		}()
	}
	for range urls {
		<-done
	}

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintln(stderr, "create output:", err)
			return 1
		}
		defer f.Close()
		w = f
	}
	if err := ioformats.WriteNDJSON(w, results); err != nil {
		fmt.Fprintln(stderr, "write output:", err)
		return 1
	}
	return 0
}

type fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// analyze always returns a record; err is the cause behind rec.Error.
func analyze(ctx context.Context, f fetcher, cl *classifier.Classifier, par *parser.Parser, u string) (models.BatchRecord, error) {
	rec := models.BatchRecord{URL: u}
	body, err := f.Fetch(ctx, u)
	if err != nil {
		rec.Error = err.Error()
		return rec, err
	}
	res, fakeScore, realScore, err := cl.Analyze(body)
	if err != nil {
		rec.Error = err.Error()
		return rec, err
	}
	rec.Title = par.Title(body)
	rec.FakeScore, rec.RealScore = fakeScore, realScore
	rec.Result = &res
	return rec, nil
}

func failureDetail(err error) string {
	var fe *crawler.FetchError
	var ce *classifier.ClassificationError
	switch {
	case errors.As(err, &fe):
		return fe.Detail()
	case errors.As(err, &ce):
		return fmt.Sprintf("classification: %v", ce.Cause)
	default:
		return err.Error()
	}
}
