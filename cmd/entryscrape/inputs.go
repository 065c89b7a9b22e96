package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/entryscrape/internal/payload"
)

var urlCookies string

func init() {
	urlCmd.Flags().StringVar(&urlCookies, "cookies", "", "Cookie header sent with every page request")
	rootCmd.AddCommand(fileCmd, bibtexCmd, urlCmd)
}

var fileCmd = &cobra.Command{
	Use:   "file <path>...",
	Short: "Scrape local files (PDF, BibTeX, Zotero CSV, Paperpile JSON)",
	Long: `Scrape local files. The file extension decides which scrapers apply:
.pdf, .bib/.bibtex, .csv (Zotero export) and .json (Paperpile export).

Examples:
  entryscrape file paper.pdf
  entryscrape file library.bib export.csv --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payloads, err := filePayloads(args)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		return runPayloads(cmd.Context(), payloads)
	},
}

var bibtexCmd = &cobra.Command{
	Use:   "bibtex <file|->",
	Short: "Scrape BibTeX text from a file or stdin",
	Long: `Scrape BibTeX text. Unlike "file", the input is read here and passed on as
text, so any file name (or stdin) works.

Examples:
  entryscrape bibtex refs.txt
  pbpaste | entryscrape bibtex -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readBatch(cmd.InOrStdin(), args)
		if err != nil {
			exitWithError(ExitDataError, "reading BibTeX: %v", err)
		}
		return runPayloads(cmd.Context(), []payload.Payload{payload.BibTeX{Text: string(data)}})
	},
}

var urlCmd = &cobra.Command{
	Use:   "url <url>...",
	Short: "Scrape web pages (arXiv, Google Scholar, IEEE, PDF links, publisher pages)",
	Long: `Scrape web pages. Pages are fetched and matched against the web scrapers.

Examples:
  entryscrape url https://arxiv.org/abs/2106.15928
  entryscrape url https://arxiv.org/pdf/2106.15928 --format bibtex`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payloads, err := urlPayloads(args, urlCookies)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		return runPayloads(cmd.Context(), payloads)
	},
}

// filePayloads turns paths into file payloads with absolute paths.
func filePayloads(paths []string) ([]payload.Payload, error) {
	payloads := make([]payload.Payload, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("file not found: %s", p)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("not a file: %s", p)
		}
		payloads = append(payloads, payload.File{URL: abs})
	}
	return payloads, nil
}

// urlPayloads turns http(s) URLs into web content payloads.
func urlPayloads(urls []string, cookies string) ([]payload.Payload, error) {
	payloads := make([]payload.Payload, 0, len(urls))
	for _, u := range urls {
		if !payload.IsWeb(u) {
			return nil, fmt.Errorf("not an http(s) URL: %s", u)
		}
		payloads = append(payloads, payload.WebContent{URL: u, Cookies: cookies})
	}
	return payloads, nil
}
