package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/urfave/cli/v3"

	"github.com/ivanvanderbyl/pdfsearch"
)

func main() {
	cmd := &cli.Command{
		Name:  "pdfsearch",
		Usage: "Search and extract PDF text by position",
		Commands: []*cli.Command{
			{
				Name:  "find",
				Usage: "Find every occurrence of a string",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Input PDF file path",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Text to search for",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "Password for encrypted PDFs",
					},
					&cli.BoolFlag{
						Name:  "take-span",
						Usage: "Report the whole line containing each match",
					},
					&cli.BoolFlag{
						Name:  "no-validate",
						Usage: "Skip re-extraction validation of matches",
					},
				},
				Action: findText,
			},
			{
				Name:  "extract",
				Usage: "Extract the text inside a bounding box",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Input PDF file path",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "Password for encrypted PDFs",
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number (0-indexed)",
						Value: 0,
					},
					&cli.FloatFlag{Name: "x0", Usage: "Left edge"},
					&cli.FloatFlag{Name: "y0", Usage: "Top edge"},
					&cli.FloatFlag{Name: "x1", Usage: "Right edge"},
					&cli.FloatFlag{Name: "y1", Usage: "Bottom edge"},
				},
				Action: extractText,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newInstance initialises a single pdfium worker.
func newInstance() (pdfium.Pdfium, func(), error) {
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialise pdfium: %w", err)
	}

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to get pdfium instance: %w", err)
	}

	return instance, func() { pool.Close() }, nil
}

func loadDocument(cmd *cli.Command, instance pdfium.Pdfium) (*pdfsearch.Document, error) {
	config := pdfsearch.DefaultConfig()
	config.Password = cmd.String("password")

	loader := pdfsearch.NewLoaderWithConfig(instance, config)
	doc, err := loader.LoadFile(cmd.String("input"))
	if err != nil {
		return nil, fmt.Errorf("failed to load PDF: %w", err)
	}
	return doc, nil
}

func findText(_ context.Context, cmd *cli.Command) error {
	instance, closePool, err := newInstance()
	if err != nil {
		return err
	}
	defer closePool()

	doc, err := loadDocument(cmd, instance)
	if err != nil {
		return err
	}

	opts := pdfsearch.DefaultFindTextOptions()
	opts.TakeSpan = cmd.Bool("take-span")
	opts.Validate = !cmd.Bool("no-validate")

	query := cmd.String("query")
	result, err := doc.FindText(query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	total := 0
	for page := 0; page < doc.PageCount(); page++ {
		for _, occ := range result[page] {
			bbox, err := pdfsearch.CharBounds(occ)
			if err != nil {
				continue
			}
			fmt.Printf("page %d (%.1f, %.1f, %.1f, %.1f): %s\n", page, bbox.X0, bbox.Y0, bbox.X1, bbox.Y1, occ.Text())
			total++
		}
	}
	fmt.Fprintf(os.Stderr, "%d occurrence(s) of %q\n", total, query)

	return nil
}

func extractText(_ context.Context, cmd *cli.Command) error {
	instance, closePool, err := newInstance()
	if err != nil {
		return err
	}
	defer closePool()

	doc, err := loadDocument(cmd, instance)
	if err != nil {
		return err
	}

	text, err := doc.ExtractText(cmd.Float("x0"), cmd.Float("y0"), cmd.Float("x1"), cmd.Float("y1"), cmd.Int("page"))
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Println(text)
	return nil
}
