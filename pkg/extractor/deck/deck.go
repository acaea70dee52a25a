// Package deck extracts text from PowerPoint files, one document per slide.
// A .pptx file is a zip archive; slide text lives in the <a:t> runs of
// ppt/slides/slideN.xml.
package deck

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/collegegpt/ragserver/pkg/extractor"
)

var _ extractor.Provider = (*Extractor)(nil)

var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

type Extractor struct {
}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, file extractor.File) ([]extractor.Document, error) {
	archive, err := zip.OpenReader(file.Path)

	if err != nil {
		return nil, fmt.Errorf("open presentation %s: %w", file.Name, err)
	}

	defer archive.Close()

	type slide struct {
		number int
		text   string
	}

	var slides []slide

	for _, entry := range archive.File {
		match := slidePattern.FindStringSubmatch(entry.Name)

		if match == nil {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		number, _ := strconv.Atoi(match[1])

		text, err := slideText(entry)

		if err != nil {
			return nil, fmt.Errorf("extract presentation %s slide %d: %w", file.Name, number, err)
		}

		slides = append(slides, slide{
			number: number,
			text:   text,
		})
	}

	sort.Slice(slides, func(i, j int) bool {
		return slides[i].number < slides[j].number
	})

	var documents []extractor.Document

	for _, s := range slides {
		documents = append(documents, extractor.Document{
			Content: s.text,

			Metadata: map[string]string{
				"source": file.Name,
				"slide":  strconv.Itoa(s.number),
			},
		})
	}

	return documents, nil
}

// slideText concatenates the text runs of a slide, one line per run.
func slideText(entry *zip.File) (string, error) {
	r, err := entry.Open()

	if err != nil {
		return "", err
	}

	defer r.Close()

	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	var inRun bool

	for {
		token, err := decoder.Token()

		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			inRun = t.Name.Local == "t"

		case xml.EndElement:
			if t.Name.Local == "t" {
				inRun = false
				sb.WriteString("\n")
			}

		case xml.CharData:
			if inRun {
				sb.Write(t)
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
