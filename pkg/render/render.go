package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	deperrors "github.com/Dima09182/depviz/pkg/errors"
	"github.com/Dima09182/depviz/pkg/graph"
	gio "github.com/Dima09182/depviz/pkg/io"
	"github.com/Dima09182/depviz/pkg/render/nodelink"
	"github.com/Dima09182/depviz/pkg/render/text"
)

// Format names an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML, FormatDOT, FormatSVG}
}

// ParseFormat validates a format name. The empty string selects text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	s = strings.ToLower(s)
	if s == "yml" {
		return FormatYAML, nil
	}
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", deperrors.New(deperrors.ErrCodeInvalidFormat, "unknown format %q (want text, json, yaml, dot or svg)", s)
}

// FormatFromPath infers the format from a file extension. The bool is false
// when the extension is not recognised.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" || ext == "txt" {
		return FormatText, ext == "txt"
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// Options configures rendering.
type Options struct {
	Plain    bool // No terminal styling in text output
	Detailed bool // Include qualified names and depths in dot/svg labels
}

// Write renders g in format f to w.
func Write(w io.Writer, g *graph.Graph, f Format, opts Options) error {
	switch f {
	case FormatText, "":
		_, err := io.WriteString(w, text.Render(g, text.Options{Plain: opts.Plain}))
		return err
	case FormatJSON:
		return gio.WriteJSON(g, w)
	case FormatYAML:
		return gio.WriteYAML(g, w)
	case FormatDOT:
		_, err := io.WriteString(w, nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed}))
		return err
	case FormatSVG:
		svg, err := nodelink.RenderSVG(nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed}))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	}
	return fmt.Errorf("unsupported format %q", f)
}
