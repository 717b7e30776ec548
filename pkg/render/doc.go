// Package render turns dependency graphs into output formats.
//
// # Formats
//
//   - text: an indented tree with depth annotations ([text] subpackage)
//   - json, yaml: the graph document of the [io] package
//   - dot: Graphviz source ([nodelink] subpackage)
//   - svg: the dot output laid out by Graphviz in-process
//
// [Write] dispatches on a [Format]:
//
//	f, _ := render.ParseFormat("svg")
//	err := render.Write(os.Stdout, g, f, render.Options{})
//
// [text]: github.com/Dima09182/depviz/pkg/render/text
// [io]: github.com/Dima09182/depviz/pkg/io
// [nodelink]: github.com/Dima09182/depviz/pkg/render/nodelink
package render
