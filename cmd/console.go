package main

import (
	"fmt"
	"io"

	"docsearch/internal/helper"
)

// console prints the query log for a terminal user.
type console struct {
	w io.Writer
}

func newConsole(w io.Writer) *console {
	return &console{w: w}
}

func (c *console) Info(msg string)  { fmt.Fprintf(c.w, "%s\n", msg) }
func (c *console) Warn(msg string)  { fmt.Fprintf(c.w, "WARNING: %s\n", msg) }
func (c *console) Error(msg string) { fmt.Fprintf(c.w, "ERROR: %s\n", msg) }

func (c *console) Keywords(keywords []string) {
	fmt.Fprintf(c.w, "Semantic Keywords:\n%s\n\n", helper.FormatList(keywords))
}

func (c *console) Document(name, text string) {
	fmt.Fprintf(c.w, "---\n%s\n\nDocument Content: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>\n%s\n\n", name, text)
}

func (c *console) Answer(name, answer string) {
	fmt.Fprintf(c.w, "Answer: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>\n%s\n\n", answer)
}
