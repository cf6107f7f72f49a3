// Package loader acquires the JSON document to display, from a file or from
// piped standard input.
package loader

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/oakwood-commons/jview/pkg/jsonvalue"
)

// StdinName is the source name used for standard input.
const StdinName = "<stdin>"

// Operations reported in SourceError.Op.
const (
	OpRead  = "read"
	OpParse = "parse"
)

// SourceError reports that the document could not be read or parsed.
type SourceError struct {
	Source string
	Op     string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Document is a loaded source. Value is nil when there was nothing to load.
type Document struct {
	Name  string
	Value *jsonvalue.Value
}

var isTerminal = term.IsTerminal

// LoadFile reads and parses the file at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Source: path, Op: OpRead, Err: err}
	}
	defer f.Close()
	return LoadReader(path, f)
}

// LoadReader reads r to the end and parses it as one JSON document.
func LoadReader(name string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &SourceError{Source: name, Op: OpRead, Err: err}
	}
	v, err := jsonvalue.Parse(data)
	if err != nil {
		return nil, &SourceError{Source: name, Op: OpParse, Err: err}
	}
	return &Document{Name: name, Value: v}, nil
}

// Load resolves the command-line source. An empty path reads stdin when it is
// piped and otherwise yields an empty Document; "-" always reads stdin.
func Load(path string, stdin *os.File) (*Document, error) {
	switch path {
	case "-":
		return LoadReader(StdinName, stdin)
	case "":
		if stdin == nil || isTerminal(int(stdin.Fd())) {
			return &Document{}, nil
		}
		return LoadReader(StdinName, stdin)
	}
	return LoadFile(path)
}

// StdinIsPiped reports whether stdin carries data rather than a terminal.
func StdinIsPiped(stdin *os.File) bool {
	return stdin != nil && !isTerminal(int(stdin.Fd()))
}
