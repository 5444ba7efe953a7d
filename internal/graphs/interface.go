package graphs

import (
	"fmt"
	"io"
	"os"
)

// Renderer turns a Graph into a document that can be served or written to disk.
type Renderer interface {
	// Render is not assumed to be thread-safe.
	Render(w io.Writer, g *Graph) error

	// Extension is the file extension including the dot, e.g. ".html".
	Extension() string
}

// RenderToFile renders g with r into filename, which should be the desired file name
// without an extension. It returns the full path written.
func RenderToFile(r Renderer, g *Graph, filename string) (string, error) {
	filename = filename + r.Extension()

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := r.Render(file, g); err != nil {
		return "", fmt.Errorf("render %s: %w", filename, err)
	}

	return filename, file.Close()
}
