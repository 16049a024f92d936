// Package importer feeds recipe ingredient files into the grocery list, once
// on demand or continuously from a watched inbox directory.
package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"nutriplan/pkg/domain"
)

// Sink receives parsed ingredient lines. *core.GroceryStore implements it.
type Sink interface {
	AddIngredients(ctx context.Context, lines []string) []domain.GroceryItem
}

// Extensions lists the file types treated as recipes.
var Extensions = []string{".txt", ".md", ".recipe"}

// IsRecipeFile reports whether path has a recipe extension.
func IsRecipeFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadLines returns the ingredient lines of a recipe: blank lines and lines
// starting with '#' are dropped, list bullets are stripped.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, bullet := range []string{"- ", "* ", "• "} {
			line = strings.TrimPrefix(line, bullet)
		}
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// ImportFile adds the ingredients of the recipe at path to sink.
func ImportFile(ctx context.Context, sink Sink, path string) ([]domain.GroceryItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recipe: %w", err)
	}
	defer f.Close()
	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("read recipe %s: %w", path, err)
	}
	return sink.AddIngredients(ctx, lines), nil
}
