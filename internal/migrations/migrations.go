package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed sql/*.sql
var files embed.FS

// Names lists the embedded migration files in apply order
func Names() ([]string, error) {
	entries, err := fs.ReadDir(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// GetInitialSchema returns every embedded migration concatenated in order
func GetInitialSchema() (string, error) {
	names, err := Names()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no migrations embedded")
	}

	var b strings.Builder
	for _, name := range names {
		content, err := fs.ReadFile(files, "sql/"+name)
		if err != nil {
			return "", fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		b.Write(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}
