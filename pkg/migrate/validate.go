package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir validates migration filenames and goose headers on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	_, err := scan(os.DirFS(dir))
	return err
}

// ValidateFS validates the migrations at the root of fsys.
func ValidateFS(fsys fs.FS) error {
	_, err := scan(fsys)
	return err
}

// ValidateParity checks both trees and requires them to carry the same
// migration files, so a schema change never lands for one dialect only.
func ValidateParity(a, b fs.FS) error {
	left, err := scan(a)
	if err != nil {
		return err
	}
	right, err := scan(b)
	if err != nil {
		return err
	}
	for _, name := range left {
		if !slices.Contains(right, name) {
			return fmt.Errorf("migration %q has no counterpart in the other dialect", name)
		}
	}
	for _, name := range right {
		if !slices.Contains(left, name) {
			return fmt.Errorf("migration %q has no counterpart in the other dialect", name)
		}
	}
	return nil
}

// scan returns the sorted migration filenames after validating each one.
func scan(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	seen := map[string]string{} // version -> filename
	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		name := e.Name()

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := seen[m[1]]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		seen[m[1]] = name

		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", name, err)
		}
		txt := string(b)
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(txt, marker) {
				return nil, fmt.Errorf("migration %q missing %q", name, marker)
			}
		}
		names = append(names, name)
	}

	slices.Sort(names)
	return names, nil
}
