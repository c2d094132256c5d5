// SPDX-License-Identifier: EPL-2.0

package docarray

import (
	"fmt"
	"strings"
)

// DocumentArray is an ordered batch of documents. Documents are shared by
// pointer, so a stage mutating an element mutates the caller's document.
type DocumentArray []*Document

// RecursiveAccessPath selects every document at every depth.
const RecursiveAccessPath = "..."

// TraverseFlat flattens da along accessPaths.
//
// accessPaths is an optional "@" followed by comma separated paths. Each
// path is read left to right: "r" selects the root documents, "c" steps
// into chunks and "m" into matches, so "r" is the batch itself, "c" the
// chunks of every root and "cm" the matches of those chunks. A leading "r"
// may be combined with further steps ("rc" equals "c"). The special path
// "..." selects every document in pre-order (document, chunks, matches).
//
// Results of several paths are concatenated in the order given; a document
// reachable by two paths appears twice. Nil entries are skipped.
func (da DocumentArray) TraverseFlat(accessPaths string) ([]*Document, error) {
	paths, err := parseAccessPaths(accessPaths)
	if err != nil {
		return nil, err
	}

	var out []*Document
	for _, p := range paths {
		if p == RecursiveAccessPath {
			out = da.appendRecursive(out)
			continue
		}

		level := []*Document(da)
		for _, step := range strings.TrimPrefix(p, "r") {
			var next []*Document
			for _, d := range level {
				if d == nil {
					continue
				}
				switch step {
				case 'c':
					next = append(next, d.Chunks...)
				case 'm':
					next = append(next, d.Matches...)
				}
			}
			level = next
		}
		for _, d := range level {
			if d != nil {
				out = append(out, d)
			}
		}
	}

	return out, nil
}

func (da DocumentArray) appendRecursive(out []*Document) []*Document {
	for _, d := range da {
		if d == nil {
			continue
		}
		out = append(out, d)
		out = d.Chunks.appendRecursive(out)
		out = d.Matches.appendRecursive(out)
	}

	return out
}

func parseAccessPaths(s string) ([]string, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "@")
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAccessPath)
	}

	parts := strings.Split(s, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if err := validatePath(p); err != nil {
			return nil, err
		}
		parts[i] = p
	}

	return parts, nil
}

func validatePath(p string) error {
	if p == RecursiveAccessPath {
		return nil
	}
	if p == "" {
		return fmt.Errorf("%w: empty path segment", ErrInvalidAccessPath)
	}

	for i, step := range p {
		switch {
		case step == 'r' && i == 0:
		case step == 'c', step == 'm':
		default:
			return fmt.Errorf("%w: %q at offset %d in %q", ErrInvalidAccessPath, step, i, p)
		}
	}

	return nil
}
