package source

import (
	"fmt"
	"slices"

	"github.com/arloliu/carve/errs"
	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves input patterns to file names.
//
// Each pattern may use doublestar syntax ("**" crosses directories). Matches
// of one pattern are sorted; patterns keep their order and names already
// produced by an earlier pattern are dropped. Stdin passes through unchanged.
// A pattern that matches no file is an error.
func Expand(patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		if pattern == Stdin {
			if _, dup := seen[Stdin]; !dup {
				seen[Stdin] = struct{}{}
				out = append(out, Stdin)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %w", errs.ErrSourceUnavailable, pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: no file matches %q", errs.ErrSourceUnavailable, pattern)
		}

		slices.Sort(matches)
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}

	return out, nil
}
