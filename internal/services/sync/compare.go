package sync

import (
	"sort"

	"github.com/TheMichaelB/reposeed/internal/models"
)

// Compare reports how b differs from a. Files are matched by relative path
// across the whole tree and compared by checksum; directories are matched
// by name at the top level only. Neither input is modified.
func Compare(a, b *models.DirectoryStructure) *models.Comparison {
	filesA := a.AllFiles()
	filesB := b.AllFiles()

	cmp := &models.Comparison{
		FilesAdded:    []string{},
		FilesRemoved:  []string{},
		FilesModified: []string{},
		DirsAdded:     []string{},
		DirsRemoved:   []string{},
	}

	for p, fa := range filesA {
		fb, ok := filesB[p]
		switch {
		case !ok:
			cmp.FilesRemoved = append(cmp.FilesRemoved, p)
		case fa.Checksum != fb.Checksum:
			cmp.FilesModified = append(cmp.FilesModified, p)
		}
	}
	for p := range filesB {
		if _, ok := filesA[p]; !ok {
			cmp.FilesAdded = append(cmp.FilesAdded, p)
		}
	}

	dirsA := nameSet(a.SubdirNames())
	dirsB := nameSet(b.SubdirNames())
	for name := range dirsA {
		if !dirsB[name] {
			cmp.DirsRemoved = append(cmp.DirsRemoved, name)
		}
	}
	for name := range dirsB {
		if !dirsA[name] {
			cmp.DirsAdded = append(cmp.DirsAdded, name)
		}
	}

	sort.Strings(cmp.FilesAdded)
	sort.Strings(cmp.FilesRemoved)
	sort.Strings(cmp.FilesModified)
	sort.Strings(cmp.DirsAdded)
	sort.Strings(cmp.DirsRemoved)

	return cmp
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Compare reports how b differs from a. See the package-level Compare.
func (s *Synchronizer) Compare(a, b *models.DirectoryStructure) *models.Comparison {
	return Compare(a, b)
}
