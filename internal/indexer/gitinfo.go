package indexer

import (
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// shortHashLength is the number of hex characters kept from a commit hash.
const shortHashLength = 8

// gitShortHash returns the current commit's short hash for the repository
// containing path, trying path itself and then its ancestors. Returns
// "unknown" when path isn't inside a git repository or HEAD can't be read;
// a reindex never fails over this.
func gitShortHash(path string) string {
	repo, err := git.PlainOpen(path)
	if err != nil {
		for parent := filepath.Dir(path); parent != "/" && parent != "."; parent = filepath.Dir(parent) {
			repo, err = git.PlainOpen(parent)
			if err == nil {
				break
			}
			next := filepath.Dir(parent)
			if next == parent {
				break
			}
		}
		if err != nil {
			return "unknown"
		}
	}

	head, err := repo.Head()
	if err != nil {
		return "unknown"
	}

	hash := head.Hash().String()
	if len(hash) > shortHashLength {
		hash = hash[:shortHashLength]
	}
	return hash
}
