// Package vcs looks up repository metadata from git.
package vcs

import (
	"os/exec"
	"strings"
)

// Info is the git state recorded into snapshot metadata and run history.
type Info struct {
	Commit string `json:"commit,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Describe returns the current commit and branch of the repository.
// Outside a git repository (or without git installed) it returns an empty
// Info; snapshots are still usable without provenance.
func Describe(repoRoot string) Info {
	info := Info{}
	if commit, err := gitOutput(repoRoot, "rev-parse", "HEAD"); err == nil {
		info.Commit = commit
	}
	if branch, err := gitOutput(repoRoot, "rev-parse", "--abbrev-ref", "HEAD"); err == nil && branch != "HEAD" {
		info.Branch = branch
	}
	return info
}

func gitOutput(repoRoot string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = repoRoot
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
