package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrNoHistory is returned when no history file can be found
var ErrNoHistory = errors.New("no shell history file found")

// PathResolver resolves user supplied paths against the home dir and env
type PathResolver struct {
	homeDir string
	getenv  func(string) string
}

// NewPathResolver creates a resolver for the current user
func NewPathResolver() *PathResolver {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = ""
	}
	return &PathResolver{homeDir: homeDir, getenv: os.Getenv}
}

// ExpandHome replaces a leading "~" with the home directory
func (pr *PathResolver) ExpandHome(path string) string {
	if pr.homeDir == "" {
		return path
	}
	if path == "~" {
		return pr.homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(pr.homeDir, path[2:])
	}
	return path
}

// GetHistoryPath picks the history file to learn from.
// It tries in order:
// 1. User-specified path (from -hist or the config)
// 2. $HISTFILE
// 3. ~/.zsh_history
// 4. ~/.bash_history
func (pr *PathResolver) GetHistoryPath(userSpecifiedPath string) (string, error) {
	for _, path := range pr.historyCandidates(userSpecifiedPath) {
		if pr.isRegularFile(path) {
			log.Debugf("Using history file: %s", path)
			return path, nil
		}
		log.Debugf("History candidate not usable: %s", path)
	}
	if userSpecifiedPath != "" {
		return "", &os.PathError{Op: "open", Path: pr.ExpandHome(userSpecifiedPath), Err: os.ErrNotExist}
	}
	return "", ErrNoHistory
}

func (pr *PathResolver) historyCandidates(userSpecifiedPath string) []string {
	// An explicit path is the only candidate
	if userSpecifiedPath != "" {
		return []string{pr.ExpandHome(userSpecifiedPath)}
	}
	var candidates []string
	if histFile := pr.getenv("HISTFILE"); histFile != "" {
		candidates = append(candidates, pr.ExpandHome(histFile))
	}
	if pr.homeDir != "" {
		candidates = append(candidates,
			filepath.Join(pr.homeDir, ".zsh_history"),
			filepath.Join(pr.homeDir, ".bash_history"),
		)
	}
	return candidates
}

func (pr *PathResolver) isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
