// Package pathutils resolves user-supplied repository paths.
package pathutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	currentDirectoryConstant           = "."
	tildeSymbolConstant                = "~"
	homeDirectoryErrorTemplateConstant = "resolve home directory for %q: %w"
	absolutePathErrorTemplateConstant  = "resolve absolute path for %q: %w"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// WorkingDirectoryProvider resolves the process working directory.
type WorkingDirectoryProvider func() (string, error)

// RepositoryPathResolver turns a --repository value into an absolute, cleaned path.
type RepositoryPathResolver struct {
	homeDirectoryProvider    HomeDirectoryProvider
	workingDirectoryProvider WorkingDirectoryProvider
	homeDirectory            string
	homeDirectoryError       error
	homeDirectoryOnce        sync.Once
}

// NewRepositoryPathResolver constructs a resolver backed by the operating system.
func NewRepositoryPathResolver() *RepositoryPathResolver {
	return NewRepositoryPathResolverWithProviders(os.UserHomeDir, os.Getwd)
}

// NewRepositoryPathResolverWithProviders constructs a resolver with custom directory lookups.
func NewRepositoryPathResolverWithProviders(homeDirectoryProvider HomeDirectoryProvider, workingDirectoryProvider WorkingDirectoryProvider) *RepositoryPathResolver {
	if homeDirectoryProvider == nil {
		homeDirectoryProvider = os.UserHomeDir
	}
	if workingDirectoryProvider == nil {
		workingDirectoryProvider = os.Getwd
	}
	return &RepositoryPathResolver{
		homeDirectoryProvider:    homeDirectoryProvider,
		workingDirectoryProvider: workingDirectoryProvider,
	}
}

// Resolve trims the candidate, expands a leading "~", and anchors relative paths at the working directory.
// An empty candidate resolves to the working directory.
func (resolver *RepositoryPathResolver) Resolve(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		trimmedPath = currentDirectoryConstant
	}

	expandedPath, expansionError := resolver.expandHome(trimmedPath)
	if expansionError != nil {
		return "", expansionError
	}
	if filepath.IsAbs(expandedPath) {
		return filepath.Clean(expandedPath), nil
	}

	workingDirectory, workingDirectoryError := resolver.workingDirectoryProvider()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(absolutePathErrorTemplateConstant, candidatePath, workingDirectoryError)
	}
	return filepath.Join(workingDirectory, expandedPath), nil
}

func (resolver *RepositoryPathResolver) expandHome(candidatePath string) (string, error) {
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath, nil
	}

	remainder := strings.TrimPrefix(candidatePath, tildeSymbolConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return candidatePath, nil
	}

	resolver.homeDirectoryOnce.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return "", fmt.Errorf(homeDirectoryErrorTemplateConstant, candidatePath, resolver.homeDirectoryError)
	}
	return filepath.Join(resolver.homeDirectory, remainder), nil
}
