package pathutils

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRepositoryPathResolverResolve(testInstance *testing.T) {
	homeDirectory := filepath.FromSlash("/home/tester")
	workingDirectory := filepath.FromSlash("/workspace/projects")

	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{name: "empty", candidatePath: "", expectedPath: workingDirectory},
		{name: "whitespace", candidatePath: "   ", expectedPath: workingDirectory},
		{name: "dot", candidatePath: ".", expectedPath: workingDirectory},
		{name: "relative", candidatePath: "gitsync", expectedPath: filepath.Join(workingDirectory, "gitsync")},
		{name: "tilde", candidatePath: "~", expectedPath: homeDirectory},
		{name: "tilde_prefix", candidatePath: "~/src/gitsync", expectedPath: filepath.Join(homeDirectory, "src", "gitsync")},
		{name: "tilde_user", candidatePath: "~other/repo", expectedPath: filepath.Join(workingDirectory, "~other", "repo")},
		{name: "absolute", candidatePath: filepath.FromSlash("/srv/repo/../repo"), expectedPath: filepath.FromSlash("/srv/repo")},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			resolver := NewRepositoryPathResolverWithProviders(
				func() (string, error) { return homeDirectory, nil },
				func() (string, error) { return workingDirectory, nil },
			)

			resolvedPath, resolveError := resolver.Resolve(testCase.candidatePath)
			require.NoError(subTest, resolveError)
			require.Equal(subTest, testCase.expectedPath, resolvedPath)
		})
	}
}

func TestRepositoryPathResolverReportsLookupFailures(testInstance *testing.T) {
	lookupFailure := errors.New("lookup failed")
	resolver := NewRepositoryPathResolverWithProviders(
		func() (string, error) { return "", lookupFailure },
		func() (string, error) { return "", lookupFailure },
	)

	_, homeError := resolver.Resolve("~/repo")
	require.ErrorIs(testInstance, homeError, lookupFailure)

	_, workingDirectoryError := resolver.Resolve("repo")
	require.ErrorIs(testInstance, workingDirectoryError, lookupFailure)
}
