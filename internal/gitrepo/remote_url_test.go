package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitsync/internal/gitrepo"
)

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expected      gitrepo.RemoteURL
		expectFailure bool
	}{
		{
			name:     "scp_with_suffix",
			input:    "git@github.com:temirov/gitsync.git",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSCP, Host: "github.com", Owner: "temirov", Repository: "gitsync"},
		},
		{
			name:     "scp_without_suffix",
			input:    "git@gitlab.example.com:team/service",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSCP, Host: "gitlab.example.com", Owner: "team", Repository: "service"},
		},
		{
			name:     "ssh_scheme",
			input:    "ssh://git@github.com/temirov/gitsync.git",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, Host: "github.com", Owner: "temirov", Repository: "gitsync"},
		},
		{
			name:     "https",
			input:    "https://github.com/temirov/gitsync.git",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTPS, Host: "github.com", Owner: "temirov", Repository: "gitsync"},
		},
		{
			name:          "empty",
			input:         "  ",
			expectFailure: true,
		},
		{
			name:          "local_path",
			input:         "/srv/git/repository.git",
			expectFailure: true,
		},
		{
			name:          "nested_groups",
			input:         "git@gitlab.com:group/subgroup/project.git",
			expectFailure: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsed, parseError := gitrepo.ParseRemoteURL(testCase.input)
			if testCase.expectFailure {
				require.Error(testInstance, parseError)
				require.IsType(testInstance, gitrepo.RemoteURLParseError{}, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, parsed)
		})
	}
}

func TestRemoteURLWebURL(testInstance *testing.T) {
	remote := gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSCP, Host: "github.com", Owner: "temirov", Repository: "gitsync"}
	require.Equal(testInstance, "https://github.com/temirov/gitsync", remote.WebURL())
}
