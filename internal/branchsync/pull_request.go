package branchsync

import (
	"fmt"

	"github.com/temirov/gitsync/internal/gitrepo"
)

const (
	pullRequestURLTemplateConstant        = "%s/compare/%s?expand=1"
	unrecognizedRemoteURLTemplateConstant = "%w: %s"
)

// BuildPullRequestURL builds the comparison page address for the branch from an scp-like remote URL
// such as git@github.com:owner/repository.git. Any other URL shape yields ErrUnrecognizedRemoteURL.
func BuildPullRequestURL(remoteURL string, branchName string) (string, error) {
	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil || parsedRemote.Protocol != gitrepo.RemoteProtocolSCP {
		return "", fmt.Errorf(unrecognizedRemoteURLTemplateConstant, ErrUnrecognizedRemoteURL, remoteURL)
	}
	return fmt.Sprintf(pullRequestURLTemplateConstant, parsedRemote.WebURL(), branchName), nil
}
