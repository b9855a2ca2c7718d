package gitrepo_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/docpages/internal/gitrepo"
)

const (
	remoteURLSubtestNameTemplateConstant  = "%d_%s"
	parseCaseSSHShorthandConstant         = "ssh_shorthand"
	parseCaseSSHProtocolConstant          = "ssh_protocol"
	parseCaseHTTPSConstant                = "https"
	parseCaseHTTPSWithoutSuffixConstant   = "https_without_git_suffix"
	parseCaseEmptyInputConstant           = "empty_input"
	parseCaseUnsupportedProtocolConstant  = "unsupported_protocol"
	formatCaseSSHConstant                 = "format_ssh"
	formatCaseHTTPSConstant               = "format_https"
	formatCaseUnknownProtocolConstant     = "format_unknown_protocol"
	testRemoteHostConstant                = "github.com"
	testRemoteOwnerConstant               = "example"
	testRemoteRepositoryConstant          = "docs-site"
	testSSHShorthandRemoteConstant        = "git@github.com:example/docs-site.git"
	testSSHProtocolRemoteConstant         = "ssh://git@github.com/example/docs-site.git"
	testHTTPSRemoteConstant               = "https://github.com/example/docs-site.git"
	testHTTPSRemoteWithoutSuffixConstant  = "https://github.com/example/docs-site"
	testUnsupportedProtocolRemoteConstant = "ftp://github.com/example/docs-site"
)

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectError    bool
		expectedRemote gitrepo.RemoteURL
	}{
		{
			name:  parseCaseSSHShorthandConstant,
			input: testSSHShorthandRemoteConstant,
			expectedRemote: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolSSH,
				Host:       testRemoteHostConstant,
				Owner:      testRemoteOwnerConstant,
				Repository: testRemoteRepositoryConstant,
			},
		},
		{
			name:  parseCaseSSHProtocolConstant,
			input: testSSHProtocolRemoteConstant,
			expectedRemote: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolSSH,
				Host:       testRemoteHostConstant,
				Owner:      testRemoteOwnerConstant,
				Repository: testRemoteRepositoryConstant,
			},
		},
		{
			name:  parseCaseHTTPSConstant,
			input: testHTTPSRemoteConstant,
			expectedRemote: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolHTTPS,
				Host:       testRemoteHostConstant,
				Owner:      testRemoteOwnerConstant,
				Repository: testRemoteRepositoryConstant,
			},
		},
		{
			name:  parseCaseHTTPSWithoutSuffixConstant,
			input: testHTTPSRemoteWithoutSuffixConstant,
			expectedRemote: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolHTTPS,
				Host:       testRemoteHostConstant,
				Owner:      testRemoteOwnerConstant,
				Repository: testRemoteRepositoryConstant,
			},
		},
		{
			name:        parseCaseEmptyInputConstant,
			input:       "   ",
			expectError: true,
		},
		{
			name:        parseCaseUnsupportedProtocolConstant,
			input:       testUnsupportedProtocolRemoteConstant,
			expectError: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(remoteURLSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			parsedRemote, parseError := gitrepo.ParseRemoteURL(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedRemote, parsedRemote)
		})
	}
}

func TestFormatRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name           string
		remote         gitrepo.RemoteURL
		expectError    bool
		expectedOutput string
	}{
		{
			name: formatCaseSSHConstant,
			remote: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolSSH,
				Host:       testRemoteHostConstant,
				Owner:      testRemoteOwnerConstant,
				Repository: testRemoteRepositoryConstant,
			},
			expectedOutput: testSSHShorthandRemoteConstant,
		},
		{
			name: formatCaseHTTPSConstant,
			remote: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolHTTPS,
				Host:       testRemoteHostConstant,
				Owner:      testRemoteOwnerConstant,
				Repository: testRemoteRepositoryConstant,
			},
			expectedOutput: testHTTPSRemoteConstant,
		},
		{
			name: formatCaseUnknownProtocolConstant,
			remote: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocol("ftp"),
				Host:       testRemoteHostConstant,
				Owner:      testRemoteOwnerConstant,
				Repository: testRemoteRepositoryConstant,
			},
			expectError: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(remoteURLSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			formattedRemote, formatError := gitrepo.FormatRemoteURL(testCase.remote)
			if testCase.expectError {
				require.Error(testInstance, formatError)
				return
			}
			require.NoError(testInstance, formatError)
			require.Equal(testInstance, testCase.expectedOutput, formattedRemote)
		})
	}
}
