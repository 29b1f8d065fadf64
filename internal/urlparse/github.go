// Package urlparse extracts owner/repo identity from GitHub URLs.
package urlparse

import (
	"net/url"
	"strings"

	"github.com/codelensai/coderag/internal/apperr"
)

// GitHubRepo parses a "github.com/<owner>/<repo>" URL, tolerating a
// trailing ".git" and a "/tree/<ref>" suffix.
func GitHubRepo(raw string) (owner, repo string, err error) {
	u, parseErr := url.Parse(strings.TrimSpace(raw))
	if parseErr != nil || u.Host == "" || !strings.EqualFold(u.Host, "github.com") {
		return "", "", apperr.New(apperr.KindInvalidInput, "invalid GitHub URL")
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", apperr.New(apperr.KindInvalidInput, "invalid GitHub URL")
	}
	owner = parts[0]
	repo = strings.TrimSuffix(parts[1], ".git")
	if repo == "" {
		return "", "", apperr.New(apperr.KindInvalidInput, "invalid GitHub URL")
	}
	return owner, repo, nil
}
