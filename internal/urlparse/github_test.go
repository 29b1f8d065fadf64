package urlparse

import "testing"

func TestGitHubRepoValidForms(t *testing.T) {
	cases := []struct {
		url, owner, repo string
	}{
		{"https://github.com/octocat/Hello-World", "octocat", "Hello-World"},
		{"https://github.com/octocat/Hello-World.git", "octocat", "Hello-World"},
		{"https://github.com/octocat/Hello-World/tree/main", "octocat", "Hello-World"},
	}
	for _, c := range cases {
		owner, repo, err := GitHubRepo(c.url)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.url, err)
		}
		if owner != c.owner || repo != c.repo {
			t.Fatalf("%s: got (%s,%s) want (%s,%s)", c.url, owner, repo, c.owner, c.repo)
		}
	}
}

func TestGitHubRepoInvalid(t *testing.T) {
	for _, bad := range []string{"not-a-url", "https://gitlab.com/o/r", "https://github.com/onlyowner"} {
		if _, _, err := GitHubRepo(bad); err == nil {
			t.Fatalf("%s: expected error, got nil", bad)
		}
	}
}
