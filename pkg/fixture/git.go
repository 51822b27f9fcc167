package fixture

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// GitPrefix introduces a fixture stored in a git repository:
//
//	git+<repository>//<path>[@<revision>]
//
// The repository is a local directory, a file:// URL, or any URL go-git can
// clone. Remote repositories are cloned into memory. The revision defaults
// to HEAD and may name a commit, tag or branch.
const GitPrefix = "git+"

// GitSource is a parsed git fixture location.
type GitSource struct {
	Repo     string
	Path     string
	Revision string
}

func (s GitSource) String() string {
	return fmt.Sprintf("%s%s//%s@%s", GitPrefix, s.Repo, s.Path, s.Revision)
}

func (s GitSource) local() bool {
	return !strings.Contains(s.Repo, "://") || strings.HasPrefix(s.Repo, "file://")
}

// ParseGitSource splits a git+ source into its parts.
func ParseGitSource(source string) (GitSource, error) {
	rest, ok := strings.CutPrefix(source, GitPrefix)
	if !ok {
		return GitSource{}, fmt.Errorf("fixture: %q is not a git source", source)
	}
	start := 0
	if i := strings.Index(rest, "://"); i >= 0 {
		start = i + len("://")
	}
	sep := strings.Index(rest[start:], "//")
	if sep < 0 {
		return GitSource{}, fmt.Errorf("fixture: git source %q needs a //path", source)
	}
	sep += start
	src := GitSource{Repo: rest[:sep], Path: rest[sep+2:], Revision: "HEAD"}
	if at := strings.LastIndex(src.Path, "@"); at >= 0 {
		src.Path, src.Revision = src.Path[:at], src.Path[at+1:]
	}
	if src.Repo == "" || src.Path == "" || src.Revision == "" {
		return GitSource{}, fmt.Errorf("fixture: incomplete git source %q", source)
	}
	return src, nil
}

// ReadGit returns the contents of the fixture file at the source's revision.
func ReadGit(ctx context.Context, src GitSource) ([]byte, error) {
	repo, err := openRepository(ctx, src)
	if err != nil {
		return nil, err
	}
	hash, err := resolveRevision(repo, src.Revision)
	if err != nil {
		return nil, fmt.Errorf("fixture: resolve revision %s: %w", src.Revision, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("fixture: commit %s: %w", hash, err)
	}
	file, err := commit.File(src.Path)
	if err != nil {
		return nil, fmt.Errorf("fixture: %s at %s: %w", src.Path, src.Revision, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", src.Path, err)
	}
	return []byte(contents), nil
}

func openRepository(ctx context.Context, src GitSource) (*git.Repository, error) {
	if src.local() {
		path := strings.TrimPrefix(src.Repo, "file://")
		repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
		if err != nil {
			return nil, fmt.Errorf("fixture: open %s: %w", path, err)
		}
		return repo, nil
	}
	repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, &git.CloneOptions{
		URL:  src.Repo,
		Tags: git.AllTags,
	})
	if err != nil {
		return nil, fmt.Errorf("fixture: git clone %s: %w", src.Repo, err)
	}
	return repo, nil
}

// resolveRevision tries the revision as written, then as a remote branch of
// a fresh clone.
func resolveRevision(repo *git.Repository, rev string) (*plumbing.Hash, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err == nil {
		return hash, nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, err
	}
	if remote, rerr := repo.ResolveRevision(plumbing.Revision("refs/remotes/origin/" + rev)); rerr == nil {
		return remote, nil
	}
	return nil, err
}
