// Package sitesync publishes the conference database to a personal
// website repository: copy the JSON in, commit, reconcile with the
// remote, push.
package sitesync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"
)

// Syncer pushes database snapshots into a website git repository.
type Syncer struct {
	repoPath string
	destRel  string
	logger   *zap.Logger

	// AuthorName and AuthorEmail sign the sync commits.
	AuthorName  string
	AuthorEmail string

	// Token enables HTTP basic auth for https remotes. SSH remotes
	// authenticate via the ambient agent.
	Token string
}

// New creates a syncer for the repository at repoPath; destRel is the
// in-repo path the database is copied to, e.g.
// "assets/conference_database.json".
func New(repoPath, destRel string, logger *zap.Logger) *Syncer {
	return &Syncer{
		repoPath:    repoPath,
		destRel:     destRel,
		logger:      logger,
		AuthorName:  "conftrack",
		AuthorEmail: "conftrack@localhost",
	}
}

// Sync copies databasePath into the website repository, commits the
// change, pulls, and pushes. A database identical to what the site
// already serves is not an error; the commit is skipped and the push
// becomes a no-op.
func (s *Syncer) Sync(ctx context.Context, databasePath string, now time.Time) error {
	if err := copyFile(databasePath, filepath.Join(s.repoPath, s.destRel)); err != nil {
		return err
	}

	repo, err := git.PlainOpen(s.repoPath)
	if err != nil {
		return fmt.Errorf("failed to open website repo %s: %w", s.repoPath, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	if _, err := wt.Add(s.destRel); err != nil {
		return fmt.Errorf("failed to stage %s: %w", s.destRel, err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to read worktree status: %w", err)
	}
	if status.IsClean() {
		s.logger.Info("website already up to date")
	} else {
		msg := fmt.Sprintf("Update conferences - %s", now.Format("2006-01-02 15:04"))
		_, err := wt.Commit(msg, &git.CommitOptions{
			Author: &object.Signature{
				Name:  s.AuthorName,
				Email: s.AuthorEmail,
				When:  now,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to commit: %w", err)
		}
		s.logger.Info("committed database update", zap.String("message", msg))
	}

	if err := wt.PullContext(ctx, &git.PullOptions{RemoteName: "origin", Auth: s.auth()}); err != nil &&
		!errors.Is(err, git.NoErrAlreadyUpToDate) {
		// A diverged remote needs a human; everything local is intact.
		s.logger.Warn("pull failed, pushing anyway", zap.Error(err))
	}

	if err := repo.PushContext(ctx, &git.PushOptions{Auth: s.auth()}); err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return fmt.Errorf("failed to push: %w", err)
	}
	s.logger.Info("pushed database to website",
		zap.String("repo", s.repoPath),
		zap.String("path", s.destRel))
	return nil
}

func (s *Syncer) auth() transport.AuthMethod {
	if s.Token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "git", Password: s.Token}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy database: %w", err)
	}
	return out.Close()
}
