package sync

import (
	"context"
	"fmt"
	"path"
	"strconv"

	"github.com/TheMichaelB/reposeed/internal/models"
	"github.com/TheMichaelB/reposeed/internal/render"
)

const backupTimeFormat = "20060102_150405"

// Sync recreates ds under target. Placeholders of the form {name} in file
// content are replaced from vars. Existing files are kept when the preserve
// rule is on, and an existing target is copied aside first when the backup
// rule is on. Write failures stop the sync and are returned as
// *models.SyncError; the report lists what was done up to that point.
func (s *Synchronizer) Sync(ctx context.Context, ds *models.DirectoryStructure, target string, vars map[string]string) (*models.SyncReport, error) {
	target = path.Clean(target)
	report := &models.SyncReport{
		Target:    target,
		Created:   []string{},
		Preserved: []string{},
		Dirs:      []string{},
	}

	logger := s.logger.WithField("target", target)
	logger.Info("Syncing structure")

	if s.rules.BackupBeforeSync {
		backup, err := s.backup(ctx, target)
		if err != nil {
			return report, err
		}
		report.Backup = backup
	}

	if err := s.syncDir(ctx, ds, target, render.New(vars), report); err != nil {
		return report, err
	}

	logger.WithFields(map[string]interface{}{
		"created":   len(report.Created),
		"preserved": len(report.Preserved),
	}).Info("Structure synchronization completed")

	return report, nil
}

func (s *Synchronizer) syncDir(ctx context.Context, ds *models.DirectoryStructure, dir string, r *render.Renderer, report *models.SyncReport) error {
	exists, err := s.fs.Exists(dir)
	if err != nil {
		return &models.SyncError{Phase: "mkdir", Path: dir, Err: err}
	}
	if !exists {
		if err := s.fs.EnsureDir(dir); err != nil {
			return &models.SyncError{Phase: "mkdir", Path: dir, Err: err}
		}
		report.Dirs = append(report.Dirs, dir)
	}

	for _, file := range ds.Files {
		if err := ctx.Err(); err != nil {
			return err
		}

		dest := path.Join(dir, path.Base(file.Path))

		if s.rules.PreserveExisting {
			exists, err := s.fs.Exists(dest)
			if err != nil {
				return &models.SyncError{Phase: "write", Path: dest, Err: err}
			}
			if exists {
				s.logger.WithField("path", dest).Info("Preserving existing file")
				report.Preserved = append(report.Preserved, dest)
				continue
			}
		}

		if err := s.fs.Write(dest, []byte(r.Render(file.Content)), 0644); err != nil {
			return &models.SyncError{Phase: "write", Path: dest, Err: err}
		}
		s.logger.WithField("path", dest).Debug("Synced file")
		report.Created = append(report.Created, dest)
	}

	for _, sub := range ds.Subdirs {
		if err := s.syncDir(ctx, sub, path.Join(dir, sub.Name), r, report); err != nil {
			return err
		}
	}

	return nil
}

// backup copies an existing target to a timestamped sibling and returns
// its path. A missing target needs no backup.
func (s *Synchronizer) backup(ctx context.Context, target string) (string, error) {
	exists, err := s.fs.Exists(target)
	if err != nil {
		return "", &models.SyncError{Phase: "backup", Path: target, Err: err}
	}
	if !exists {
		return "", nil
	}

	base := path.Base(target) + "_backup_" + s.now().Format(backupTimeFormat)
	backup := path.Join(path.Dir(target), base)
	for i := 1; ; i++ {
		taken, err := s.fs.Exists(backup)
		if err != nil {
			return "", &models.SyncError{Phase: "backup", Path: backup, Err: err}
		}
		if !taken {
			break
		}
		backup = path.Join(path.Dir(target), base+"_"+strconv.Itoa(i))
	}

	if err := s.copyTree(ctx, target, backup); err != nil {
		return "", &models.SyncError{Phase: "backup", Path: backup, Err: err}
	}

	s.logger.WithField("backup", backup).Info("Backup created")
	return backup, nil
}

func (s *Synchronizer) copyTree(ctx context.Context, src, dst string) error {
	if err := s.fs.EnsureDir(dst); err != nil {
		return err
	}

	entries, err := s.fs.ListDir(src)
	if err != nil {
		return fmt.Errorf("list %s: %w", src, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := path.Join(dst, entry.Name)
		switch {
		case entry.IsSymlink:
			s.logger.WithField("path", entry.Path).Debug("Backup skips symlink")
		case entry.IsDir:
			if err := s.copyTree(ctx, entry.Path, target); err != nil {
				return err
			}
		default:
			data, err := s.fs.Read(entry.Path)
			if err != nil {
				return fmt.Errorf("read %s: %w", entry.Path, err)
			}
			mode := entry.Mode.Perm()
			if mode == 0 {
				mode = 0644
			}
			if err := s.fs.Write(target, data, mode); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
		}
	}

	return nil
}
