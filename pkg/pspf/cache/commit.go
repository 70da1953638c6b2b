package cache

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	pspferrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

// Commit atomically promotes a fully assembled scratch directory to the
// workenv's final content directory with a single rename, per spec
// §4.5 step 5 and testable property #6. This replaces the teacher's
// execution_slots.go per-slot-directory merge loop, which performs many
// sequential renames and is not atomic as a whole.
//
// If the destination already exists (a rare race after the cache-check
// re-check), it is removed first. If Rename reports a cross-device
// error, Commit falls back to a copy onto a sibling temp path on the
// destination filesystem, fsyncs it, removes the source, and performs
// one final same-filesystem rename onto the true destination — see
// DESIGN.md's resolution of the cross-device open question.
func Commit(scratchDir, contentDir string) error {
	if _, err := os.Lstat(contentDir); err == nil {
		if err := os.RemoveAll(contentDir); err != nil {
			return pspferrors.NewExtractionError("remove stale content directory before commit", err)
		}
	}

	err := os.Rename(scratchDir, contentDir)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || linkErr.Err != syscall.EXDEV {
		return pspferrors.NewExtractionError("commit rename failed", err)
	}

	return commitCrossDevice(scratchDir, contentDir)
}

// commitCrossDevice implements the copy-then-rename fallback: the full
// tree is copied to a sibling path on the destination filesystem first
// (so a crash mid-copy never touches the real destination path), then
// the source is removed, then one same-filesystem rename lands the
// sibling onto the true destination. This keeps the true destination's
// presence/absence behavior under crash identical to the same-device
// case.
func commitCrossDevice(scratchDir, contentDir string) error {
	sibling := contentDir + ".incoming"
	if err := os.RemoveAll(sibling); err != nil {
		return pspferrors.NewExtractionError("clear stale incoming directory", err)
	}
	if err := copyTree(scratchDir, sibling); err != nil {
		os.RemoveAll(sibling)
		return pspferrors.NewExtractionError("cross-device copy", err)
	}
	if err := fsyncTree(sibling); err != nil {
		os.RemoveAll(sibling)
		return pspferrors.NewExtractionError("fsync incoming directory", err)
	}
	if err := os.RemoveAll(scratchDir); err != nil {
		return pspferrors.NewExtractionError("remove scratch after cross-device copy", err)
	}
	if err := os.Rename(sibling, contentDir); err != nil {
		return pspferrors.NewExtractionError("final same-filesystem rename", err)
	}
	return nil
}

func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, info.Mode()); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func fsyncTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return f.Sync()
	})
}
