package pipeline

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/provide-io/pspf/pkg/pspf/format"
)

// tarOperation archives a source directory into a deterministic POSIX
// ustar stream and, on reverse, extracts it into a target directory with
// a path-traversal guard. Unlike the teacher's bundle/tar.go (which wraps
// a single byte blob as one tar entry named "data"), this walks an actual
// directory tree.
type tarOperation struct{}

func (tarOperation) Opcode() uint8 { return format.OpTar }
func (tarOperation) Name() string  { return "tar" }
func (tarOperation) IsArchive() bool { return true }

func (tarOperation) Forward(_ []byte, srcDir string, seed string) ([]byte, error) {
	if srcDir == "" {
		return nil, fmt.Errorf("tar: no source directory supplied")
	}

	var paths []string
	err := filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tar: walk %s: %w", srcDir, err)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	deterministic := seed != ""
	var modTime time.Time
	if deterministic {
		modTime = time.Unix(0, 0).UTC()
	}

	for _, rel := range paths {
		full := filepath.Join(srcDir, rel)
		info, err := os.Lstat(full)
		if err != nil {
			return nil, fmt.Errorf("tar: stat %s: %w", full, err)
		}

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			link, err = os.Readlink(full)
			if err != nil {
				return nil, fmt.Errorf("tar: readlink %s: %w", full, err)
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return nil, fmt.Errorf("tar: header for %s: %w", full, err)
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		hdr.Uid, hdr.Gid = 0, 0
		hdr.Uname, hdr.Gname = "", ""
		if deterministic {
			hdr.ModTime = modTime
			hdr.AccessTime = time.Time{}
			hdr.ChangeTime = time.Time{}
			hdr.Mode = normalizeMode(hdr.Mode, info.IsDir())
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("tar: write header for %s: %w", full, err)
		}

		if info.Mode().IsRegular() {
			f, err := os.Open(full)
			if err != nil {
				return nil, fmt.Errorf("tar: open %s: %w", full, err)
			}
			_, copyErr := io.Copy(tw, f)
			closeErr := f.Close()
			if copyErr != nil {
				return nil, fmt.Errorf("tar: copy %s: %w", full, copyErr)
			}
			if closeErr != nil {
				return nil, fmt.Errorf("tar: close %s: %w", full, closeErr)
			}
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("tar: close writer: %w", err)
	}
	return buf.Bytes(), nil
}

// normalizeMode collapses a file's permission bits onto one of two
// canonical values so deterministic builds do not depend on the umask of
// the machine that staged the source tree.
func normalizeMode(mode int64, isDir bool) int64 {
	if isDir {
		return 0o755
	}
	if mode&0o111 != 0 {
		return 0o755
	}
	return 0o644
}

func (tarOperation) Reverse(data []byte, targetDir string) ([]byte, error) {
	if targetDir == "" {
		return nil, fmt.Errorf("tar: no target directory supplied")
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("tar: mkdir %s: %w", targetDir, err)
	}

	tr := tar.NewReader(bytes.NewReader(data))
	// Defer directory mode fixups until after all entries are written,
	// since tar may set a directory's restrictive mode before its
	// children are extracted.
	var dirModes []struct {
		path string
		mode os.FileMode
	}

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tar: read entry: %w", err)
		}

		target, err := safeJoin(targetDir, hdr.Name)
		if err != nil {
			return nil, fmt.Errorf("tar: %w", err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, fmt.Errorf("tar: mkdir %s: %w", target, err)
			}
			dirModes = append(dirModes, struct {
				path string
				mode os.FileMode
			}{target, hdr.FileInfo().Mode()})
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, fmt.Errorf("tar: mkdir parent of %s: %w", target, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, hdr.FileInfo().Mode().Perm())
			if err != nil {
				return nil, fmt.Errorf("tar: create %s: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return nil, fmt.Errorf("tar: write %s: %w", target, err)
			}
			if err := out.Close(); err != nil {
				return nil, fmt.Errorf("tar: close %s: %w", target, err)
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, fmt.Errorf("tar: mkdir parent of %s: %w", target, err)
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return nil, fmt.Errorf("tar: symlink %s: %w", target, err)
			}
		default:
			// Skip device nodes, FIFOs, and other non-portable entries.
			continue
		}
	}

	for _, d := range dirModes {
		_ = os.Chmod(d.path, d.mode)
	}

	return nil, nil
}

// safeJoin joins targetDir and name, rejecting any result that resolves
// outside targetDir (a path-traversal attempt, e.g. "../evil"). It joins
// the raw (uncleaned-by-rooting) name so a ".." component is resolved
// against targetDir itself rather than neutralized by a leading-slash
// rooting trick first.
func safeJoin(targetDir, name string) (string, error) {
	targetAbs, err := filepath.Abs(targetDir)
	if err != nil {
		return "", err
	}

	joined := filepath.Join(targetAbs, filepath.FromSlash(name))
	joinedAbs, err := filepath.Abs(joined)
	if err != nil {
		return "", err
	}
	if joinedAbs != targetAbs && !strings.HasPrefix(joinedAbs, targetAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt: entry %q escapes target directory", name)
	}
	return joinedAbs, nil
}
