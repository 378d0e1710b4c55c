// Package trash moves files to a recoverable trash location. It prefers the
// platform's own trash through wastebasket, then the desktop commands (gio or
// trash-cli on Linux, Finder on macOS), and falls back to writing the
// freedesktop.org layout under an explicit home trash directory.
// Files are never permanently deleted, and nothing already in the trash is
// ever replaced.
package trash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/Bios-Marcel/wastebasket/v2"
	"github.com/adrg/xdg"
	"github.com/google/uuid"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
)

var logger = logging.Get("trash")

// commandTimeout is the maximum time to wait for trash commands.
const commandTimeout = 30 * time.Second

// trashInfoTimeFormat is the DeletionDate layout required by the freedesktop.org trash format.
const trashInfoTimeFormat = "2006-01-02T15:04:05"

// Bin moves files into a trash can.
type Bin struct {
	// Home is the freedesktop.org trash directory holding files/ and info/.
	Home string

	// System tries the platform trash before the in-process fallback.
	System bool
}

// Default returns a Bin using the platform trash and $XDG_DATA_HOME/Trash.
func Default() *Bin {
	return &Bin{
		Home:   filepath.Join(xdg.DataHome, "Trash"),
		System: true,
	}
}

// Move moves a file or directory into the trash.
func (b *Bin) Move(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return fmt.Errorf("cannot trash %q: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}

	if b.System {
		if err := platformTrash(absPath); err == nil {
			return nil
		}
	}

	return b.moveToHome(absPath, time.Now())
}

// platformTrash hands path to wastebasket, then to the desktop commands.
func platformTrash(path string) error {
	err := wastebasket.Trash(path)
	if err == nil {
		logger.Debug("trashed via wastebasket", "path", path)
		return nil
	}
	logger.Debug("wastebasket failed", "path", path, "err", err)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := systemTrash(ctx, path); err != nil {
		logger.Debug("system trash unavailable", "path", path, "err", err)
		return err
	}
	logger.Debug("trashed via system", "path", path)
	return nil
}

// errNoSystemTrash is returned when no platform trash command is usable.
var errNoSystemTrash = errors.New("no system trash available")

func systemTrash(ctx context.Context, path string) error {
	switch runtime.GOOS {
	case "darwin":
		// Finder keeps "Put Back" working.
		script := fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, path)
		return exec.CommandContext(ctx, "osascript", "-e", script).Run()
	case "linux":
		if gioPath, err := exec.LookPath("gio"); err == nil {
			if err := exec.CommandContext(ctx, gioPath, "trash", path).Run(); err == nil {
				return nil
			}
		}
		if trashPath, err := exec.LookPath("trash-put"); err == nil {
			return exec.CommandContext(ctx, trashPath, path).Run()
		}
		return errNoSystemTrash
	default:
		return errNoSystemTrash
	}
}

// maxNameAttempts bounds the uuid-suffixed names tried on collision.
const maxNameAttempts = 8

// moveToHome implements the freedesktop.org home trash: the file goes to
// files/<name> and a matching info/<name>.trashinfo records where it came
// from. A name is free only when neither entry exists.
func (b *Bin) moveToHome(absPath string, now time.Time) error {
	filesDir := filepath.Join(b.Home, "files")
	infoDir := filepath.Join(b.Home, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating trash directory: %w", err)
		}
	}

	base := filepath.Base(absPath)
	name := base
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		if attempt > 0 {
			name = suffixed(base, uuid.NewString()[:8])
		}

		err := place(absPath, filesDir, infoDir, name, now)
		if err == nil {
			logger.Debug("trashed", "path", absPath, "dest", filepath.Join(filesDir, name))
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return err
		}
		logger.Debug("trash name taken", "name", name)
	}
	return fmt.Errorf("no free trash name for %q", base)
}

// place claims name by creating its trashinfo exclusively, then moves
// absPath to files/name without replacing anything there. It returns an
// error wrapping fs.ErrExist when the name is taken in either directory.
func place(absPath, filesDir, infoDir, name string, now time.Time) error {
	infoPath := filepath.Join(infoDir, name+".trashinfo")
	dest := filepath.Join(filesDir, name)

	infoFile, err := os.OpenFile(infoPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating trash info: %w", err)
	}

	// An orphan under files/ still holds someone's trashed data.
	if _, err := os.Lstat(dest); err == nil {
		_ = infoFile.Close()
		_ = os.Remove(infoPath)
		return fmt.Errorf("trash entry %q: %w", dest, fs.ErrExist)
	}

	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		(&url.URL{Path: absPath}).EscapedPath(), now.Format(trashInfoTimeFormat))
	_, werr := infoFile.WriteString(info)
	cerr := infoFile.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(infoPath)
		return fmt.Errorf("writing trash info: %w", err)
	}

	if err := moveFile(absPath, dest); err != nil {
		_ = os.Remove(infoPath)
		return fmt.Errorf("moving %q to trash: %w", absPath, err)
	}
	return nil
}

// suffixed inserts suffix before the extension: photo.jpg -> photo.1a2b3c4d.jpg.
func suffixed(base, suffix string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		return base + "." + suffix
	}
	return stem + "." + suffix + ext
}

// moveFile renames src to dst, copying across filesystems. It never
// replaces an existing dst; that case fails with an error wrapping
// fs.ErrExist.
func moveFile(src, dst string) error {
	err := renameNoReplace(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot move %s across devices", info.Mode().Type())
	}

	if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Remove(src)
}

// renameChecked refuses to rename over an existing dst. The check and the
// rename are not atomic.
func renameChecked(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
	}
	return os.Rename(src, dst)
}

// copyFile creates dst exclusively and fills it from src. On failure it
// removes only a dst it created itself.
func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}
