// Package resolve walks an operator through each duplicate group and moves
// the members they pick to the trash.
//
// For every group the resolver prints a header and the numbered members,
// then reads one line. A blank line (or end of input) leaves the group
// untouched. Otherwise the line is split on commas and each token is
// handled in order: valid numbers are trashed immediately, while a token
// that does not parse or is out of range causes the group to be presented
// again once the line is finished. Deletions already made are kept.
//
// A member trashed during an earlier attempt at the same group is marked
// "(trashed)" when the group is shown again. Selecting it a second time
// prints "already in the trash" without calling the Trasher, so a retry
// never reports a spurious soft-delete failure for it.
package resolve

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

var logger = logging.Get("resolve")

// Prompt is printed before each read.
const Prompt = "Which numbers should be moved to the trash? (separate them with commas)"

// Trasher moves a path to a recoverable location. *trash.Bin satisfies it.
type Trasher interface {
	Move(path string) error
}

// TrasherFunc adapts a function to Trasher.
type TrasherFunc func(path string) error

// Move calls f(path).
func (f TrasherFunc) Move(path string) error {
	return f(path)
}

// Summary counts what a resolution session did.
type Summary struct {
	// Groups is the number of groups presented.
	Groups int

	// Trashed is the number of members moved to the trash, or that would
	// have been in dry-run mode.
	Trashed int

	// Failed is the number of members the trash refused.
	Failed int
}

// Resolver runs the interactive resolution loop.
type Resolver struct {
	in     *bufio.Reader
	out    io.Writer
	trash  Trasher
	dryRun bool
	eof    bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDryRun reports selections without calling the trasher.
func WithDryRun(dryRun bool) Option {
	return func(r *Resolver) {
		r.dryRun = dryRun
	}
}

// New returns a resolver reading selections from in and writing to out.
func New(in io.Reader, out io.Writer, trash Trasher, opts ...Option) *Resolver {
	r := &Resolver{
		in:    bufio.NewReader(in),
		out:   out,
		trash: trash,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve presents each group in order. It stops early only when ctx is
// cancelled or reading input fails for a reason other than end of input.
func (r *Resolver) Resolve(ctx context.Context, groups []types.Group) (Summary, error) {
	var sum Summary

	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		sum.Groups++
		if err := r.resolveGroup(g, i+1, len(groups), &sum); err != nil {
			return sum, err
		}
	}

	logger.Info("resolution finished", "groups", sum.Groups, "trashed", sum.Trashed,
		"failed", sum.Failed, "dry_run", r.dryRun)
	return sum, nil
}

// resolveGroup runs one group from presentation to completion.
func (r *Resolver) resolveGroup(g types.Group, position, total int, sum *Summary) error {
	trashed := make([]bool, len(g.Paths))

	for {
		r.present(g, position, total, trashed)

		line, err := r.readLine()
		if err != nil {
			return err
		}

		if strings.TrimSpace(line) == "" {
			r.printf("Nothing has been deleted.\n")
			return nil
		}

		if r.apply(g, line, trashed, sum) {
			return nil
		}
	}
}

func (r *Resolver) present(g types.Group, position, total int, trashed []bool) {
	r.printf("\n--- %s (%d of %d)\n", g.Digest, position, total)
	for i, path := range g.Paths {
		if trashed[i] {
			r.printf("#%d : %s (trashed)\n", i+1, path)
			continue
		}
		r.printf("#%d : %s\n", i+1, path)
	}
	r.printf("%s\n", Prompt)
}

// apply handles every token of a non-blank line and reports whether the
// line was accepted.
func (r *Resolver) apply(g types.Group, line string, trashed []bool, sum *Summary) bool {
	accepted := true

	for _, token := range strings.Split(strings.TrimSpace(line), ",") {
		idx, err := parseSelection(token, len(g.Paths))
		if err != nil {
			accepted = false
			r.printf("%v\n", err)
			logger.Debug("selection rejected", "digest", g.Digest.String(), "err", err)
			continue
		}

		path := g.Paths[idx-1]
		switch {
		case trashed[idx-1]:
			r.printf("#%d is already in the trash\n", idx)
		case r.dryRun:
			trashed[idx-1] = true
			sum.Trashed++
			r.printf("Would move %s to the trash\n", path)
		default:
			if err := r.trash.Move(path); err != nil {
				sum.Failed++
				delErr := &SoftDeleteError{Path: path, Err: err}
				r.printf("%v\n", delErr)
				logger.Warn("soft delete failed", "path", path, "err", err)
				continue
			}
			trashed[idx-1] = true
			sum.Trashed++
			logger.Info("moved to trash", "path", path)
		}
	}

	return accepted
}

// parseSelection turns a token into a 1-based member index.
func parseSelection(token string, size int) (int, error) {
	token = strings.TrimSpace(token)

	n, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, &InputParseError{Token: token, Err: err}
	}

	if n < 1 || n > uint64(size) {
		return 0, &RangeError{Index: n, Size: size}
	}
	return int(n), nil
}

// readLine returns the next input line without its terminator. End of input
// yields an empty line, now and for every later read.
func (r *Resolver) readLine() (string, error) {
	if r.eof {
		return "", nil
	}

	line, err := r.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		r.eof = true
		return line, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading selection: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *Resolver) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}
