package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/meigma/zipsig"
)

// outputFormat is a pflag.Value restricted to the supported formats.
type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
)

func (f *outputFormat) String() string {
	return string(*f)
}

func (f *outputFormat) Set(v string) error {
	switch outputFormat(v) {
	case formatTable, formatJSON:
		*f = outputFormat(v)
		return nil
	default:
		return fmt.Errorf("must be one of %q or %q", formatTable, formatJSON)
	}
}

func (f *outputFormat) Type() string {
	return "format"
}

// render writes rows as a table, or v as indented JSON.
func render(w io.Writer, format outputFormat, header table.Row, rows []table.Row, v any) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	if len(rows) == 0 {
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	t.AppendRows(rows)
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return nil
}

// reportFailures logs each failed path and returns errPathsFailed if any.
func reportFailures(logger *slog.Logger, err error) error {
	if err == nil {
		return nil
	}
	failures := zipsig.PathErrors(err)
	if len(failures) == 0 {
		return err
	}
	for _, pe := range failures {
		logger.Error(describe(pe.Err), slog.String("op", pe.Op), slog.String("path", pe.Path), slog.Any("error", pe.Err))
	}
	return errPathsFailed
}

// describe names the failure class for log messages.
func describe(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "file not found"
	case errors.Is(err, fs.ErrPermission):
		return "access denied"
	case errors.Is(err, zipsig.ErrNotSigned):
		return "archive is not signed"
	case errors.Is(err, zipsig.ErrDigestMismatch):
		return "digest mismatch"
	case errors.Is(err, zipsig.ErrMalformedArchive):
		return "not a readable zip archive"
	case errors.Is(err, zipsig.ErrInvalidSignatureEnvelope):
		return "invalid signature"
	default:
		return "operation failed"
	}
}

// pathErrors joins one PathError per failure from a sequential loop.
type pathErrors []error

func (p *pathErrors) add(op, path string, err error) {
	*p = append(*p, &zipsig.PathError{Op: op, Path: path, Err: err})
}

func (p pathErrors) err() error {
	return errors.Join(p...)
}
