package zipsig

import (
	"context"
	"log/slog"
)

// Comment returns the archive comment.
func (c *Client) Comment(ctx context.Context, path string) (string, error) {
	a, err := c.load(ctx, path)
	if err != nil {
		return "", err
	}
	return a.Comment()
}

// SetComment replaces the archive comment, saves the archive and returns the
// previous comment. Replacing the comment of a signed archive removes its
// signature.
func (c *Client) SetComment(ctx context.Context, path, text string) (string, error) {
	if err := localOnly(path); err != nil {
		return "", err
	}
	a, err := c.load(ctx, path)
	if err != nil {
		return "", err
	}
	prev, err := a.SetComment(text)
	if err != nil {
		return "", err
	}
	if err := a.Save(path); err != nil {
		return "", err
	}
	c.log().Debug("updated comment",
		slog.String("path", path),
		slog.Int("previous", len(prev)),
		slog.Int("length", len(text)))
	return prev, nil
}
