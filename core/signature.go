package zipsig

import "fmt"

// Envelope returns the signature envelope stored in the archive comment.
// ok is false when the comment has no signature line.
func (a *Archive) Envelope() (env Envelope, ok bool, err error) {
	comment, err := a.Comment()
	if err != nil {
		return Envelope{}, false, err
	}
	line, ok := FindSignatureLine(comment)
	if !ok {
		return Envelope{}, false, nil
	}
	env, err = ParseSignatureLine(line)
	if err != nil {
		return Envelope{}, false, err
	}
	return env, true, nil
}

// Embed replaces the archive comment with the envelope's signature line and
// returns the previous comment.
func (a *Archive) Embed(env Envelope) (string, error) {
	return a.SetComment(env.SignatureLine())
}

// Verify recomputes the archive digest and compares it with the digest in env.
// It returns ErrDigestMismatch when they differ. The signature block itself is
// not inspected.
func (a *Archive) Verify(env Envelope) error {
	got, err := a.DigestString()
	if err != nil {
		return err
	}
	if got != env.Digest {
		return fmt.Errorf("%w: archive is %s, signature covers %s", ErrDigestMismatch, got, env.Digest)
	}
	return nil
}
