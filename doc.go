// Package zipsig signs ZIP archives by storing an Authenticode-style
// signature in the archive comment.
//
// The archive digest is a SHA-256 over every byte up to the end of the
// end-of-central-directory record, with the comment-length field zeroed, so
// rewriting the comment never changes it. A signed archive carries a single
// comment line:
//
//	ZipAuthenticode=sha256:<64 hex>,<signature block>
//
// Signing goes through a catalog file, "<archive>.sig.ps1", that an external
// tool signs in place (see the [signer] subpackage). For low-level access to
// the archive format without files or signers, use the [core] subpackage.
//
// # Quick Start
//
// Compute a digest:
//
//	c, err := zipsig.NewClient()
//	if err != nil {
//	    return err
//	}
//	info, err := c.Digest(ctx, "release.zip")
//
// Sign and verify with a command-line signer:
//
//	cfg, err := signer.LoadConfig("signer.yaml")
//	if err != nil {
//	    return err
//	}
//	s, err := signer.NewCommandSigner(cfg)
//	if err != nil {
//	    return err
//	}
//	c, err := zipsig.NewClient(zipsig.WithSigner(s))
//	if err != nil {
//	    return err
//	}
//	if _, err := c.Sign(ctx, "release.zip"); err != nil {
//	    return err
//	}
//	sig, err := c.Verify(ctx, "release.zip")
//
// # Remote archives
//
// Paths starting with http:// or https:// are read with HTTP range requests.
// Read-only operations work on them; operations that write return
// [ErrRemoteReadOnly].
package zipsig
