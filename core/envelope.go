package zipsig

import (
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"
)

// Envelope framing constants.
const (
	// SignatureLinePrefix starts the comment line that carries a signature.
	SignatureLinePrefix = "ZipAuthenticode"

	// BeginSignatureBlock and EndSignatureBlock delimit the block in a catalog.
	BeginSignatureBlock = "# SIG # Begin signature block"
	EndSignatureBlock   = "# SIG # End signature block"

	// BlockChunkSize is the maximum number of characters of the block per catalog line.
	BlockChunkSize = 64

	// LineSeparator terminates every catalog line.
	LineSeparator = "\r\n"

	linePrefix      = SignatureLinePrefix + "="
	digestPrefix    = "sha256:"
	blockLinePrefix = "# "
	byteOrderMark   = "\ufeff"

	// "ZipAuthenticode=" + "sha256:" + 64 hex + ","
	digestStart     = len(linePrefix)
	digestLen       = len(digestPrefix) + 64
	separatorOffset = digestStart + digestLen
	blockStart      = separatorOffset + 1

	minCatalogLines = 4
)

// Envelope is a digest paired with an opaque signature block.
type Envelope struct {
	// Digest is "sha256:" followed by 64 lowercase hex characters.
	Digest string

	// Block is the signature payload produced by an external signer. It must
	// be single-line text, such as base64; a line break inside it does not
	// survive a catalog round trip.
	Block string
}

// NewEnvelope pairs an archive digest with a signature block.
func NewEnvelope(d digest.Digest, block string) Envelope {
	return Envelope{Digest: d.String(), Block: block}
}

// SignatureLine formats the envelope for storage in an archive comment:
// "ZipAuthenticode=<digest>,<block>".
func (e Envelope) SignatureLine() string {
	var sb strings.Builder
	sb.Grow(len(linePrefix) + len(e.Digest) + 1 + len(e.Block))
	sb.WriteString(linePrefix)
	sb.WriteString(e.Digest)
	sb.WriteByte(',')
	sb.WriteString(e.Block)
	return sb.String()
}

// ParseSignatureLine splits a comment signature line into its digest and block.
//
// The line must start with "ZipAuthenticode=sha256:", carry 64 lowercase hex
// characters, a comma, and at least one character of block.
func ParseSignatureLine(line string) (Envelope, error) {
	if len(line) < blockStart+1 {
		return Envelope{}, fmt.Errorf("%w: signature line is %d characters, need at least %d",
			ErrInvalidSignatureEnvelope, len(line), blockStart+1)
	}
	if !strings.HasPrefix(line, linePrefix+digestPrefix) {
		return Envelope{}, fmt.Errorf("%w: signature line must start with %q",
			ErrInvalidSignatureEnvelope, linePrefix+digestPrefix)
	}
	d := digest.Digest(line[digestStart:separatorOffset])
	if err := d.Validate(); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrInvalidSignatureEnvelope, err)
	}
	if line[separatorOffset] != ',' {
		return Envelope{}, fmt.Errorf("%w: expected ',' after digest, found %q",
			ErrInvalidSignatureEnvelope, line[separatorOffset])
	}
	return Envelope{Digest: d.String(), Block: line[blockStart:]}, nil
}

// FindSignatureLine returns the first trimmed comment line starting with
// "ZipAuthenticode". ok is false when the comment carries no signature, which
// means the archive is unsigned.
func FindSignatureLine(comment string) (line string, ok bool) {
	for _, l := range strings.Split(comment, "\n") {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, SignatureLinePrefix) {
			return l, true
		}
	}
	return "", false
}

// Catalog formats the envelope as a catalog: the digest line, the begin
// marker, the block in lines of at most BlockChunkSize characters each
// prefixed with "# ", and the end marker. Every line ends with LineSeparator.
//
// Every line after the first is a script comment, so the catalog stays inert
// when interpreted as a script.
func (e Envelope) Catalog() string {
	var sb strings.Builder
	writeLine := func(s string) {
		sb.WriteString(s)
		sb.WriteString(LineSeparator)
	}

	writeLine(e.Digest)
	writeLine(BeginSignatureBlock)
	block := []rune(e.Block)
	if len(block) == 0 {
		// An empty block is one empty chunk, keeping the catalog at four lines.
		writeLine(blockLinePrefix)
	}
	for start := 0; start < len(block); start += BlockChunkSize {
		end := min(start+BlockChunkSize, len(block))
		writeLine(blockLinePrefix + string(block[start:end]))
	}
	writeLine(EndSignatureBlock)
	return sb.String()
}

// ParseCatalog reconstructs an envelope from catalog text.
//
// The first non-empty line, trimmed, is the digest. Lines starting with "# "
// after the begin marker and before the end marker contribute their text,
// without the prefix, to the block. Text with fewer than four lines fails
// with ErrInvalidSignatureEnvelope.
func ParseCatalog(text string) (Envelope, error) {
	lines := splitLines(text)
	if len(lines) < minCatalogLines {
		return Envelope{}, fmt.Errorf("%w: catalog has %d lines, need at least %d",
			ErrInvalidSignatureEnvelope, len(lines), minCatalogLines)
	}

	first := 0
	for first < len(lines) && strings.TrimSpace(lines[first]) == "" {
		first++
	}
	if first == len(lines) {
		return Envelope{}, fmt.Errorf("%w: catalog has no digest line", ErrInvalidSignatureEnvelope)
	}
	env := Envelope{Digest: strings.TrimSpace(lines[first])}

	var (
		sb      strings.Builder
		inBlock bool
	)
	for _, line := range lines[first+1:] {
		if !strings.HasPrefix(line, blockLinePrefix) {
			continue
		}
		switch {
		case line == BeginSignatureBlock:
			inBlock = true
		case line == EndSignatureBlock:
			env.Block = sb.String()
			return env, nil
		case inBlock:
			sb.WriteString(line[len(blockLinePrefix):])
		}
	}
	env.Block = sb.String()
	return env, nil
}

// CatalogToSignatureLine converts catalog text into the single-line comment form.
func CatalogToSignatureLine(text string) (string, error) {
	env, err := ParseCatalog(text)
	if err != nil {
		return "", err
	}
	return env.SignatureLine(), nil
}

// splitLines splits text on "\n", dropping a leading byte order mark, a
// trailing "\r" from each line and the empty line that follows a final
// separator.
func splitLines(text string) []string {
	text = strings.TrimPrefix(text, byteOrderMark)
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
