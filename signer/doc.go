// Package signer connects archive signing to external signing tools.
//
// Signing works on a catalog file: the archive digest written on its own line
// to "<archive>.sig.ps1". A [Signer] signs that file in place, appending a
// "# SIG # Begin signature block" ... "# SIG # End signature block" section,
// the contract of script-signing tools such as Set-AuthenticodeSignature.
// The signature block is never interpreted here.
//
// [CommandSigner] and [CommandVerifier] run a configured command line, loaded
// from YAML with [LoadConfig]:
//
//	command: [pwsh, -NoProfile, -Command, "Set-AuthenticodeSignature -FilePath '{file}' -Certificate (Get-PfxCertificate '{certificate}') -TimestampServer '{timestampServer}' -HashAlgorithm {hashAlgorithm}"]
//	verifyCommand: [pwsh, -NoProfile, -Command, "if ((Get-AuthenticodeSignature -FilePath '{file}').Status -ne 'Valid') { exit 1 }"]
//	certificate: ./codesign.pfx
//	timestampServer: http://timestamp.digicert.com
//	hashAlgorithm: SHA256
package signer
