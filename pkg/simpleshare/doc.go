// Package simpleshare provides a small file sharing service: uploads are stored
// under short random names in a pluggable blob store and handed back as a public
// URL together with a signed delete URL.
//
// The delete URL carries a capability token derived from the upload secret and
// the stored name (see package deletetoken). Nothing about issued tokens is kept
// on the server; a delete request is authorized by recomputing the token.
//
// Blob stores for the local filesystem, memory and S3-compatible object storage
// are provided under storage/. HTTP handlers live in api/, configuration in
// config/.
package simpleshare
