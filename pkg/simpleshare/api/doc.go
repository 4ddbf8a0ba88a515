// Package api exposes a simpleshare.Service over HTTP.
//
// Routes:
//
//	GET    /                          liveness
//	GET    /healthz                   health check
//	POST   /upload                    multipart upload, requires "Authorization: Bearer <secret>"
//	GET    /file/{filename}           raw file bytes, range requests supported
//	GET    /{filename}                HTML info page with Open Graph tags
//	DELETE /delete/{token}/{filename} delete with a signed token
//
// HEAD is accepted wherever GET is.
package api
