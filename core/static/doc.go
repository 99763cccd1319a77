// Package static serves embedded or on-disk assets through the router.
//
// FS wraps http.FileServer for any fs.FS. It keeps range requests,
// conditional requests and content type detection, and it refuses to list
// directories.
package static
