// Package blob keeps in-memory resources addressable by blob: URLs.
//
//	reg := blob.NewRegistry()
//
//	url := reg.Create(markup, "image/svg+xml;charset=utf-8")
//	defer reg.Revoke(url)
//
//	b, err := reg.Open(url)
//	if err != nil {
//		return err
//	}
//	icon, err := oksvg.ReadIconStream(b.Reader())
//
// The owner of a URL is responsible for revoking it. Resources are never
// collected otherwise, so an unrevoked URL holds its bytes for the life of
// the registry.
package blob
