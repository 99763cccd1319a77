// Package cookie manages HTTP cookies with shared attribute defaults and
// HMAC-SHA256 signing.
//
//	m, err := cookie.New([]string{secret}, cookie.WithSecure(true))
//	if err != nil {
//		return err
//	}
//
//	if err := m.SetSigned(w, "qrstudio_session", id); err != nil {
//		return err
//	}
//
//	id, err := m.GetSigned(r, "qrstudio_session")
//	switch {
//	case errors.Is(err, cookie.ErrCookieNotFound):
//	case errors.Is(err, cookie.ErrInvalidSignature):
//	}
//
// Defaults are Path=/, HttpOnly and SameSite=Lax. Several secrets may be
// configured: the first one signs, all of them verify.
package cookie
