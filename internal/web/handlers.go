package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/qrstudio/core/handler"
	"github.com/dmitrymomot/qrstudio/core/logger"
	"github.com/dmitrymomot/qrstudio/core/response"
	"github.com/dmitrymomot/qrstudio/internal/export"
	"github.com/dmitrymomot/qrstudio/internal/studio"
	"github.com/dmitrymomot/qrstudio/pkg/async"
	"github.com/dmitrymomot/qrstudio/pkg/blob"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

const wsWriteTimeout = 10 * time.Second

// StateView is the JSON form of the form state.
type StateView struct {
	Text  string `json:"text"`
	Color string `json:"color"`
	Size  int    `json:"size"`
	Sizes []int  `json:"sizes"`
}

func newStateView(s studio.State) StateView {
	sizes := studio.Sizes()
	view := StateView{Text: s.Text, Color: s.Color, Size: int(s.Size), Sizes: make([]int, len(sizes))}
	for i, size := range sizes {
		view.Sizes[i] = int(size)
	}
	return view
}

type liveMessage struct {
	Preview Preview   `json:"preview"`
	State   StateView `json:"state"`
}

// formValue reads a required urlencoded field.
func formValue(ctx *Context, key string) (string, error) {
	r := ctx.Request()
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", response.ErrRequestTooLarge.WithError(err)
		}
		return "", response.ErrBadRequest.WithError(err)
	}
	if !r.PostForm.Has(key) {
		return "", response.ErrBadRequest.WithMessage("missing form field " + key)
	}
	return r.PostForm.Get(key), nil
}

// updated answers a form write: the state as JSON for scripted clients, a
// redirect back to the page otherwise.
func updated(ctx *Context) handler.Response {
	return response.Negotiate(
		response.RedirectSeeOther("/"),
		response.NoStore(response.JSON(newStateView(ctx.Studio().State()))),
	)
}

func (a *App) index(ctx *Context) handler.Response {
	return response.NoStore(response.Template(pageTemplate, newPageData(a.title, ctx.Session())))
}

func (a *App) setText(ctx *Context) handler.Response {
	text, err := formValue(ctx, "text")
	if err != nil {
		return response.Error(err)
	}
	ctx.Studio().SetText(text)
	return updated(ctx)
}

func (a *App) setColor(ctx *Context) handler.Response {
	color, err := formValue(ctx, "color")
	if err != nil {
		return response.Error(err)
	}
	if !qrcode.IsHexColor(color) {
		return response.Error(response.ErrBadRequest.WithMessage("color must be #rrggbb"))
	}
	ctx.Studio().SetColor(color)
	return updated(ctx)
}

func (a *App) setSize(ctx *Context) handler.Response {
	v, err := formValue(ctx, "size")
	if err != nil {
		return response.Error(err)
	}
	size, err := studio.ParseSize(v)
	if err != nil {
		return response.Error(response.ErrBadRequest.WithMessage("size must be one of 200, 300, 400, 500").WithError(err))
	}
	if err := ctx.Studio().SetSize(size); err != nil {
		return response.Error(response.ErrBadRequest.WithError(err))
	}
	return updated(ctx)
}

func (a *App) reset(ctx *Context) handler.Response {
	ctx.Studio().Reset()
	return updated(ctx)
}

func (a *App) state(ctx *Context) handler.Response {
	return response.NoStore(response.JSON(newStateView(ctx.Studio().State())))
}

func (a *App) preview(ctx *Context) handler.Response {
	g, ok := ctx.Studio().Graphic()
	if !ok {
		return response.NoStore(response.NoContent())
	}
	return response.NoStore(response.Bytes(g.Markup, export.ContentTypeSVG))
}

func (a *App) export(ctx *Context) handler.Response {
	var artifact export.Artifact
	saver := export.SaverFunc(func(_ context.Context, art export.Artifact) error {
		artifact = art
		return nil
	})

	if !a.pipeline.Export(ctx, ctx.Studio(), saver) {
		return response.NoStore(response.NoContent())
	}
	return response.NoStore(response.Attachment(artifact.Data, artifact.Filename, artifact.ContentType))
}

func (a *App) blob(ctx *Context) handler.Response {
	id, err := blob.ID(blob.Scheme + ctx.Param("id"))
	if err != nil {
		return response.Error(response.ErrNotFound)
	}
	b, err := a.pipeline.Registry().Lookup(id)
	if err != nil {
		return response.Error(response.ErrNotFound.WithError(err))
	}
	return response.NoStore(response.Bytes(b.Data, b.Type))
}

func (a *App) live(ctx *Context) handler.Response {
	sess := ctx.Session()
	log := a.logger.With(logger.SessionID(sess.ID))

	return response.WebSocket(func(wsctx context.Context, conn *websocket.Conn) error {
		release := a.sessions.Hold(sess)
		defer release()

		sub := sess.Subscribe(wsctx)
		defer sub.Close()

		// The page never sends anything; reading detects the close frame.
		reader := async.Exec(wsctx, conn, func(_ context.Context, conn *websocket.Conn) error {
			_ = conn.SetReadDeadline(time.Time{})
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return err
				}
			}
		})

		if err := writeLive(conn, sess.Preview(), sess); err != nil {
			return err
		}

		msgs := sub.Receive(wsctx)
		for {
			select {
			case <-wsctx.Done():
				return nil
			case <-reader.Done():
				if err := reader.Await(); !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return err
				}
				return nil
			case msg, ok := <-msgs:
				if !ok {
					return nil
				}
				if err := writeLive(conn, msg.Data, sess); err != nil {
					return err
				}
			}
		}
	},
		response.WithWSOnConnect(func(ctx context.Context, _ *websocket.Conn) error {
			log.DebugContext(ctx, "live preview connected")
			return nil
		}),
		response.WithWSErrorHandler(func(ctx context.Context, err error) {
			log.DebugContext(ctx, "live preview closed", logger.Error(err))
		}),
	)
}

func writeLive(conn *websocket.Conn, p Preview, sess *Session) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(liveMessage{Preview: p, State: newStateView(sess.Studio.State())})
}
