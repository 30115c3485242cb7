package cli

import (
	"context"
	"io"

	"github.com/secmon-lab/ghauth/pkg/domain/model/device"
	"github.com/secmon-lab/ghauth/pkg/usecase"
)

var (
	ResolveClientID = resolveClientID
	ListenAddr      = listenAddr
	JoinFlags       = joinFlags
)

func PrintDocument(w io.Writer, doc usecase.Document, format string) error {
	return printDocument(w, doc, format)
}

// PresentForTest runs the console presenter with a recording opener.
func PresentForTest(ctx context.Context, w io.Writer, session *device.Session, opened *[]string) error {
	p := &consolePresenter{
		out: w,
		open: func(ctx context.Context, url string) error {
			*opened = append(*opened, url)
			return nil
		},
	}
	return p.Present(ctx, session)
}

