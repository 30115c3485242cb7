package cli

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/secmon-lab/ghauth/pkg/domain/model/device"
	"github.com/secmon-lab/ghauth/pkg/utils/clock"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
)

type browserOpener func(ctx context.Context, url string) error

// consolePresenter prints the user code and opens the verification page.
type consolePresenter struct {
	out  io.Writer
	open browserOpener
}

func (x *consolePresenter) Present(ctx context.Context, session *device.Session) error {
	bold := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	gray := color.New(color.FgHiBlack)

	expiry := clock.Now(ctx).Add(session.ExpiresAfter())

	bold.Fprintln(x.out, "GitHub device authorization")
	fmt.Fprint(x.out, "  Code:    ")
	yellow.Fprintln(x.out, session.UserCode)
	fmt.Fprintf(x.out, "  Open:    %s\n", session.VerificationURI)
	gray.Fprintf(x.out, "  Expires %s\n", humanize.RelTime(expiry, clock.Now(ctx), "ago", "from now"))
	fmt.Fprintln(x.out)

	if x.open != nil {
		if err := x.open(ctx, session.VerificationURI); err != nil {
			logging.From(ctx).Warn("failed to open browser", "error", err, "url", session.VerificationURI)
		}
	}
	return nil
}

func openBrowser(_ context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func printLoggedIn(out io.Writer, login string, cached bool) {
	if login == "" {
		login = "(unknown user)"
	}
	green := color.New(color.FgGreen, color.Bold)
	green.Fprint(out, "Logged in as: ")
	fmt.Fprint(out, login)
	if cached {
		fmt.Fprint(out, " (stored token)")
	}
	fmt.Fprintln(out)
}
