package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/urfave/cli/v3"
)

func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, flag := range flags {
		result = append(result, flag...)
	}
	return result
}

// resolveClientID takes the client ID from the first argument, then from
// the flag, and finally asks for it on in.
func resolveClientID(c *cli.Command, fromFlag string, in io.Reader, out io.Writer) (string, error) {
	if id := strings.TrimSpace(c.Args().First()); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(fromFlag); id != "" {
		return id, nil
	}

	fmt.Fprint(out, "Please enter the app's Client ID: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", goerr.Wrap(err, "failed to read client ID")
	}
	id := strings.TrimSpace(line)
	if id == "" {
		return "", goerr.New("client ID is required", goerr.T(errs.TagValidation))
	}
	return id, nil
}
