package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/interfaces"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/secmon-lab/ghauth/pkg/repository"
	"github.com/secmon-lab/ghauth/pkg/utils/errutil"
	"github.com/urfave/cli/v3"
)

// CredentialStore selects where access tokens are kept between runs.
type CredentialStore struct {
	backend   string
	dir       string
	namespace string
}

func (x *CredentialStore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "credential-store",
			Usage:       "Credential store backend [keyring|file|memory]",
			Category:    "Credential",
			Sources:     cli.EnvVars("GHAUTH_CREDENTIAL_STORE"),
			Value:       "keyring",
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "credential-dir",
			Usage:       "Directory of the file credential store (default: user config dir)",
			Category:    "Credential",
			Sources:     cli.EnvVars("GHAUTH_CREDENTIAL_DIR"),
			Destination: &x.dir,
		},
		&cli.StringFlag{
			Name:        "credential-namespace",
			Usage:       "Keyring service namespace",
			Category:    "Credential",
			Sources:     cli.EnvVars("GHAUTH_CREDENTIAL_NAMESPACE"),
			Value:       repository.DefaultNamespace,
			Destination: &x.namespace,
		},
	}
}

func (x CredentialStore) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("dir", x.dir),
		slog.String("namespace", x.namespace),
	)
}

func (x *CredentialStore) Configure() (interfaces.CredentialStore, error) {
	switch x.backend {
	case "", "keyring":
		ns := x.namespace
		if ns == "" {
			ns = repository.DefaultNamespace
		}
		return repository.NewKeyring(ns), nil

	case "file":
		dir := x.dir
		if dir == "" {
			d, err := repository.DefaultFileDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		store, err := repository.NewFile(dir)
		if err != nil {
			return nil, err
		}
		return store, nil

	case "memory":
		return repository.NewMemory(), nil

	default:
		return nil, goerr.New("unknown credential store backend",
			goerr.T(errs.TagValidation),
			goerr.TV(errutil.BackendKey, x.backend))
	}
}
