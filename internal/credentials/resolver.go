// Package credentials resolves per-provider secrets with a fixed
// precedence: loaded configuration first, process environment second.
package credentials

import (
	"fmt"
	"os"

	"github.com/noticetake/push-relay/pkg/push"
	"github.com/noticetake/push-relay/pushrelay/config"
)

// Environment variable fallbacks, consulted only when the configuration
// leaves a field empty.
const (
	EnvFirebaseServiceAccount = "FIREBASE_SERVICE_ACCOUNT"
	EnvHMSAppID               = "HMS_APP_ID"
	EnvHMSClientID            = "HMS_CLIENT_ID"
	EnvHMSClientSecret        = "HMS_CLIENT_SECRET"
)

// Resolver looks up provider credentials. It performs no network I/O; the
// only disk access is the existence check on the FCM service-account file.
type Resolver struct {
	cfg    *config.Config
	getenv func(string) string
	stat   func(string) (os.FileInfo, error)
}

func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{
		cfg:    cfg,
		getenv: os.Getenv,
		stat:   os.Stat,
	}
}

// NewResolverWithLookup injects the environment and filesystem lookups.
// Tests use this to avoid touching the real process environment.
func NewResolverWithLookup(cfg *config.Config, getenv func(string) string, stat func(string) (os.FileInfo, error)) *Resolver {
	return &Resolver{cfg: cfg, getenv: getenv, stat: stat}
}

// Resolve returns the credentials for provider, or MissingCredentialsError
// when a required field is absent from both configuration and environment.
func (r *Resolver) Resolve(provider push.Provider) (push.Credentials, error) {
	switch provider {
	case push.ProviderFCM:
		return r.resolveFCM()
	case push.ProviderHMS:
		return r.resolveHMS()
	default:
		return push.Credentials{}, fmt.Errorf("unknown provider %q", provider)
	}
}

func (r *Resolver) resolveFCM() (push.Credentials, error) {
	path := r.lookup(r.cfg.Firebase.ServiceAccountFile, EnvFirebaseServiceAccount)
	if path == "" {
		return push.Credentials{}, &push.MissingCredentialsError{Provider: push.ProviderFCM, Field: "service_account"}
	}
	if _, err := r.stat(path); err != nil {
		return push.Credentials{}, &push.MissingCredentialsError{Provider: push.ProviderFCM, Field: "service_account"}
	}
	return push.Credentials{FCM: &push.FCMCredentials{ServiceAccountFile: path}}, nil
}

func (r *Resolver) resolveHMS() (push.Credentials, error) {
	creds := push.HMSCredentials{
		AppID:        r.lookup(r.cfg.HMS.AppID, EnvHMSAppID),
		ClientID:     r.lookup(r.cfg.HMS.ClientID, EnvHMSClientID),
		ClientSecret: r.lookup(r.cfg.HMS.ClientSecret, EnvHMSClientSecret),
	}
	switch {
	case creds.AppID == "":
		return push.Credentials{}, &push.MissingCredentialsError{Provider: push.ProviderHMS, Field: "app_id"}
	case creds.ClientID == "":
		return push.Credentials{}, &push.MissingCredentialsError{Provider: push.ProviderHMS, Field: "client_id"}
	case creds.ClientSecret == "":
		return push.Credentials{}, &push.MissingCredentialsError{Provider: push.ProviderHMS, Field: "client_secret"}
	}
	return push.Credentials{HMS: &creds}, nil
}

func (r *Resolver) lookup(configured, envKey string) string {
	if configured != "" {
		return configured
	}
	return r.getenv(envKey)
}
