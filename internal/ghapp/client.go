// Package ghapp authenticates against GitHub as a GitHub App, for the
// github bundle source.
package ghapp

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v80/github"

	"github.com/OmniNode-ai/omniroute/internal/config"
)

// appJWTLifetime is below GitHub's 10 minute maximum for app JWTs.
const appJWTLifetime = 9 * time.Minute

// InstallationClient returns a GitHub client authenticated as the configured
// app installation. The app JWT is short-lived, so a fresh client is built
// per fetch rather than cached.
func InstallationClient(ctx context.Context, cfg config.GitHubSourceConfig) (*github.Client, error) {
	appClient, err := appClient(cfg)
	if err != nil {
		return nil, err
	}

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, cfg.InstallationID, nil)
	if err != nil {
		return nil, fmt.Errorf("creating installation token for installation ID %d: %w", cfg.InstallationID, err)
	}

	return newTokenClient(token.GetToken(), cfg.ServerURL)
}

// appClient authenticates as the app itself with a signed RS256 JWT.
func appClient(cfg config.GitHubSourceConfig) (*github.Client, error) {
	pem, err := privateKeyPEM(cfg)
	if err != nil {
		return nil, err
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parsing github app private key: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(appJWTLifetime).Unix(),
		"iss": cfg.AppID,
	}
	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return nil, fmt.Errorf("signing github app jwt: %w", err)
	}

	return newTokenClient(signedToken, cfg.ServerURL)
}

func privateKeyPEM(cfg config.GitHubSourceConfig) ([]byte, error) {
	if cfg.PrivateKey != "" {
		return []byte(cfg.PrivateKey), nil
	}
	if cfg.PrivateKeyFile == "" {
		return nil, fmt.Errorf("github app requires private_key or private_key_path")
	}
	pem, err := os.ReadFile(cfg.PrivateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("reading github app private key file: %w", err)
	}
	return pem, nil
}

func newTokenClient(token, enterpriseURL string) (*github.Client, error) {
	client := github.NewClient(nil).WithAuthToken(token)

	if enterpriseURL != "" {
		// we don't interact with uploads, so just use the same URL here.
		var err error
		client, err = client.WithEnterpriseURLs(enterpriseURL, enterpriseURL)
		if err != nil {
			return nil, fmt.Errorf("creating github enterprise client: %w", err)
		}
	}

	return client, nil
}
