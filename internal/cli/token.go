package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/boardroom/internal/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP server",
		Long: `Token signs a bearer token for the identity given by --user and --role.
The server accepts it when auth.secret is configured.

Example:
  boardroom token --user ana --role admin --ttl 24h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := a.identity()
			if id == nil {
				return userError("token needs --user")
			}
			tokens, err := a.tokens(ttl)
			if err != nil {
				return err
			}
			if tokens == nil {
				return userError("auth.secret is not configured")
			}
			token, err := tokens.Issue(*id)
			if err != nil {
				return sysError("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: auth.ttl from config)")
	return cmd
}

// tokens builds the token issuer from auth.* config, or returns nil when no
// secret is configured. A zero ttl uses auth.ttl.
func (a *app) tokens(ttl time.Duration) (*auth.Tokens, error) {
	secret := a.cfg.GetString(cfgKeyAuthSecret)
	if secret == "" {
		return nil, nil
	}
	if ttl == 0 {
		ttl = a.cfg.GetDuration(cfgKeyAuthTTL)
	}
	tokens, err := auth.NewTokens(secret, a.cfg.GetString(cfgKeyAuthIssuer), ttl)
	if errors.Is(err, auth.ErrWeakSecret) {
		return nil, userError("auth.secret: %w", err)
	}
	if err != nil {
		return nil, sysError("auth: %w", err)
	}
	return tokens, nil
}
