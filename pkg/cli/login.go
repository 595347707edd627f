package cli

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/beam-cloud/mailtriage/pkg/oauth"
	"github.com/beam-cloud/mailtriage/pkg/types"
)

var loginCredentials string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize Gmail access and save the token",
	Long: `Print the Google consent URL, then read the authorization code (or the
full redirect URL) from stdin and save the resulting token.`,
	Example: `  mailtriage login --credentials credentials.json --token token.json`,
	RunE:    runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginCredentials, "credentials", "", "OAuth client credentials.json from the Google Cloud console")
}

func runLogin(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	if loginCredentials != "" {
		config.OAuth.CredentialsFile = loginCredentials
	}

	client, err := oauth.NewGoogleClient(config.OAuth)
	if err != nil {
		return err
	}

	state, err := oauth.NewState()
	if err != nil {
		return err
	}

	PrintHeader("Gmail authorization")
	PrintInfo("Open this URL in a browser and approve access:")
	fmt.Fprintf(out, "\n  %s\n\n", CodeStyle.Render(client.AuthorizeURL(state)))
	PrintInfo("Paste the code or the URL you were redirected to:")

	code, err := readAuthCode(cmd.InOrStdin(), state)
	if err != nil {
		return err
	}

	token, err := client.Exchange(cmd.Context(), code)
	if err != nil {
		return err
	}

	if err := oauth.SaveToken(tokenPath, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	PrintSuccessf("Token saved to %s", tokenPath)
	return nil
}

// readAuthCode reads one line and returns the authorization code from it
func readAuthCode(r io.Reader, state string) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return parseAuthCode(line, state)
}

// parseAuthCode accepts either a bare code or the redirect URL carrying it. A
// redirect URL must echo the state that was issued.
func parseAuthCode(input, state string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("no authorization code entered")
	}

	if !strings.Contains(input, "://") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("parse redirect url: %w", err)
	}

	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization failed: %s", e)
	}
	if got := q.Get("state"); got != "" && got != state {
		return "", fmt.Errorf("state mismatch")
	}

	code := q.Get("code")
	if code == "" {
		return "", fmt.Errorf("redirect url has no code")
	}
	return code, nil
}

// loadStoredToken reads the token saved by login
func loadStoredToken(path string) (*oauth2.Token, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: no token at %s, run `mailtriage login` first", types.ErrNotAuthorized, path)
	}
	return oauth.LoadToken(path)
}
