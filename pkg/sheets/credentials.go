package sheets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/dskvich/networker-bot/pkg/domain"
)

// LoadCredentialsJSON returns the service account key, read from file when
// it exists and from envJSON otherwise.
func LoadCredentialsJSON(file, envJSON string) ([]byte, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		switch {
		case err == nil:
			return data, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("reading credentials file '%s': %w", file, err)
		}
	}

	if blob := strings.TrimSpace(envJSON); blob != "" {
		return []byte(blob), nil
	}

	return nil, fmt.Errorf("%w: no file at '%s' and no JSON in environment", domain.ErrMissingCredentials, file)
}

func ResolveCredentials(ctx context.Context, file, envJSON string) (*google.Credentials, error) {
	data, err := LoadCredentialsJSON(file, envJSON)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	return creds, nil
}
