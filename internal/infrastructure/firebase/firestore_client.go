package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"campuschat/pkg/logger"
)

// Credentials selects how the service account is supplied. JSON wins over
// Path. With neither, application default credentials are used.
type Credentials struct {
	JSON string
	Path string
}

func (c Credentials) options() ([]option.ClientOption, error) {
	if c.JSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(c.JSON))}, nil
	}
	if c.Path != "" {
		if _, err := os.Stat(c.Path); err != nil {
			return nil, fmt.Errorf("service account file %s: %w", c.Path, err)
		}
		logger.Info("Using Firebase service account from file: %s", c.Path)
		return []option.ClientOption{option.WithCredentialsFile(c.Path)}, nil
	}
	logger.Info("Using application default credentials for Firebase")
	return nil, nil
}

// NewFirestoreClient initializes the Firebase app and returns its Firestore
// client. The caller closes it.
func NewFirestoreClient(ctx context.Context, projectID string, creds Credentials) (*firestore.Client, error) {
	opts, err := creds.options()
	if err != nil {
		return nil, err
	}

	app, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return client, nil
}
