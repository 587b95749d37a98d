package loader

import (
	"context"
	"encoding/json"
	"fmt"

	supabase "github.com/supabase-community/supabase-go"
)

// Backend wraps the Supabase client: full-table selects for the Loader and
// email/password sign-in for the auth handler. Both hit the same project.
type Backend struct {
	client *supabase.Client
}

// NewBackend connects to the Supabase project at url with the given API key.
func NewBackend(url, key string) (*Backend, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("initialize backend client: %w", err)
	}
	return &Backend{client: client}, nil
}

// FetchAll pulls every row of the table. The store exposes select-all
// semantics only; no pagination or filtering happens at this boundary.
func (b *Backend) FetchAll(ctx context.Context, table string) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, _, err := b.client.From(table).Select("*", "exact", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", table, err)
	}
	return rows, nil
}

// SignIn authenticates the user against the backend. The session the app
// keeps afterwards is only {logged_in, user_email}; nothing else from the
// token response is retained.
func (b *Backend) SignIn(ctx context.Context, email, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.client.SignInWithEmailPassword(email, password); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	return nil
}
