// Package supabase adapts Supabase Storage and PostgREST to the gem pipeline:
// image uploads, and an alternative list/create source backed by a table.
package supabase

import (
	"errors"
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// NewClient creates a Supabase client for the project at url.
func NewClient(url, key string) (*supabase.Client, error) {
	if url == "" {
		return nil, errors.New("supabase url is required")
	}
	if key == "" {
		return nil, errors.New("supabase key is required")
	}
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("init supabase client: %w", err)
	}
	return client, nil
}
