// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/rw3iss/movie-recommender/internal/recommend"
)

// document is the CLI input: one user's history plus everything needed to
// rank a pool for them.
type document struct {
	UserID      string                  `json:"user_id"`
	Ratings     []recommend.RatedItem   `json:"ratings"`
	Pool        []recommend.CatalogItem `json:"pool"`
	Peers       [][]recommend.RatedItem `json:"peers,omitempty"`
	Catalog     []recommend.CatalogItem `json:"catalog,omitempty"`
	Preferences recommend.Preferences   `json:"preferences,omitempty"`
	Versions    documentVersions        `json:"versions,omitempty"`
}

// documentVersions keys the engine's result cache.
type documentVersions struct {
	Ratings string `json:"ratings"`
	Pool    string `json:"pool"`
}

// readDocument decodes a document from path, or from r when path is "-".
func readDocument(path string, r io.Reader) (*document, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(r)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal input JSON: %w", err)
	}
	return &doc, nil
}

// request converts the document into an engine request.
func (d *document) request() recommend.Request {
	req := recommend.Request{
		UserID:         d.UserID,
		Ratings:        d.Ratings,
		Pool:           d.Pool,
		Peers:          d.Peers,
		Preferences:    d.Preferences,
		RatingsVersion: d.Versions.Ratings,
		PoolVersion:    d.Versions.Pool,
	}
	if len(d.Catalog) > 0 {
		req.Catalog = recommend.NewCatalog(d.Catalog)
	}
	return req
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(path string, w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output JSON: %w", err)
	}
	out = append(out, '\n')

	if path == "" || path == "-" {
		_, err = w.Write(out)
		return err
	}

	// Ensure output directory exists
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, out, 0o644); err != nil { //nolint:gosec // output is not sensitive
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
