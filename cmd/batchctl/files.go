package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"classroom-backend/internal/batch"
)

// batchFile is the input of run and prompt.
type batchFile struct {
	Kind     string            `json:"kind"`
	Settings map[string]string `json:"settings"`
	Items    []batch.Item      `json:"items"`
}

func (f batchFile) settings() batch.Settings {
	return batch.Settings{Kind: f.Kind, Values: f.Settings}
}

// resultFile is written by run and read by export.
type resultFile struct {
	Kind     string            `json:"kind"`
	Settings map[string]string `json:"settings"`
	Outcomes []batch.Outcome   `json:"outcomes"`
	Drafts   []string          `json:"drafts,omitempty"`
}

func (f resultFile) settings() batch.Settings {
	return batch.Settings{Kind: f.Kind, Values: f.Settings}
}

func readJSON(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", displayName(path), err)
	}
	return nil
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}
