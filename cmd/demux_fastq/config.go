package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Config is a specification of barcode -> output files
type Config struct {
	Inputs       []string          `json:"inputs"`       // A list of file strings
	Destinations map[string]string `json:"destinations"` // Map of barcode sequences to output filenames
	Mismatches   int               `json:"mismatches"`
	Threads      int               `json:"threads"`

	// Read-ahead buffer per input, in bytes. 0 uses the reader default.
	BufferSize int  `json:"buffer_size"`
	Unbuffered bool `json:"unbuffered"`
}

func readConfigFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	c, err := configFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return c, nil
}

func (c *Config) applyMismatches() (conflicts []string) {
	if c.Mismatches == 0 {
		return
	}
	newDests := make(map[string]string)

	for bc, dest := range c.Destinations {
		newBarcodes := mismatches(bc, c.Mismatches)
		for _, newbc := range newBarcodes {
			if prev, conflict := newDests[newbc]; conflict && prev != dest {
				conflicts = append(conflicts, newbc)
			}
			newDests[newbc] = dest
		}
	}
	for _, conflict := range conflicts {
		delete(newDests, conflict)
	}
	c.Destinations = newDests
	c.Mismatches = 0
	return conflicts
}

func configFromJSON(data []byte) (*Config, error) {
	c := Config{}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if len(c.Inputs) == 0 {
		return nil, fmt.Errorf("no inputs configured")
	}
	if c.Mismatches < 0 || c.Threads < 0 || c.BufferSize < 0 {
		return nil, fmt.Errorf("mismatches, threads and buffer_size must not be negative")
	}
	return &c, nil
}
