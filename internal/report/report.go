// Package report serializes the buckets of a mapping as JSON, optionally
// zstd-compressed.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/ironsheep/image-template-mapper/internal/colorspace"
	"github.com/ironsheep/image-template-mapper/internal/engine"
	"github.com/ironsheep/image-template-mapper/internal/imaging"
)

// CompressedExt marks report files that are written zstd-compressed.
const CompressedExt = ".zst"

// Entry describes one bucket.
type Entry struct {
	Template imaging.ColorResult `json:"template"`
	Pixels   uint64              `json:"pixels"`
	Mean     colorspace.Value    `json:"mean"`
	Color    imaging.ColorResult `json:"color"`
}

// Report describes every bucket of one mapping, ordered by template key.
type Report struct {
	Mode     colorspace.Mode `json:"mode"`
	Strategy string          `json:"strategy"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Buckets  []Entry         `json:"buckets"`
}

// Build describes res. Means are converted back to RGB in res.Mode.
func Build(res *engine.Result) (*Report, error) {
	space, err := colorspace.For(res.Mode)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Mode:     res.Mode,
		Strategy: res.Strategy,
		Buckets:  make([]Entry, 0, len(res.Colors)),
	}
	if res.Output != nil {
		r.Width, r.Height = res.Output.Width, res.Output.Height
	}

	for _, k := range engine.SortedKeys(res.Colors) {
		b := res.Colors[k]
		r.Buckets = append(r.Buckets, Entry{
			Template: imaging.DescribeColor(k.RGB()),
			Pixels:   b.Count,
			Mean:     b.Mean,
			Color:    imaging.DescribeColor(space.FromWorking(b.Mean)),
		})
	}
	return r, nil
}

// Write encodes r as indented JSON, zstd-compressed when compress is set.
func Write(w io.Writer, r *Report, compress bool) error {
	if !compress {
		return encode(w, r)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := encode(enc, r); err != nil {
		_ = enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush zstd stream: %w", err)
	}
	return nil
}

// Read decodes a report written by Write.
func Read(rd io.Reader, compressed bool) (*Report, error) {
	if compressed {
		dec, err := zstd.NewReader(rd)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer dec.Close()
		rd = dec
	}

	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}

// WriteFile writes r to path, compressing when path ends in CompressedExt.
func WriteFile(path string, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := Write(f, r, isCompressed(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a report written by WriteFile.
func ReadFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()
	return Read(f, isCompressed(path))
}

func isCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), CompressedExt)
}

func encode(w io.Writer, r *Report) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
