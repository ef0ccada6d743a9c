package seqindex

import (
	"encoding/json"
	"os"
)

// persistedLayout is the JSON sidecar written next to the index file the
// first time it's opened, and loaded on every subsequent open. Unlike the
// binary schema header, this guards the options before a single byte of
// the index file is even touched: options that differ from the persisted
// ones are overridden, not rejected.
type persistedLayout struct {
	FileCapacity      int64 `json:"file_capacity"`
	SectorSize        int   `json:"sector_size"`
	StreamID          int32 `json:"stream_id"`
	FlushTimeoutInMs  int64 `json:"flush_timeout_in_ms"`
}

func layoutPathFor(indexPath string) string { return indexPath + ".layout.json" }

// verifyOrWriteLayout writes the sidecar on first use, or loads it and
// overrides opts with the persisted values on every later open: whatever
// was recorded when the file was created always wins over what the caller
// passes in on a later open.
func verifyOrWriteLayout(indexPath string, opts *IndexOptions) error {
	layoutPath := layoutPathFor(indexPath)

	if _, err := os.Stat(layoutPath); os.IsNotExist(err) {
		layout := persistedLayout{
			FileCapacity:     opts.FileCapacity,
			SectorSize:       opts.SectorSize,
			StreamID:         opts.StreamID,
			FlushTimeoutInMs: opts.IndexFileStateFlushTimeoutInMs,
		}
		data, err := json.MarshalIndent(layout, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(layoutPath, data, 0o644)
	}

	data, err := os.ReadFile(layoutPath)
	if err != nil {
		return err
	}
	var layout persistedLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return err
	}

	opts.FileCapacity = layout.FileCapacity
	opts.SectorSize = layout.SectorSize
	opts.StreamID = layout.StreamID
	opts.IndexFileStateFlushTimeoutInMs = layout.FlushTimeoutInMs
	return nil
}
