package tantivy

import (
	"encoding/json"
	"fmt"

	"github.com/drusellers/tantivy/directory"
	"github.com/drusellers/tantivy/schema"
	"github.com/drusellers/tantivy/segment"
)

const (
	metaFileName = "meta.json"
	metaVersion  = 1
)

// IndexMeta is the persisted state of an index: the schema and the
// list of live segments. It is rewritten atomically on every commit,
// so readers always observe a complete segment list.
type IndexMeta struct {
	Version     int            `json:"version"`
	Schema      *schema.Schema `json:"schema"`
	Segments    []segment.Meta `json:"segments"`
	NextSegment uint64         `json:"next_segment_id"`
}

func loadMeta(dir directory.Directory) (*IndexMeta, error) {
	data, err := dir.AtomicRead(metaFileName)
	if err != nil {
		return nil, translateMetaError(err)
	}
	var m IndexMeta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("tantivy: decode %s: %w", metaFileName, err)
	}
	if m.Version != metaVersion {
		return nil, fmt.Errorf("tantivy: unsupported metadata version %d (expected %d)", m.Version, metaVersion)
	}
	return &m, nil
}

func saveMeta(dir directory.Directory, m *IndexMeta) error {
	m.Version = metaVersion
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return dir.AtomicWrite(metaFileName, data)
}
