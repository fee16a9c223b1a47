package segment

import (
	"bytes"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/drusellers/tantivy/directory"
	"github.com/drusellers/tantivy/model"
)

// WriteDeletes replaces the segment's tombstone file with the given doc
// id bitmap. Unlike the other segment files the delete file is rewritten
// whenever more documents are tombstoned, hence the atomic write.
func WriteDeletes(dir directory.Directory, id model.SegmentID, bm *roaring.Bitmap) error {
	var payload bytes.Buffer
	if _, err := bm.WriteTo(&payload); err != nil {
		return err
	}
	buf := appendHeader(nil, magicDel)
	buf = append(buf, payload.Bytes()...)
	return dir.AtomicWrite(FileName(id, ExtDelete), appendFooter(buf))
}

// ReadDeletes loads the segment's tombstone bitmap.
func ReadDeletes(dir directory.Directory, id model.SegmentID) (*roaring.Bitmap, error) {
	data, err := dir.AtomicRead(FileName(id, ExtDelete))
	if err != nil {
		return nil, err
	}
	payload, err := checkFile(data, magicDel)
	if err != nil {
		return nil, err
	}
	bm := roaring.New()
	if _, err := bm.ReadFrom(bytes.NewReader(payload)); err != nil {
		return nil, err
	}
	return bm, nil
}
