// Package htsbam implements areader.Reader over an indexed BAM file,
// using github.com/biogo/hts. Grounded on BAMFileReader.java (index
// discovery convention, corrupt-index detection, 1-based query
// coordinate translation).
package htsbam

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/scttfrdmn/tilecache/pkg/align"
	"github.com/scttfrdmn/tilecache/pkg/areader"
	"github.com/scttfrdmn/tilecache/pkg/areader/blobstore"
)

// Reader is an areader.Reader backed by a BAM file and its .bai index,
// local or S3-hosted.
type Reader struct {
	path   string
	store  blobstore.Storage
	file   io.ReadSeeker
	local  *os.File
	bam    *bam.Reader
	index  *bam.Index
	header *sam.Header

	refsByName map[string]*sam.Reference
	rgLibrary  map[string]string
}

// Open opens path (a local path or an s3:// URL) for indexed querying.
// It returns *areader.MissingIndexError if no .bai companion can be
// found, following BAMFileReader.findIndexFile's naming convention
// (foo.bam.bai, then the Picard-style foo.bai).
func Open(ctx context.Context, path string) (*Reader, error) {
	store, err := blobstore.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage backend: %w", err)
	}

	idxPath, err := findIndexFile(store, path)
	if err != nil {
		return nil, err
	}

	idxBytes, err := store.ReadFile(idxPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", idxPath, err)
	}
	index, err := bam.ReadIndex(bytes.NewReader(idxBytes))
	if err != nil {
		return nil, &areader.CorruptIndexError{Err: err}
	}

	r := &Reader{path: path, store: store, index: index}

	if strings.HasPrefix(path, "s3://") {
		data, err := store.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		r.file = bytes.NewReader(data)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		r.local = f
		r.file = f
	}

	bamReader, err := bam.NewReader(r.file, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to create BAM reader: %w", err)
	}
	r.bam = bamReader
	r.header = bamReader.Header()

	r.refsByName = make(map[string]*sam.Reference, len(r.header.Refs()))
	for _, ref := range r.header.Refs() {
		r.refsByName[ref.Name()] = ref
	}

	r.rgLibrary = make(map[string]string, len(r.header.RGs()))
	for _, rg := range r.header.RGs() {
		// biogo/hts's typed ReadGroup API does not expose LB directly;
		// the read-group ID doubles as the PEStats grouping key, at the
		// same granularity as the "lb == null -> \"null\"" fallback.
		r.rgLibrary[rg.Name()] = rg.Name()
	}

	return r, nil
}

// findIndexFile reproduces BAMFileReader.findIndexFile's naming search.
func findIndexFile(store blobstore.Storage, bamPath string) (string, error) {
	bai := bamPath + ".bai"
	if ok, err := store.Exists(bai); err == nil && ok {
		return bai, nil
	}

	if strings.HasSuffix(strings.ToLower(bamPath), ".bam") {
		alt := bamPath[:len(bamPath)-len(".bam")] + ".bai"
		if ok, err := store.Exists(alt); err == nil && ok {
			return alt, nil
		}
	}

	return "", &areader.MissingIndexError{Path: bamPath}
}

func (r *Reader) SequenceNames() []string {
	names := make([]string, 0, len(r.refsByName))
	for name := range r.refsByName {
		names = append(names, name)
	}
	return names
}

func (r *Reader) Header() any { return r.header }

func (r *Reader) HasIndex() bool { return r.index != nil }

func (r *Reader) Iterator() (areader.Iterator, error) {
	return &streamIterator{r: r}, nil
}

// Query returns alignments overlapping the 0-based half-open [start, end)
// interval on sequence. Internally this adds 1 to start before handing
// it to the index, mirroring BAMFileReader.query's
// "reader.query(sequence, start + 1, end, contained)" translation from
// this module's half-open convention to the 1-based inclusive start the
// underlying index chunk lookup expects.
func (r *Reader) Query(sequence string, start, end int, contained bool) (areader.Iterator, error) {
	ref, ok := r.refsByName[sequence]
	if !ok {
		return areader.EmptyIterator{}, nil
	}

	chunks, err := r.index.Chunks(ref, start+1, end)
	if err != nil {
		return nil, &areader.ReaderFaultError{Err: err}
	}
	if len(chunks) == 0 {
		return areader.EmptyIterator{}, nil
	}

	it, err := bam.NewIterator(r.bam, chunks)
	if err != nil {
		return nil, &areader.ReaderFaultError{Err: err}
	}
	return &chunkIterator{r: r, it: it, contained: contained, start: start, end: end}, nil
}

func (r *Reader) Close() error {
	var err error
	if r.local != nil {
		err = r.local.Close()
	}
	return err
}

func (r *Reader) library(rec *sam.Record) string {
	for _, aux := range rec.AuxFields {
		if aux.Tag() == sam.Tag([2]byte{'R', 'G'}) {
			if id, ok := aux.Value().(string); ok {
				if lib, ok := r.rgLibrary[id]; ok {
					return lib
				}
				return id
			}
		}
	}
	return ""
}

func (r *Reader) wrap(rec *sam.Record) align.Alignment {
	return align.NewRecord(rec, r.library(rec))
}
