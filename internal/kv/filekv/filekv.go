// Package filekv is a kv.Namespace persisted as a single JSON document. The
// whole namespace lives in memory and is rewritten to the file after every
// mutation, which is fine for the small volume of a personal site.
package filekv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"

	"github.com/patric-chuzhbe/atomicnotes/internal/kv"
	"github.com/patric-chuzhbe/atomicnotes/internal/kv/memorykv"
)

// FileKV wraps the memory namespace and flushes it to fileName.
type FileKV struct {
	*memorykv.MemoryKV

	fs       afero.Fs
	fileName string

	// writeMu keeps "mutate then flush" atomic so that an older snapshot can
	// never overwrite a newer one on disk.
	writeMu sync.Mutex
}

type fileContent struct {
	Entries map[string]memorykv.Entry `json:"entries"`
}

// InitOption configures New.
type InitOption func(*initOptions)

type initOptions struct {
	fs afero.Fs
}

// WithFs replaces the OS filesystem, e.g. with afero.NewMemMapFs in tests.
func WithFs(fs afero.Fs) InitOption {
	return func(options *initOptions) {
		options.fs = fs
	}
}

// New loads fileName, creating it with an empty namespace when it does not exist.
func New(fileName string, optionsProto ...InitOption) (*FileKV, error) {
	options := &initOptions{
		fs: afero.NewOsFs(),
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	db := &FileKV{
		MemoryKV: memorykv.New(),
		fs:       options.fs,
		fileName: fileName,
	}

	content, err := parseJSONFile(db.fs, fileName)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := writeToJSONFile(db.fs, fileName, db.MemoryKV.Snapshot()); err != nil {
			return nil, err
		}
		return db, nil
	}

	if content.Entries != nil {
		db.MemoryKV.Entries = content.Entries
	}

	return db, nil
}

// Put writes the file first and applies the entry in memory only after the
// write succeeded, so a failed Put leaves both unchanged.
func (db *FileKV) Put(ctx context.Context, key string, value []byte, metadata any) error {
	if key == "" {
		return kv.ErrEmptyKey
	}

	rawMetadata, err := kv.EncodeMetadata(metadata)
	if err != nil {
		return err
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	next := db.MemoryKV.Snapshot()
	next[key] = memorykv.Entry{Value: value, Metadata: rawMetadata}
	if err := writeToJSONFile(db.fs, db.fileName, next); err != nil {
		return err
	}

	return db.MemoryKV.Put(ctx, key, value, rawMetadata)
}

// Delete removes the key from the file, then from memory.
func (db *FileKV) Delete(ctx context.Context, key string) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	next := db.MemoryKV.Snapshot()
	if _, found := next[key]; !found {
		return nil
	}
	delete(next, key)
	if err := writeToJSONFile(db.fs, db.fileName, next); err != nil {
		return err
	}

	return db.MemoryKV.Delete(ctx, key)
}

func (db *FileKV) Ping(ctx context.Context) error {
	_, err := db.fs.Stat(db.fileName)

	return err
}

func (db *FileKV) Close() error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	return writeToJSONFile(db.fs, db.fileName, db.MemoryKV.Snapshot())
}

func writeToJSONFile(fs afero.Fs, fileName string, entries map[string]memorykv.Entry) error {
	jsonData, err := json.MarshalIndent(fileContent{Entries: entries}, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	tmpName := fileName + ".tmp"
	if err := afero.WriteFile(fs, tmpName, jsonData, 0644); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	if err := fs.Rename(tmpName, fileName); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("error renaming file: %w", err)
	}

	return nil
}

func parseJSONFile(fs afero.Fs, fileName string) (*fileContent, error) {
	file, err := fs.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	content := &fileContent{}
	if err := json.NewDecoder(file).Decode(content); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", fileName, err)
	}

	return content, nil
}
