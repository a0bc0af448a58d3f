package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.etcd.io/bbolt"
	"jassjr/config"
	"jassjr/internal/domain"
)

// CurrentSchemaVersion is the current manifest schema version.
// Increment this when making breaking changes to the manifest layout.
const CurrentSchemaVersion = 1

var (
	bucketManifest   = []byte("manifest")
	keySchemaVersion = []byte("schema_version")
	keyConfigHash    = []byte("config_hash")
	keyBuild         = []byte("build")
)

// BoltManifest keeps the build manifest in a bbolt file next to the index.
type BoltManifest struct {
	db *bbolt.DB
}

// OpenManifest opens or creates the manifest database at path. A read-only
// open of a missing file returns domain.ErrNoManifest.
func OpenManifest(path string, readOnly bool) (*BoltManifest, error) {
	if readOnly {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNoManifest, path)
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: readOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	if !readOnly {
		err = db.Update(func(tx *bbolt.Tx) error {
			if _, err := tx.CreateBucketIfNotExists(bucketManifest); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucketManifest, err)
			}
			return nil
		})
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return &BoltManifest{db: db}, nil
}

// PutManifest replaces the stored manifest.
func (s *BoltManifest) PutManifest(m domain.Manifest) error {
	if m.SchemaVersion == 0 {
		m.SchemaVersion = CurrentSchemaVersion
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	versionData, err := json.Marshal(m.SchemaVersion)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketManifest) != nil {
			if err := tx.DeleteBucket(bucketManifest); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucketManifest)
		if err != nil {
			return err
		}
		if err := b.Put(keySchemaVersion, versionData); err != nil {
			return err
		}
		if err := b.Put(keyConfigHash, []byte(m.ConfigHash)); err != nil {
			return err
		}
		return b.Put(keyBuild, data)
	})
}

// GetManifest returns the stored manifest or domain.ErrNoManifest.
func (s *BoltManifest) GetManifest() (domain.Manifest, error) {
	var m domain.Manifest
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketManifest)
		if b == nil {
			return domain.ErrNoManifest
		}

		var version int
		if versionData := b.Get(keySchemaVersion); versionData != nil {
			if err := json.Unmarshal(versionData, &version); err != nil {
				return fmt.Errorf("%w: schema version: %v", domain.ErrCorruptIndex, err)
			}
		}
		if version > CurrentSchemaVersion {
			return fmt.Errorf("manifest created by newer version (v%d > v%d)", version, CurrentSchemaVersion)
		}

		data := b.Get(keyBuild)
		if data == nil {
			return domain.ErrNoManifest
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("%w: manifest: %v", domain.ErrCorruptIndex, err)
		}
		return nil
	})
	return m, err
}

func (s *BoltManifest) Close() error {
	return s.db.Close()
}

// ComputeConfigHash computes a hash of the settings that shape the artifacts.
// Changes to this hash indicate the index should be rebuilt.
func ComputeConfigHash(cfg *config.Config) string {
	relevant := struct {
		DocumentTag      string `json:"document_tag"`
		PrimaryKeyTag    string `json:"primary_key_tag"`
		IndexPrimaryKeys bool   `json:"index_primary_keys"`
		StopwordsFile    string `json:"stopwords_file"`
		Stemming         bool   `json:"stemming"`
		MaxTermBytes     int    `json:"max_term_bytes"`
		ByteOrder        string `json:"byte_order"`
		VocabOrder       string `json:"vocab_order"`
	}{
		DocumentTag:      cfg.Index.DocumentTag,
		PrimaryKeyTag:    cfg.Index.PrimaryKeyTag,
		IndexPrimaryKeys: cfg.Index.IndexPrimaryKeys,
		StopwordsFile:    cfg.Index.StopwordsFile,
		Stemming:         cfg.Index.Stemming,
		MaxTermBytes:     cfg.Index.MaxTermBytes,
		ByteOrder:        cfg.Index.ByteOrder,
		VocabOrder:       cfg.Index.VocabOrder,
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// StaleReason reports why an index built under m no longer matches cfg, or
// "" when it still matches.
func StaleReason(m domain.Manifest, cfg *config.Config) string {
	switch {
	case m.SchemaVersion < CurrentSchemaVersion:
		return fmt.Sprintf("schema upgrade from v%d to v%d", m.SchemaVersion, CurrentSchemaVersion)
	case m.ConfigHash != "" && m.ConfigHash != ComputeConfigHash(cfg):
		return "index configuration changed"
	}
	return ""
}
