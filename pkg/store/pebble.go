package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"paperguard/pkg/errdefs"
	"paperguard/pkg/logger"
	"paperguard/pkg/metrics"
	"paperguard/pkg/models"
)

var (
	db     *pebble.DB
	dbPath string
)

// seq reduces key collisions when multiple check-log entries share the
// same nanosecond timestamp.
var seq uint64

const (
	paperPrefix    = "paper:"
	checkLogPrefix = "checklog:"
)

// Open opens (or creates) a Pebble database at the given path and keeps a
// global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

// SavePaper creates a record for bucketHash or appends a version to an
// existing one. When the submitting author differs from the stored one the
// record is marked shared; the author field keeps the original wire format
// "<address> (shared)". Concurrent writers to the same hash race with
// last-write-wins semantics; records are per-key and never deleted.
func SavePaper(bucketHash, content, title, author string, ts int64) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	switch {
	case bucketHash == "":
		return errdefs.Validation("bucketHash")
	case content == "":
		return errdefs.Validation("content")
	case title == "":
		return errdefs.Validation("title")
	case author == "":
		return errdefs.Validation("authorAddress")
	}

	key := []byte(paperPrefix + bucketHash)
	var p models.Paper
	v, closer, err := db.Get(key)
	switch err {
	case nil:
		derr := json.Unmarshal(v, &p)
		closer.Close()
		if derr != nil {
			return fmt.Errorf("invalid stored paper %s: %w", bucketHash, derr)
		}
		p.Versions = append(p.Versions, models.Version{Content: content, Timestamp: ts})
		p.Content = content
		if p.AuthorAddress != author {
			p.AuthorAddress = author + " (shared)"
			p.Shared = true
		}
	case pebble.ErrNotFound:
		p = models.Paper{
			BucketHash:    bucketHash,
			Title:         title,
			Content:       content,
			AuthorAddress: author,
			Versions:      []models.Version{{Content: content, Timestamp: ts}},
		}
	default:
		return err
	}

	data, err := json.Marshal(&p)
	if err != nil {
		return fmt.Errorf("failed to marshal paper: %w", err)
	}
	if err := db.Set(key, data, pebble.Sync); err != nil {
		logger.Error("save_paper_failed", "bucket_hash", bucketHash, "error", err)
		return err
	}
	metrics.PapersStored.Inc()
	logger.Info("paper_saved", "bucket_hash", bucketHash, "versions", len(p.Versions))
	return nil
}

// AddVersion appends a version to an existing record and syncs its content
// to the new value. The record must already exist.
func AddVersion(bucketHash, content string, ts int64) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	switch {
	case bucketHash == "":
		return errdefs.Validation("bucketHash")
	case content == "":
		return errdefs.Validation("content")
	}

	p, err := GetPaper(bucketHash)
	if err != nil {
		return err
	}
	p.Versions = append(p.Versions, models.Version{Content: content, Timestamp: ts})
	p.Content = content

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal paper: %w", err)
	}
	if err := db.Set([]byte(paperPrefix+bucketHash), data, pebble.Sync); err != nil {
		logger.Error("add_version_failed", "bucket_hash", bucketHash, "error", err)
		return err
	}
	metrics.VersionsAppended.Inc()
	logger.Info("version_added", "bucket_hash", bucketHash, "versions", len(p.Versions))
	return nil
}

// GetPaper returns the full record for bucketHash.
func GetPaper(bucketHash string) (*models.Paper, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	v, closer, err := db.Get([]byte(paperPrefix + bucketHash))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, &errdefs.NotFoundError{Kind: "paper", Key: bucketHash}
		}
		return nil, err
	}
	defer closer.Close()
	var p models.Paper
	if err := json.Unmarshal(v, &p); err != nil {
		return nil, fmt.Errorf("invalid stored paper %s: %w", bucketHash, err)
	}
	return &p, nil
}

// ListPaperIDs returns all known bucket hashes in lexicographic order.
func ListPaperIDs() ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte(paperPrefix)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	out := []string{}
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		out = append(out, strings.TrimPrefix(string(iter.Key()), paperPrefix))
	}
	return out, iter.Error()
}

// ScanPapers visits every stored record in lexicographic bucket-hash order
// until fn returns false. Entries that do not decode as papers are skipped;
// callers must tolerate strays.
func ScanPapers(fn func(bucketHash string, p *models.Paper) bool) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte(paperPrefix)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var p models.Paper
		if err := json.Unmarshal(iter.Value(), &p); err != nil {
			logger.Debug("scan_skip_invalid_record", "key", string(iter.Key()))
			continue
		}
		id := strings.TrimPrefix(string(iter.Key()), paperPrefix)
		if !fn(id, &p) {
			break
		}
	}
	return iter.Error()
}

// AppendCheckLog stores one best-effort check-log entry for an author.
// Key format: checklog:<author>:<unix_nano_padded>-<seq>, so entries sort
// chronologically per author.
func AppendCheckLog(author string, e models.CheckLogEntry) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	ts := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&seq, 1)
	key := fmt.Sprintf("%s%s:%020d-%06d", checkLogPrefix, author, ts, s)
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal check log entry: %w", err)
	}
	return db.Set([]byte(key), data, pebble.NoSync)
}

// ListCheckLog returns all check-log entries for an author in insertion
// order.
func ListCheckLog(author string) ([]models.CheckLogEntry, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte(checkLogPrefix + author + ":")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.CheckLogEntry
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var e models.CheckLogEntry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, iter.Error()
}

// PruneCheckLogs deletes check-log entries written before cutoff and
// returns how many were removed. Paper records are never touched.
func PruneCheckLogs(cutoff time.Time) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte(checkLogPrefix)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	cut := cutoff.UTC().UnixNano()
	var victims [][]byte
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		k := string(iter.Key())
		// timestamp is the 20-digit run after the last ':'
		i := strings.LastIndex(k, ":")
		if i < 0 || len(k) < i+21 {
			continue
		}
		var ts int64
		if _, err := fmt.Sscanf(k[i+1:i+21], "%d", &ts); err != nil {
			continue
		}
		if ts < cut {
			victims = append(victims, append([]byte(nil), iter.Key()...))
		}
	}
	if err := iter.Error(); err != nil {
		return 0, err
	}
	for _, k := range victims {
		if err := db.Delete(k, pebble.NoSync); err != nil {
			return len(victims), err
		}
	}
	if len(victims) > 0 {
		logger.Info("check_logs_pruned", "count", len(victims))
	}
	return len(victims), nil
}

// DBSet writes a raw key/value pair. Low-level helper used by tests and
// admin utilities.
func DBSet(key, value []byte) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	return db.Set(key, value, pebble.Sync)
}
