package remake

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/segmentio/fasthash/fnv1a"
	"golang.org/x/sync/errgroup"
)

// CacheFile is the name of the incremental cache in the working directory.
const CacheFile = ".remake.cache"

var errStale = errors.New("rule file is newer than cache")

// A Cache persists a compiled RuleSet so that an unchanged rule file does
// not have to be parsed and expanded again.
type Cache struct {
	Path string

	saves errgroup.Group
}

// NewCache returns the cache stored in dir.
func NewCache(dir string) *Cache {
	return &Cache{Path: filepath.Join(dir, CacheFile)}
}

type cacheData struct {
	RuleFile string
	Checksum uint64
	Payload  []byte
}

// Load returns the cached RuleSet for ruleFile. Any error, including a cache
// older than ruleFile or written for another rule file, is a cache miss.
func (c *Cache) Load(ruleFile string) (RuleSet, error) {
	cinfo, err := os.Stat(c.Path)
	if err != nil {
		return RuleSet{}, err
	}
	rinfo, err := os.Stat(ruleFile)
	if err != nil {
		return RuleSet{}, err
	}
	if rinfo.ModTime().After(cinfo.ModTime()) {
		return RuleSet{}, errStale
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return RuleSet{}, err
	}
	defer f.Close()
	d, err := loadData(f)
	if err != nil {
		return RuleSet{}, err
	}
	if d.RuleFile != ruleFile {
		return RuleSet{}, fmt.Errorf("cache is for %s", d.RuleFile)
	}
	if fnv1a.HashBytes64(d.Payload) != d.Checksum {
		return RuleSet{}, errors.New("cache checksum mismatch")
	}
	var rs RuleSet
	if err := gob.NewDecoder(bytes.NewReader(d.Payload)).Decode(&rs); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// Save writes rs as the compiled form of ruleFile.
func (c *Cache) Save(ruleFile string, rs RuleSet) error {
	payload := &bytes.Buffer{}
	if err := gob.NewEncoder(payload).Encode(rs); err != nil {
		return err
	}
	d := &cacheData{
		RuleFile: ruleFile,
		Checksum: fnv1a.HashBytes64(payload.Bytes()),
		Payload:  payload.Bytes(),
	}

	tmp := c.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := d.writeTo(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, c.Path)
}

// SaveAsync saves a copy of rs in the background. Wait must be called
// before the process exits.
func (c *Cache) SaveAsync(ruleFile string, rs RuleSet) {
	snapshot := rs.Clone()
	c.saves.Go(func() error {
		return c.Save(ruleFile, snapshot)
	})
}

// Wait blocks until pending saves have finished. Save failures are logged
// and not returned: a missing cache only costs a re-parse.
func (c *Cache) Wait() {
	if err := c.saves.Wait(); err != nil {
		log.Printf("could not write cache %s: %s", c.Path, err)
	}
}

func (d *cacheData) writeTo(w io.Writer) error {
	fz := gzip.NewWriter(w)
	enc := gob.NewEncoder(fz)
	err := enc.Encode(d)
	if cerr := fz.Close(); err == nil {
		err = cerr
	}
	return err
}

func loadData(r io.Reader) (*cacheData, error) {
	var d cacheData
	fz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	dec := gob.NewDecoder(fz)
	err = dec.Decode(&d)
	fz.Close()
	return &d, err
}
