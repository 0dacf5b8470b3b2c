package db

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	bolt "go.etcd.io/bbolt"
)

const (
	// defaultDBPath is the fallback path for the BoltDB file
	defaultDBPath = "db/n3r_watcher_db"
	// dbFileMode is the file mode for the database file (read-write for owner only)
	dbFileMode = 0600
	// upperBoundKey is the key for storing the upper bound draw id
	upperBoundKey = "upper"
	// lowerBoundKey is the key for storing the lower bound draw id
	lowerBoundKey = "lower"
	// drawKeyLen is the byte length of a processed-draw key
	drawKeyLen = 4
)

var (
	// sortableOrder is the byte order used for encoding draw ids.
	// BigEndian makes lexicographic key order match numeric order.
	sortableOrder = binary.BigEndian
)

// boltDB implements the DB interface using BoltDB, with one bucket per
// distributor identity.
type boltDB struct {
	db *bolt.DB
}

// NewBoltDB creates a new BoltDB instance at the given path.
// Buckets are created lazily per distributor on first write.
func NewBoltDB(path string) (DB, error) {
	if path == "" {
		path = defaultDBPath
	}

	db, err := bolt.Open(path, dbFileMode, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &boltDB{
		db: db,
	}, nil
}

func (d *boltDB) Close() error {
	return d.db.Close()
}

// get retrieves a value from a distributor's bucket. A missing bucket reads
// as a missing key.
func (d *boltDB) get(distributor, k string) ([]byte, error) {
	var v []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(distributor))
		if b == nil {
			return nil
		}
		v = b.Get([]byte(k))
		return nil
	})

	return v, err
}

// setUint32 stores a draw id under a named key in a distributor's bucket.
func (d *boltDB) setUint32(distributor, k string, v uint32) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(distributor))
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", distributor, err)
		}
		return b.Put([]byte(k), marshalUint32(v))
	})
}

// setUint32AsKey stores a draw id as a key (for efficient range scans).
func (d *boltDB) setUint32AsKey(distributor string, v uint32) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(distributor))
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", distributor, err)
		}
		return b.Put(marshalUint32(v), nil)
	})
}

// forEachDrawID calls fn for every id in [lower, upper]. The counter is
// widened to uint64 so an upper bound of MaxUint32 cannot wrap the loop.
func forEachDrawID(lower, upper uint32, fn func(uint32)) {
	for i := uint64(lower); i <= uint64(upper); i++ {
		fn(uint32(i))
	}
}

func unmarshalUint32(b []byte) uint32 {
	return sortableOrder.Uint32(b)
}

func marshalUint32(v uint32) []byte {
	b := make([]byte, drawKeyLen)
	sortableOrder.PutUint32(b, v)
	return b
}

func (d *boltDB) SetLowerBound(distributor string, v uint32) error {
	return d.setUint32(distributor, lowerBoundKey, v)
}

func (d *boltDB) GetLowerBound(distributor string) (uint32, error) {
	v, err := d.get(distributor, lowerBoundKey)
	if err != nil {
		return 0, err
	}

	if v == nil {
		return 0, nil
	}

	return unmarshalUint32(v), nil
}

func (d *boltDB) SetUpperBound(distributor string, v uint32) error {
	return d.setUint32(distributor, upperBoundKey, v)
}

func (d *boltDB) GetUpperBound(distributor string) (uint32, error) {
	v, err := d.get(distributor, upperBoundKey)
	if err != nil {
		return 0, err
	}

	if v == nil {
		return 0, nil
	}

	return unmarshalUint32(v), nil
}

func (d *boltDB) SetProcessed(distributor string, v uint32) error {
	return d.setUint32AsKey(distributor, v)
}

// GetMissingValuesBitSet returns a bitset indicating which draw ids in the
// range are missing. The bitset starts with every id in range set, then bits
// are cleared for ids present in the distributor's bucket.
func (d *boltDB) GetMissingValuesBitSet(distributor string, lowerBound, upperBound uint32) (*bitset.BitSet, error) {
	var b bitset.BitSet

	err := d.db.View(func(tx *bolt.Tx) error {
		forEachDrawID(lowerBound, upperBound, func(id uint32) {
			b.Set(uint(id))
		})

		bucket := tx.Bucket([]byte(distributor))
		if bucket == nil {
			return nil
		}

		lowerRaw := marshalUint32(lowerBound)
		upperRaw := marshalUint32(upperBound)

		c := bucket.Cursor()
		for k, _ := c.Seek(lowerRaw); k != nil && bytes.Compare(k, upperRaw) <= 0; k, _ = c.Next() {
			// Only process draw id keys, not metadata keys
			if len(k) == drawKeyLen {
				b.Clear(uint(unmarshalUint32(k)))
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &b, nil
}

// Cleanup removes draw entries below the distributor's current lower bound.
func (d *boltDB) Cleanup(distributor string) error {
	lowerBound, err := d.GetLowerBound(distributor)
	if err != nil {
		return err
	}

	if lowerBound == 0 {
		return nil
	}

	target := marshalUint32(lowerBound - 1)

	return d.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(distributor))
		if bucket == nil {
			return nil
		}

		c := bucket.Cursor()
		for k, _ := c.First(); k != nil && bytes.Compare(k, target) <= 0; k, _ = c.Next() {
			if len(k) == drawKeyLen {
				if err := bucket.Delete(k); err != nil {
					return err
				}
			}
		}

		return nil
	})
}
