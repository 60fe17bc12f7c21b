package bolt

import (
	"encoding/binary"
	"errors"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/bindmgr/internal/dns/common/clock"
	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist"
)

var (
	bucketDomains = []byte("domains")
	bucketMeta    = []byte("meta")

	keyVersion = []byte("version")
	keyUpdated = []byte("updated")
)

// boltStore implements blocklist.Store using bbolt. Keys are canonical names;
// values are the added time (unix nanoseconds, big endian) followed by the source.
type boltStore struct {
	db    *bbolt.DB
	clock clock.Clock
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string, clk clock.Clock) (blocklist.Store, error) {
	if clk == nil {
		clk = clock.RealClock{}
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, domain.Wrap(domain.KindIOFailure, "open blocklist store", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketDomains); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, domain.Wrap(domain.KindIOFailure, "open blocklist store", err)
	}
	return &boltStore{db: db, clock: clk}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

func encodeValue(z domain.BlockedZone) []byte {
	buf := make([]byte, 8, 8+len(z.Source))
	binary.BigEndian.PutUint64(buf, uint64(z.AddedAt.UnixNano()))
	return append(buf, z.Source...)
}

func decodeValue(name string, v []byte) (domain.BlockedZone, error) {
	if len(v) < 8 {
		return domain.BlockedZone{}, errors.New("corrupt blocklist entry for " + name)
	}
	return domain.BlockedZone{
		Name:      name,
		Mechanism: domain.MechanismRPZ,
		AddedAt:   time.Unix(0, int64(binary.BigEndian.Uint64(v[:8]))).UTC(),
		Source:    string(v[8:]),
	}, nil
}

// touch bumps the version and records the write time.
func (s *boltStore) touch(tx *bbolt.Tx) error {
	b := tx.Bucket(bucketMeta)
	var version uint64
	if v := b.Get(keyVersion); len(v) == 8 {
		version = binary.BigEndian.Uint64(v)
	}
	vbuf := make([]byte, 8)
	ubuf := make([]byte, 8)
	binary.BigEndian.PutUint64(vbuf, version+1)
	binary.BigEndian.PutUint64(ubuf, uint64(s.clock.Now().Unix()))
	if err := b.Put(keyVersion, vbuf); err != nil {
		return err
	}
	return b.Put(keyUpdated, ubuf)
}

// Put stores zones whose names are not present yet, keeping existing entries.
func (s *boltStore) Put(zones ...domain.BlockedZone) (int, error) {
	added := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDomains)
		for _, z := range zones {
			key := []byte(utils.CanonicalDNSName(z.Name))
			if len(key) == 0 || b.Get(key) != nil {
				continue
			}
			if err := b.Put(key, encodeValue(z)); err != nil {
				return err
			}
			added++
		}
		if added == 0 {
			return nil
		}
		return s.touch(tx)
	})
	if err != nil {
		return 0, domain.Wrap(domain.KindIOFailure, "store blocked domains", err)
	}
	return added, nil
}

func (s *boltStore) Delete(name string) (bool, error) {
	var found bool
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDomains)
		key := []byte(name)
		if b.Get(key) == nil {
			return nil
		}
		found = true
		if err := b.Delete(key); err != nil {
			return err
		}
		return s.touch(tx)
	})
	if err != nil {
		return false, domain.Wrap(domain.KindIOFailure, "delete blocked domain", err)
	}
	return found, nil
}

func (s *boltStore) Get(name string) (domain.BlockedZone, bool, error) {
	var (
		z     domain.BlockedZone
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketDomains).Get([]byte(name))
		if v == nil {
			return nil
		}
		var err error
		z, err = decodeValue(name, v)
		found = err == nil
		return err
	})
	return z, found, err
}

// FirstMatch walks name and its parents, most specific first.
func (s *boltStore) FirstMatch(name string) (domain.BlockedZone, bool, error) {
	var (
		z     domain.BlockedZone
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDomains)
		for _, p := range utils.ParentDomains(name) {
			v := b.Get([]byte(p))
			if v == nil {
				continue
			}
			var err error
			z, err = decodeValue(p, v)
			found = err == nil
			return err
		}
		return nil
	})
	return z, found, err
}

// List returns every entry in key order.
func (s *boltStore) List() ([]domain.BlockedZone, error) {
	out := []domain.BlockedZone{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDomains).ForEach(func(k, v []byte) error {
			z, err := decodeValue(string(k), v)
			if err != nil {
				return err
			}
			out = append(out, z)
			return nil
		})
	})
	if err != nil {
		return nil, domain.Wrap(domain.KindIOFailure, "list blocked domains", err)
	}
	return out, nil
}

// ReplaceAll swaps the whole set in one transaction. Entries that survive keep
// their original source and time.
func (s *boltStore) ReplaceAll(zones []domain.BlockedZone) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		old := tx.Bucket(bucketDomains)
		keep := make(map[string][]byte, len(zones))
		for _, z := range zones {
			name := utils.CanonicalDNSName(z.Name)
			if name == "" {
				continue
			}
			if v := old.Get([]byte(name)); v != nil {
				keep[name] = append([]byte(nil), v...)
			} else {
				keep[name] = encodeValue(z)
			}
		}
		if err := tx.DeleteBucket(bucketDomains); err != nil {
			return err
		}
		b, err := tx.CreateBucket(bucketDomains)
		if err != nil {
			return err
		}
		for k, v := range keep {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return s.touch(tx)
	})
	if err != nil {
		return domain.Wrap(domain.KindIOFailure, "replace blocked domains", err)
	}
	return nil
}

func (s *boltStore) Stats() blocklist.StoreStats {
	st := blocklist.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketDomains); b != nil {
			st.Domains = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			if v := b.Get(keyVersion); len(v) == 8 {
				st.Version = binary.BigEndian.Uint64(v)
			}
			if v := b.Get(keyUpdated); len(v) == 8 {
				st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		return nil
	})
	return st
}

var _ blocklist.Store = (*boltStore)(nil)
