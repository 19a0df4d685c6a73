// Package store is the durable block state store. Each block owns an
// overlay of key/values keyed by its id; readers walk the ancestor chain
// so sibling forks never observe each other's writes.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/ledger"
	"github.com/quartzlabs/quartzcore/lib/cache"
	"github.com/quartzlabs/quartzcore/lib/crypto/hash"
	"github.com/quartzlabs/quartzcore/lib/storage/kvdb"
)

const (
	blockKeyPrefix = "b/"
	dataKeyPrefix  = "d/"

	// BucketSeperator separator between bucket and raw key
	BucketSeperator = "/"
	// DelFlag marks a deleted key inside a block overlay
	DelFlag = "\x00"

	blockCacheSize = 1024
)

var (
	// ErrBlockNotFound is returned for unknown block ids.
	ErrBlockNotFound = errors.New("block not found")
	// ErrBlockSealed rejects writes into a sealed block.
	ErrBlockSealed = errors.New("block already sealed")
	// ErrBlockNotSealed rejects reading through an unsealed ancestor.
	ErrBlockNotSealed = errors.New("block not sealed")
)

// BlockRecord is the persisted metadata of one block overlay.
type BlockRecord struct {
	Parent ledger.BlockID `json:"parent"`
	Height int64          `json:"height"`
	Root   []byte         `json:"root,omitempty"`
	Sealed bool           `json:"sealed"`
}

// VersionedStore keeps block overlays in a kv database.
type VersionedStore struct {
	db kvdb.Database

	mutex  sync.Mutex
	blocks *cache.LRUCache
}

// NewVersionedStore wraps an opened kv database.
func NewVersionedStore(db kvdb.Database) (*VersionedStore, error) {
	blocks, err := cache.NewLRUCache(blockCacheSize)
	if err != nil {
		return nil, err
	}
	return &VersionedStore{
		db:     db,
		blocks: blocks,
	}, nil
}

func blockKey(id ledger.BlockID) []byte {
	return append([]byte(blockKeyPrefix), id.Bytes()...)
}

func dataKey(id ledger.BlockID, rawKey []byte) []byte {
	k := append([]byte(dataKeyPrefix), id.Bytes()...)
	return append(k, rawKey...)
}

func makeRawKey(bucket string, key []byte) []byte {
	k := append([]byte(bucket), []byte(BucketSeperator)...)
	return append(k, key...)
}

// prefixUpperBound returns the smallest key greater than every key with
// the given prefix, nil if no such key exists.
func prefixUpperBound(prefix []byte) []byte {
	limit := append([]byte{}, prefix...)
	for i := len(limit) - 1; i >= 0; i-- {
		if limit[i] < 0xff {
			limit[i]++
			return limit[:i+1]
		}
	}
	return nil
}

// GetBlock loads one block record.
func (s *VersionedStore) GetBlock(id ledger.BlockID) (*BlockRecord, error) {
	if v, ok := s.blocks.Get(string(id.Bytes())); ok {
		return v.(*BlockRecord), nil
	}
	ok, err := s.db.Has(blockKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrBlockNotFound, "%x", id.Bytes())
	}
	raw, err := s.db.Get(blockKey(id))
	if err != nil {
		return nil, err
	}
	rec := new(BlockRecord)
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, errors.Wrap(err, "parse block record")
	}
	if rec.Sealed {
		s.blocks.Add(string(id.Bytes()), rec)
	}
	return rec, nil
}

func (s *VersionedStore) putBlock(id ledger.BlockID, rec *BlockRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.db.Put(blockKey(id), raw); err != nil {
		return err
	}
	if rec.Sealed {
		s.blocks.Add(string(id.Bytes()), rec)
	} else {
		s.blocks.Del(string(id.Bytes()))
	}
	return nil
}

// CreateBlock opens a new unsealed overlay on top of parent. Opening a
// block under an unknown parent is a caller bug, it panics the same way
// appending to a missing chain head would.
func (s *VersionedStore) CreateBlock(parent, id ledger.BlockID, height int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.GetBlock(id); err == nil {
		return errors.Errorf("block %x already exists", id.Bytes())
	}
	if !parent.IsSentinel() {
		rec, err := s.GetBlock(parent)
		if err != nil {
			panic(fmt.Sprintf("begin block: parent %x missing", parent.Bytes()))
		}
		if !rec.Sealed {
			return errors.Wrapf(ErrBlockNotSealed, "parent %x", parent.Bytes())
		}
		if height != rec.Height+1 {
			return errors.Errorf("bad height %d on parent height %d", height, rec.Height)
		}
	} else if height != 0 {
		return errors.Errorf("genesis block must open at height 0, got %d", height)
	}

	return s.putBlock(id, &BlockRecord{
		Parent: parent,
		Height: height,
	})
}

// PutBlockData folds a write set into an unsealed block overlay.
func (s *VersionedStore) PutBlockData(id ledger.BlockID, wset []*ledger.PureData) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec, err := s.GetBlock(id)
	if err != nil {
		return err
	}
	if rec.Sealed {
		return errors.Wrapf(ErrBlockSealed, "%x", id.Bytes())
	}

	batch := s.db.NewBatch()
	for _, w := range wset {
		if err := batch.Put(dataKey(id, makeRawKey(w.GetBucket(), w.GetKey())), w.GetValue()); err != nil {
			return err
		}
	}
	return batch.Write()
}

// SealBlock freezes the overlay and commits to its contents: the root is
// the hash of the parent root chained with every write in key order.
func (s *VersionedStore) SealBlock(id ledger.BlockID) ([]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec, err := s.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if rec.Sealed {
		return nil, errors.Wrapf(ErrBlockSealed, "%x", id.Bytes())
	}

	var parentRoot []byte
	if !rec.Parent.IsSentinel() {
		parentRec, err := s.GetBlock(rec.Parent)
		if err != nil {
			return nil, err
		}
		parentRoot = parentRec.Root
	}

	type kv struct {
		key   []byte
		value []byte
	}
	var entries []kv
	iter := s.db.NewIteratorWithPrefix(dataKey(id, nil))
	for iter.Next() {
		entries = append(entries, kv{
			key:   append([]byte{}, iter.Key()...),
			value: append([]byte{}, iter.Value()...),
		})
	}
	err = iter.Error()
	iter.Release()
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})

	buf := append([]byte{}, parentRoot...)
	for _, e := range entries {
		buf = append(buf, hash.UsingSha256(append(e.key, e.value...))...)
	}
	root := hash.UsingSha256(buf)

	rec.Root = root
	rec.Sealed = true
	if err := s.putBlock(id, rec); err != nil {
		return nil, err
	}
	return root, nil
}

// BlockHeight reports the height of a known block.
func (s *VersionedStore) BlockHeight(id ledger.BlockID) (int64, error) {
	rec, err := s.GetBlock(id)
	if err != nil {
		return 0, err
	}
	return rec.Height, nil
}

// Reader exposes the state as of block id, its own overlay included,
// as an XMReader for transaction scopes.
func (s *VersionedStore) Reader(id ledger.BlockID) ledger.XMReader {
	return &storeReader{store: s, head: id}
}

type storeReader struct {
	store *VersionedStore
	head  ledger.BlockID
}

// Get walks the ancestor chain from head down to genesis and returns the
// newest version of the key.
func (r *storeReader) Get(bucket string, key []byte) (*ledger.VersionedData, error) {
	rawKey := makeRawKey(bucket, key)
	for id := r.head; !id.IsSentinel(); {
		rec, err := r.store.GetBlock(id)
		if err != nil {
			return nil, err
		}
		dk := dataKey(id, rawKey)
		ok, err := r.store.db.Has(dk)
		if err != nil {
			return nil, err
		}
		if ok {
			value, err := r.store.db.Get(dk)
			if err != nil {
				return nil, err
			}
			return &ledger.VersionedData{
				PureData: &ledger.PureData{
					Bucket: bucket,
					Key:    key,
					Value:  value,
				},
				RefBlockID: id,
			}, nil
		}
		id = rec.Parent
	}
	return nil, contract.ErrNotFound
}

// Select materializes the merged range once and iterates it. Overlays
// apply oldest to newest so later blocks shadow earlier ones.
func (r *storeReader) Select(bucket string, startKey []byte, endKey []byte) (ledger.XMIterator, error) {
	// collect the chain head..genesis then replay genesis..head
	var chain []ledger.BlockID
	for id := r.head; !id.IsSentinel(); {
		rec, err := r.store.GetBlock(id)
		if err != nil {
			return nil, err
		}
		chain = append(chain, id)
		id = rec.Parent
	}

	rawStart := makeRawKey(bucket, startKey)

	merged := make(map[string]*ledger.VersionedData)
	for i := len(chain) - 1; i >= 0; i-- {
		id := chain[i]
		prefix := dataKey(id, nil)
		// a nil endKey means the whole bucket, bound the range at the
		// successor of the bucket prefix instead of an empty raw end
		var limit []byte
		if endKey == nil {
			limit = prefixUpperBound(dataKey(id, makeRawKey(bucket, nil)))
		} else {
			limit = dataKey(id, makeRawKey(bucket, endKey))
		}
		iter := r.store.db.NewIteratorWithRange(dataKey(id, rawStart), limit)
		for iter.Next() {
			rawKey := append([]byte{}, iter.Key()[len(prefix):]...)
			value := append([]byte{}, iter.Value()...)
			merged[string(rawKey)] = &ledger.VersionedData{
				PureData: &ledger.PureData{
					Bucket: bucket,
					Key:    rawKey[len(bucket)+len(BucketSeperator):],
					Value:  value,
				},
				RefBlockID: id,
			}
		}
		err := iter.Error()
		iter.Release()
		if err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &mergedIterator{keys: keys, data: merged, pos: -1}, nil
}

type mergedIterator struct {
	keys []string
	data map[string]*ledger.VersionedData
	pos  int
}

func (m *mergedIterator) Next() bool {
	m.pos++
	return m.pos < len(m.keys)
}

func (m *mergedIterator) Key() []byte {
	if m.pos < 0 || m.pos >= len(m.keys) {
		return nil
	}
	return []byte(m.keys[m.pos])
}

func (m *mergedIterator) Value() *ledger.VersionedData {
	if m.pos < 0 || m.pos >= len(m.keys) {
		return nil
	}
	return m.data[m.keys[m.pos]]
}

func (m *mergedIterator) Error() error { return nil }

func (m *mergedIterator) Close() {}
