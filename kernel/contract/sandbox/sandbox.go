// Package sandbox implements the transaction scope: a two level overlay
// cache over a block state reader. Reads fall through outputs, inputs,
// then the backing reader, filling the read set on the way; writes stay
// in the outputs overlay until the scope is folded or discarded.
package sandbox

import (
	"errors"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/ledger"
)

var (
	// ErrHasDel is returned when key was marked as del
	ErrHasDel = errors.New("key has been marked as del")
	// ErrNotFound is returned when key is not found
	ErrNotFound = contract.ErrNotFound
)

var (
	_ contract.StateSandbox = (*Cache)(nil)
)

// Cache is one transaction scope over a parent reader.
type Cache struct {
	// Key: bucket_key; Value: VersionedData
	inputsCache *MemXModel // bucket -> {k1:v1, k2:v2}
	// Key: bucket_key; Value: VersionedData without version
	outputsCache *MemXModel

	model ledger.XMReader

	readOnly bool
	closed   bool
}

// NewCache opens a transaction scope over cfg.XMReader.
func NewCache(cfg *contract.SandboxConfig) *Cache {
	return &Cache{
		model:        cfg.XMReader,
		inputsCache:  NewMemXModel(),
		outputsCache: NewMemXModel(),
		readOnly:     cfg.ReadOnly,
	}
}

// Get 读取一个key的值，先读own写集，再读读集并穿透到model
func (xc *Cache) Get(bucket string, key []byte) ([]byte, error) {
	if xc.closed {
		return nil, contract.ErrSandboxClosed
	}
	// Level1: get from outputsCache
	data, err := xc.getFromOutputsCache(bucket, key)
	if err == ErrHasDel {
		// 本scope内已删除
		return nil, ErrNotFound
	}
	if err != nil && err != ErrNotFound {
		return nil, err
	}

	if err == nil {
		return data.GetPureData().GetValue(), nil
	}

	// Level2: get and set from inputsCache
	verData, err := xc.getAndSetFromInputsCache(bucket, key)
	if err != nil {
		return nil, err
	}
	if IsEmptyVersionedData(verData) {
		return nil, ErrNotFound
	}
	if IsDelFlag(verData.GetPureData().GetValue()) {
		return nil, ErrNotFound
	}
	return verData.GetPureData().GetValue(), nil
}

// Level1 读取，从outputsCache中读取
func (xc *Cache) getFromOutputsCache(bucket string, key []byte) (*ledger.VersionedData, error) {
	data, err := xc.outputsCache.Get(bucket, key)
	if err != nil {
		return nil, err
	}

	if IsDelFlag(data.GetPureData().GetValue()) {
		return nil, ErrHasDel
	}
	return data, nil
}

// Level2 读取，从inputsCache中读取，读取不到会更深一层从model里读取，
// 并将结果填充到读集里
func (xc *Cache) getAndSetFromInputsCache(bucket string, key []byte) (*ledger.VersionedData, error) {
	data, err := xc.inputsCache.Get(bucket, key)
	if err == nil {
		return data, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	data, err = xc.model.Get(bucket, key)
	if err == ErrNotFound {
		data = MakeEmptyVersionedData(bucket, key)
	} else if err != nil {
		return nil, err
	}
	xc.inputsCache.Put(bucket, key, data)
	return data, nil
}

// Put put a pair of <key, value> into the write set
func (xc *Cache) Put(bucket string, key []byte, value []byte) error {
	if xc.closed {
		return contract.ErrSandboxClosed
	}
	if xc.readOnly {
		return contract.ErrWriteNotAllowed
	}
	_, err := xc.getFromOutputsCache(bucket, key)
	if err != nil && err != ErrNotFound && err != ErrHasDel {
		return err
	}

	val := &ledger.VersionedData{
		PureData: &ledger.PureData{
			Key:    key,
			Value:  value,
			Bucket: bucket,
		},
	}
	// put 前先强制get一下，保证读集覆盖写过的key
	xc.Get(bucket, key)
	return xc.outputsCache.Put(bucket, key, val)
}

// Del delete one key from the write set, marked its value as `DelFlag`
func (xc *Cache) Del(bucket string, key []byte) error {
	return xc.Put(bucket, key, []byte(DelFlag))
}

// Select merges the write set, the read set and the backing reader over
// the key range [startKey, endKey)
func (xc *Cache) Select(bucket string, startKey []byte, endKey []byte) (contract.Iterator, error) {
	iter, err := xc.selectVersioned(bucket, startKey, endKey)
	if err != nil {
		return nil, err
	}
	return newContractIterator(iter), nil
}

func (xc *Cache) selectVersioned(bucket string, startKey []byte, endKey []byte) (ledger.XMIterator, error) {
	if xc.closed {
		return nil, contract.ErrSandboxClosed
	}
	iter, err := xc.outputsCache.Select(bucket, startKey, endKey)
	if err != nil {
		return nil, err
	}
	outputIter := iter

	iter, err = xc.inputsCache.Select(bucket, startKey, endKey)
	if err != nil {
		return nil, err
	}
	inputIter := newStripDelIterator(iter)

	backendIter, err := xc.model.Select(bucket, startKey, endKey)
	if err != nil {
		return nil, err
	}
	backendIter = newStripDelIterator(
		newRsetIterator(backendIter, xc),
	)

	// 优先级顺序 outputIter -> inputIter -> backendIter
	// 同一个key在多个迭代器同时出现时，优先级高的覆盖优先级低的
	multiIter := newMultiIterator(inputIter, backendIter)
	multiIter = newMultiIterator(outputIter, multiIter)
	return newStripDelIterator(multiIter), nil
}

// Reader exposes this scope as an XMReader so a nested scope can layer
// on top of it. Reads through the reader still land in this scope's read
// set.
func (xc *Cache) Reader() ledger.XMReader {
	return &cacheReader{xc: xc}
}

type cacheReader struct {
	xc *Cache
}

func (r *cacheReader) Get(bucket string, key []byte) (*ledger.VersionedData, error) {
	data, err := r.xc.getFromOutputsCache(bucket, key)
	if err == nil {
		return data, nil
	}
	if err == ErrHasDel {
		return MakeEmptyVersionedData(bucket, key), nil
	}
	if err != ErrNotFound {
		return nil, err
	}
	return r.xc.getAndSetFromInputsCache(bucket, key)
}

func (r *cacheReader) Select(bucket string, startKey []byte, endKey []byte) (ledger.XMIterator, error) {
	return r.xc.selectVersioned(bucket, startKey, endKey)
}

// RWSet get read/write sets
func (xc *Cache) RWSet() *contract.RWSet {
	readSet := xc.getReadSets()
	writeSet := xc.getWriteSets()

	return &contract.RWSet{
		RSet: readSet,
		WSet: writeSet,
	}
}

func (xc *Cache) getReadSets() []*ledger.VersionedData {
	var readSets []*ledger.VersionedData
	iter := xc.inputsCache.NewIterator()
	defer iter.Close()
	for iter.Next() {
		val := iter.Value()
		readSets = append(readSets, val)
	}
	return readSets
}

func (xc *Cache) getWriteSets() []*ledger.PureData {
	var writeSets []*ledger.PureData
	iter := xc.outputsCache.NewIterator()
	defer iter.Close()
	for iter.Next() {
		val := iter.Value()
		writeSets = append(writeSets, val.GetPureData())
	}
	return writeSets
}

// Flush folds the write set into dst and closes the scope. Delete
// markers propagate as Del so dst applies the same semantics.
func (xc *Cache) Flush(dst contract.XMState) error {
	if xc.closed {
		return contract.ErrSandboxClosed
	}
	for _, w := range xc.getWriteSets() {
		var err error
		if IsDelFlag(w.GetValue()) {
			err = dst.Del(w.GetBucket(), w.GetKey())
		} else {
			err = dst.Put(w.GetBucket(), w.GetKey(), w.GetValue())
		}
		if err != nil {
			return err
		}
	}
	xc.closed = true
	return nil
}

// Discard closes the scope and drops its writes.
func (xc *Cache) Discard() {
	xc.closed = true
}
