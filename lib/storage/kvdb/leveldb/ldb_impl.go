package leveldb

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/quartzlabs/quartzcore/lib/storage/kvdb"
)

// LDBDatabase wraps a goleveldb instance behind the kvdb.Database contract
type LDBDatabase struct {
	fn string
	db *leveldb.DB
}

func init() {
	kvdb.Register(kvdb.KVEngineTypeLDB, NewKVDBInstance)
}

// NewKVDBInstance opens a leveldb instance using KVParameter
func NewKVDBInstance(param *kvdb.KVParameter) (kvdb.Database, error) {
	baseDB := new(LDBDatabase)
	err := baseDB.Open(param.GetDBPath(), map[string]interface{}{
		"cache":     param.GetMemCacheSize(),
		"fds":       param.GetFileHandlersCacheSize(),
		"dataPaths": []string{},
	})
	if err != nil {
		return nil, err
	}
	return baseDB, nil
}

func setDefaultOptions(options map[string]interface{}) {
	if _, ok := options["cache"]; !ok {
		options["cache"] = 16
	}
	if _, ok := options["fds"]; !ok {
		options["fds"] = 16
	}
	if options["cache"].(int) < 16 {
		options["cache"] = 16
	}
	if options["fds"].(int) < 16 {
		options["fds"] = 16
	}
}

// Open opens an instance of LDB with parameters (ldb path and other options)
func (ldb *LDBDatabase) Open(path string, options map[string]interface{}) error {
	setDefaultOptions(options)
	cache := options["cache"].(int)
	fds := options["fds"].(int)

	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: fds,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return err
	}
	ldb.fn = path
	ldb.db = db
	return nil
}

func (ldb *LDBDatabase) Path() string {
	return ldb.fn
}

func (ldb *LDBDatabase) Put(key []byte, value []byte) error {
	return ldb.db.Put(key, value, nil)
}

func (ldb *LDBDatabase) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, nil)
}

func (ldb *LDBDatabase) Get(key []byte) ([]byte, error) {
	dat, err := ldb.db.Get(key, nil)
	if err != nil {
		return nil, err
	}
	return dat, nil
}

func (ldb *LDBDatabase) Delete(key []byte) error {
	return ldb.db.Delete(key, nil)
}

func (ldb *LDBDatabase) Close() {
	ldb.db.Close()
}

func (ldb *LDBDatabase) NewBatch() kvdb.Batch {
	return &ldbBatch{db: ldb.db, b: new(leveldb.Batch)}
}

func (ldb *LDBDatabase) NewIteratorWithRange(start []byte, limit []byte) kvdb.Iterator {
	return &ldbIterator{iter: ldb.db.NewIterator(&util.Range{Start: start, Limit: limit}, nil)}
}

func (ldb *LDBDatabase) NewIteratorWithPrefix(prefix []byte) kvdb.Iterator {
	return &ldbIterator{iter: ldb.db.NewIterator(util.BytesPrefix(prefix), nil)}
}

type ldbBatch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
}

func (b *ldbBatch) Put(key []byte, value []byte) error {
	b.b.Put(key, value)
	b.size += len(value)
	return nil
}

func (b *ldbBatch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size++
	return nil
}

func (b *ldbBatch) Write() error {
	return b.db.Write(b.b, nil)
}

func (b *ldbBatch) Reset() {
	b.b.Reset()
	b.size = 0
}

func (b *ldbBatch) ValueSize() int {
	return b.size
}

type ldbIterator struct {
	iter iterator.Iterator
}

func (it *ldbIterator) Next() bool {
	return it.iter.Next()
}

func (it *ldbIterator) Key() []byte {
	return it.iter.Key()
}

func (it *ldbIterator) Value() []byte {
	return it.iter.Value()
}

func (it *ldbIterator) Error() error {
	return it.iter.Error()
}

func (it *ldbIterator) Release() {
	it.iter.Release()
}
