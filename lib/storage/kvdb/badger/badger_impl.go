package badger

import (
	"bytes"

	"github.com/dgraph-io/badger/v3"

	"github.com/quartzlabs/quartzcore/lib/storage/kvdb"
)

// BadgerDatabase wraps a badger instance behind the kvdb.Database contract
type BadgerDatabase struct {
	fn string
	db *badger.DB
}

func init() {
	kvdb.Register(kvdb.KVEngineTypeBadger, NewKVDBInstance)
}

// NewKVDBInstance opens a badger instance using KVParameter
func NewKVDBInstance(param *kvdb.KVParameter) (kvdb.Database, error) {
	baseDB := new(BadgerDatabase)
	err := baseDB.Open(param.GetDBPath(), nil)
	if err != nil {
		return nil, err
	}
	return baseDB, nil
}

func (bdb *BadgerDatabase) Open(path string, options map[string]interface{}) error {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return err
	}
	bdb.fn = path
	bdb.db = db
	return nil
}

func (bdb *BadgerDatabase) Path() string {
	return bdb.fn
}

func (bdb *BadgerDatabase) Put(key []byte, value []byte) error {
	return bdb.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (bdb *BadgerDatabase) Get(key []byte) ([]byte, error) {
	var val []byte
	err := bdb.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (bdb *BadgerDatabase) Has(key []byte) (bool, error) {
	_, err := bdb.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (bdb *BadgerDatabase) Delete(key []byte) error {
	return bdb.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (bdb *BadgerDatabase) Close() {
	bdb.db.Close()
}

func (bdb *BadgerDatabase) NewBatch() kvdb.Batch {
	return &badgerBatch{wb: bdb.db.NewWriteBatch()}
}

func (bdb *BadgerDatabase) NewIteratorWithRange(start []byte, limit []byte) kvdb.Iterator {
	txn := bdb.db.NewTransaction(false)
	iter := txn.NewIterator(badger.DefaultIteratorOptions)
	iter.Seek(start)
	return &badgerIterator{txn: txn, iter: iter, limit: limit, first: true}
}

func (bdb *BadgerDatabase) NewIteratorWithPrefix(prefix []byte) kvdb.Iterator {
	txn := bdb.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := txn.NewIterator(opts)
	iter.Seek(prefix)
	return &badgerIterator{txn: txn, iter: iter, first: true}
}

type badgerBatch struct {
	wb   *badger.WriteBatch
	size int
}

func (b *badgerBatch) Put(key []byte, value []byte) error {
	b.size += len(value)
	return b.wb.Set(append([]byte{}, key...), append([]byte{}, value...))
}

func (b *badgerBatch) Delete(key []byte) error {
	b.size++
	return b.wb.Delete(append([]byte{}, key...))
}

func (b *badgerBatch) Write() error {
	return b.wb.Flush()
}

func (b *badgerBatch) Reset() {
	b.wb.Cancel()
	b.size = 0
}

func (b *badgerBatch) ValueSize() int {
	return b.size
}

type badgerIterator struct {
	txn   *badger.Txn
	iter  *badger.Iterator
	limit []byte
	first bool
	err   error
}

func (it *badgerIterator) Next() bool {
	if !it.first {
		it.iter.Next()
	}
	it.first = false
	if !it.iter.Valid() {
		return false
	}
	if it.limit != nil && bytes.Compare(it.iter.Item().Key(), it.limit) >= 0 {
		return false
	}
	return true
}

func (it *badgerIterator) Key() []byte {
	return it.iter.Item().KeyCopy(nil)
}

func (it *badgerIterator) Value() []byte {
	val, err := it.iter.Item().ValueCopy(nil)
	if err != nil {
		it.err = err
	}
	return val
}

func (it *badgerIterator) Error() error {
	return it.err
}

func (it *badgerIterator) Release() {
	it.iter.Close()
	it.txn.Discard()
}
