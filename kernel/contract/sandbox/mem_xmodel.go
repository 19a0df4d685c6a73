package sandbox

import (
	"bytes"
	"errors"

	"github.com/emirpasic/gods/trees/redblacktree"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/ledger"
)

// MemXModel is an in memory versioned model backed by a red black tree,
// used for overlay caches and read set replay.
type MemXModel struct {
	tree *redblacktree.Tree
}

var _ ledger.XMReader = (*MemXModel)(nil)

func NewMemXModel() *MemXModel {
	tree := redblacktree.NewWith(treeCompare)
	return &MemXModel{
		tree: tree,
	}
}

// XMReaderFromRWSet replays a read set into a reader, used to re-execute
// a scope against exactly the versions it observed.
func XMReaderFromRWSet(rwset *contract.RWSet) ledger.XMReader {
	m := NewMemXModel()
	for _, r := range rwset.RSet {
		m.Put(r.PureData.Bucket, r.PureData.Key, r)
	}
	return m
}

// 读取一个key的值，返回的value就是有版本的data
func (m *MemXModel) Get(bucket string, key []byte) (*ledger.VersionedData, error) {
	buKey := makeRawKey(bucket, key)
	v, ok := m.tree.Get(buKey)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*ledger.VersionedData), nil
}

func (m *MemXModel) Put(bucket string, key []byte, value *ledger.VersionedData) error {
	buKey := makeRawKey(bucket, key)
	m.tree.Put(buKey, value)
	return nil
}

// 扫描一个bucket中所有的kv, 调用者可以设置key区间[startKey, endKey)，
// endKey为nil表示扫描到bucket末尾
func (m *MemXModel) Select(bucket string, startKey []byte, endKey []byte) (ledger.XMIterator, error) {
	if startKey != nil && endKey != nil && bytes.Compare(startKey, endKey) >= 0 {
		return nil, errors.New("bad select range")
	}
	rawStartKey := makeRawKey(bucket, startKey)
	rawEndKey := bucketUpperBound(bucket)
	if endKey != nil {
		rawEndKey = makeRawKey(bucket, endKey)
	}
	return newTreeIterator(m.tree, rawStartKey, rawEndKey), nil
}

// NewIterator iterates the whole model in raw key order.
func (m *MemXModel) NewIterator() ledger.XMIterator {
	return newTreeIterator(m.tree, nil, nil)
}

// treeIterator 把tree的Iterator转换成XMIterator
type treeIterator struct {
	tree  *redblacktree.Tree
	iter  *redblacktree.Iterator
	end   []byte
	first bool
}

func newTreeIterator(tree *redblacktree.Tree, start, end []byte) ledger.XMIterator {
	if start == nil {
		iter := tree.Iterator()
		return &treeIterator{
			tree: tree,
			iter: &iter,
			end:  end,
		}
	}
	startNode, ok := tree.Ceiling(start)
	if !ok {
		return new(treeIterator)
	}
	iter := tree.IteratorAt(startNode)
	return &treeIterator{
		tree:  tree,
		iter:  &iter,
		end:   end,
		first: true,
	}
}

func (t *treeIterator) Next() bool {
	if t.iter == nil {
		return false
	}
	if t.first {
		// IteratorAt已定位到起始节点
		t.first = false
	} else if !t.iter.Next() {
		return false
	}
	if t.end == nil {
		return true
	}
	key := t.iter.Key()
	return t.tree.Comparator(key, t.end) < 0
}

func (t *treeIterator) Key() []byte {
	if t.iter == nil {
		return nil
	}
	return t.iter.Key().([]byte)
}

func (t *treeIterator) Value() *ledger.VersionedData {
	if t.iter == nil {
		return nil
	}
	return t.iter.Value().(*ledger.VersionedData)
}

func (t *treeIterator) Error() error {
	return nil
}

func (t *treeIterator) Close() {
	t.iter = nil
}

func treeCompare(a, b interface{}) int {
	ka := a.([]byte)
	kb := b.([]byte)
	return bytes.Compare(ka, kb)
}
