// 账本约束数据结构定义
package ledger

// BlockIDSize is the width of a block identifier hash.
const BlockIDSize = 32

// BlockID identifies one block of state in the backing store.
type BlockID [BlockIDSize]byte

// SentinelBlockID is the distinguished "no parent" id used when opening
// the genesis block.
var SentinelBlockID = BlockID{}

func (id BlockID) IsSentinel() bool {
	return id == SentinelBlockID
}

func (id BlockID) Bytes() []byte {
	out := make([]byte, BlockIDSize)
	copy(out, id[:])
	return out
}

// NewBlockID builds a BlockID from raw bytes, truncating or zero padding
// to the fixed width.
func NewBlockID(raw []byte) BlockID {
	var id BlockID
	copy(id[:], raw)
	return id
}

// XMSnapshotReader 只读快照，Get得到的是纯value
type XMSnapshotReader interface {
	Get(bucket string, key []byte) ([]byte, error)
}

// XMReader 为某个区块状态的读接口集合，
// 合约通过XMReader构造StateSandbox，从而生成读写集
type XMReader interface {
	//读取一个key的值，返回的value就是有版本的data
	Get(bucket string, key []byte) (*VersionedData, error)
	//扫描一个bucket中所有的kv, 调用者可以设置key区间[startKey, endKey)
	Select(bucket string, startKey []byte, endKey []byte) (XMIterator, error)
}

// XMIterator iterates over key/value pairs in key order
type XMIterator interface {
	Key() []byte
	Value() *VersionedData
	Next() bool
	Error() error
	// Iterator 必须在使用完毕后关闭
	Close()
}

// HeaderReader resolves block header information for height and epoch
// dependent builtins. It is a read-only collaborator threaded through
// every execution context that needs it; there is no process singleton.
type HeaderReader interface {
	GetHeaderInfo(blockID BlockID) (*HeaderInfo, error)
}

// BurnReader resolves burn-chain state for one block.
type BurnReader interface {
	GetBurnInfo(blockID BlockID) (*BurnInfo, error)
}

// HeaderInfo is the subset of a block header visible to contracts.
type HeaderInfo struct {
	Height    int64
	Timestamp int64
}

// BurnInfo is the subset of burn-chain state visible to contracts.
type BurnInfo struct {
	BurnHeight int64
}

type PureData struct {
	Bucket string
	Key    []byte
	Value  []byte
}

func (t *PureData) GetBucket() string {
	if t == nil {
		return ""
	}
	return t.Bucket
}

func (t *PureData) GetKey() []byte {
	if t == nil {
		return nil
	}
	return t.Key
}

func (t *PureData) GetValue() []byte {
	if t == nil {
		return nil
	}
	return t.Value
}

// VersionedData couples a pure key/value with the block that produced it.
type VersionedData struct {
	PureData *PureData
	// RefBlockID is the id of the block whose overlay produced this value,
	// zero for data that never left a pending overlay.
	RefBlockID BlockID
	RefOffset  int32
}

func (t *VersionedData) GetPureData() *PureData {
	if t == nil {
		return nil
	}
	return t.PureData
}

func (t *VersionedData) GetRefBlockID() BlockID {
	if t == nil {
		return BlockID{}
	}
	return t.RefBlockID
}

func (t *VersionedData) GetRefOffset() int32 {
	if t == nil {
		return 0
	}
	return t.RefOffset
}
