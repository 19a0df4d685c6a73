package mock

import (
	"github.com/pkg/errors"

	"github.com/quartzlabs/quartzcore/bcs/store"
	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/ledger"
	"github.com/quartzlabs/quartzcore/kernel/state"
	"github.com/quartzlabs/quartzcore/lib/logs"
	"github.com/quartzlabs/quartzcore/lib/storage/kvdb"
	_ "github.com/quartzlabs/quartzcore/lib/storage/kvdb/leveldb"
	"github.com/quartzlabs/quartzcore/lib/utils"
)

// Header timestamps the chain harness stamps on every block.
const (
	GenesisTime   int64 = 1600000000
	BlockInterval int64 = 600
)

// HeaderDB is an in memory header reader for tests.
type HeaderDB struct {
	headers map[ledger.BlockID]ledger.HeaderInfo
}

func NewHeaderDB() *HeaderDB {
	return &HeaderDB{headers: make(map[ledger.BlockID]ledger.HeaderInfo)}
}

func (h *HeaderDB) SetHeader(id ledger.BlockID, height, timestamp int64) {
	h.headers[id] = ledger.HeaderInfo{Height: height, Timestamp: timestamp}
}

func (h *HeaderDB) GetHeaderInfo(id ledger.BlockID) (*ledger.HeaderInfo, error) {
	info, ok := h.headers[id]
	if !ok {
		return nil, errors.Errorf("no header for block %x", id.Bytes())
	}
	return &info, nil
}

// BurnDB is an in memory burn state reader for tests.
type BurnDB struct {
	heights map[ledger.BlockID]int64
}

func NewBurnDB() *BurnDB {
	return &BurnDB{heights: make(map[ledger.BlockID]int64)}
}

func (b *BurnDB) SetBurnHeight(id ledger.BlockID, height int64) {
	b.heights[id] = height
}

func (b *BurnDB) GetBurnInfo(id ledger.BlockID) (*ledger.BurnInfo, error) {
	height, ok := b.heights[id]
	if !ok {
		return nil, errors.Errorf("no burn info for block %x", id.Bytes())
	}
	return &ledger.BurnInfo{BurnHeight: height}, nil
}

// Chain drives a sequence of blocks over a throwaway store, the harness
// the engine tests build scenarios on.
type Chain struct {
	Manager  *state.Manager
	Store    *store.VersionedStore
	HeaderDB *HeaderDB
	BurnDB   *BurnDB

	db         kvdb.Database
	tip        ledger.BlockID
	counter    byte
	nextHeight int64
}

// NewChain opens a chain harness over a leveldb instance at dir. The
// caller owns dir cleanup; Close releases the database.
func NewChain(dir string, cfg *contract.ContractConfig) (*Chain, error) {
	db, err := kvdb.CreateKVInstance(&kvdb.KVParameter{
		DBPath:                dir,
		KVEngineType:          kvdb.KVEngineTypeLDB,
		MemCacheSize:          32,
		FileHandlersCacheSize: 32,
	})
	if err != nil {
		return nil, err
	}
	vs, err := store.NewVersionedStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger, err := logs.NewLogger(logs.OpenDefault(), utils.GenLogId())
	if err != nil {
		db.Close()
		return nil, err
	}
	mgr, err := state.NewManager(&state.ManagerConfig{
		ChainName: "mockchain",
		Store:     vs,
		Contract:  cfg,
		Logger:    logger,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Chain{
		Manager:  mgr,
		Store:    vs,
		HeaderDB: NewHeaderDB(),
		BurnDB:   NewBurnDB(),
		db:       db,
		tip:      ledger.SentinelBlockID,
	}, nil
}

func (c *Chain) Close() {
	c.db.Close()
}

// Tip is the latest committed block.
func (c *Chain) Tip() ledger.BlockID {
	return c.tip
}

func (c *Chain) nextID() ledger.BlockID {
	c.counter++
	return ledger.NewBlockID([]byte{c.counter})
}

// Begin opens the next block on the tip; the genesis block when nothing
// is committed yet.
func (c *Chain) Begin() (*state.StateConnection, error) {
	id := c.nextID()
	// header and burn info must exist before the block opens
	c.HeaderDB.SetHeader(id, c.nextHeight, GenesisTime+c.nextHeight*BlockInterval)
	c.BurnDB.SetBurnHeight(id, c.nextHeight)

	var conn *state.StateConnection
	var err error
	if c.tip.IsSentinel() {
		conn, err = c.Manager.BeginGenesisBlock(id, c.HeaderDB, c.BurnDB)
	} else {
		conn, err = c.Manager.BeginBlock(c.tip, id, c.HeaderDB, c.BurnDB)
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Commit seals conn and advances the tip.
func (c *Chain) Commit(conn *state.StateConnection) ([]byte, error) {
	root, err := conn.CommitBlock()
	if err != nil {
		return nil, err
	}
	c.tip = conn.BlockID()
	c.nextHeight = conn.BlockHeight() + 1
	return root, nil
}

// AdvanceEmptyBlocks seals n blocks with no transactions.
func (c *Chain) AdvanceEmptyBlocks(n int) error {
	for i := 0; i < n; i++ {
		conn, err := c.Begin()
		if err != nil {
			return err
		}
		if _, err := c.Commit(conn); err != nil {
			return err
		}
	}
	return nil
}
