// Package state sequences blocks and transaction scopes over the
// backing store. A Manager opens block handles; each StateConnection
// runs contract operations against its block's pending overlay and
// seals the overlay on commit.
package state

import (
	"math"

	"github.com/pkg/errors"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/contract/sandbox"
	"github.com/quartzlabs/quartzcore/kernel/ledger"
	"github.com/quartzlabs/quartzcore/kernel/principal"
	"github.com/quartzlabs/quartzcore/lib/logs"
)

// BlockStore is the durable backing store contract. bcs/store provides
// the kv-backed implementation.
type BlockStore interface {
	CreateBlock(parent, id ledger.BlockID, height int64) error
	PutBlockData(id ledger.BlockID, wset []*ledger.PureData) error
	SealBlock(id ledger.BlockID) ([]byte, error)
	BlockHeight(id ledger.BlockID) (int64, error)
	Reader(id ledger.BlockID) ledger.XMReader
}

// ManagerConfig assembles a block transaction manager.
type ManagerConfig struct {
	ChainName string
	Store     BlockStore
	Contract  *contract.ContractConfig
	Logger    logs.Logger
}

// Manager opens block handles over the backing store. At most one open
// block per parent is the caller's responsibility, the manager does not
// serialize opens.
type Manager struct {
	chainName  string
	store      BlockStore
	cfg        *contract.ContractConfig
	network    principal.Network
	memCeiling int64
	log        logs.Logger
}

func NewManager(cfg *ManagerConfig) (*Manager, error) {
	if cfg == nil || cfg.Store == nil || cfg.Logger == nil {
		return nil, errors.New("new state manager: missing config")
	}
	ccfg := cfg.Contract
	if ccfg == nil {
		ccfg = contract.DefaultContractConfig()
	}
	memCeiling, err := ccfg.MemoryCeilingBytes()
	if err != nil {
		return nil, err
	}
	network := principal.NetworkTestnet
	if ccfg.Network == "mainnet" {
		network = principal.NetworkMainnet
	}
	chainName := cfg.ChainName
	if chainName == "" {
		chainName = "qcore"
	}
	return &Manager{
		chainName:  chainName,
		store:      cfg.Store,
		cfg:        ccfg,
		network:    network,
		memCeiling: memCeiling,
		log:        cfg.Logger,
	}, nil
}

// BeginGenesisBlock opens the first block over the empty store.
func (m *Manager) BeginGenesisBlock(childID ledger.BlockID, headerDB ledger.HeaderReader, burnDB ledger.BurnReader) (*StateConnection, error) {
	return m.beginBlock(ledger.SentinelBlockID, childID, 0, headerDB, burnDB)
}

// BeginTestGenesisBlock opens the genesis block with every execution
// ceiling lifted, so chain-start installation is never budget bound.
func (m *Manager) BeginTestGenesisBlock(childID ledger.BlockID, headerDB ledger.HeaderReader, burnDB ledger.BurnReader) (*StateConnection, error) {
	conn, err := m.beginBlock(ledger.SentinelBlockID, childID, 0, headerDB, burnDB)
	if err != nil {
		return nil, err
	}
	conn.costCeiling = contract.MaxLimits
	conn.memCeiling = math.MaxInt64
	return conn, nil
}

// BeginBlock opens a block whose initial state equals the parent's
// committed state. A missing parent is a caller configuration error and
// panics inside the store rather than returning.
func (m *Manager) BeginBlock(parentID, childID ledger.BlockID, headerDB ledger.HeaderReader, burnDB ledger.BurnReader) (*StateConnection, error) {
	height, err := m.store.BlockHeight(parentID)
	if err != nil {
		panic("begin block: parent state missing: " + err.Error())
	}
	return m.beginBlock(parentID, childID, height+1, headerDB, burnDB)
}

func (m *Manager) beginBlock(parentID, childID ledger.BlockID, height int64, headerDB ledger.HeaderReader, burnDB ledger.BurnReader) (*StateConnection, error) {
	// the header reader is authoritative for the builtins; it has to
	// agree with the chain the store derives heights from
	var timestamp int64
	if headerDB != nil {
		info, err := headerDB.GetHeaderInfo(childID)
		if err != nil {
			return nil, errors.Wrapf(err, "begin block: header for %x", childID.Bytes())
		}
		if info.Height != height {
			return nil, errors.Errorf("header height %d does not match chain height %d", info.Height, height)
		}
		timestamp = info.Timestamp
	}

	if err := m.store.CreateBlock(parentID, childID, height); err != nil {
		return nil, err
	}

	var burnHeight int64
	if burnDB != nil {
		info, err := burnDB.GetBurnInfo(childID)
		if err == nil {
			burnHeight = info.BurnHeight
		}
	}

	pending := sandbox.NewCache(&contract.SandboxConfig{
		XMReader: m.store.Reader(parentID),
	})
	m.log.Debug("block opened", "chain", m.chainName, "height", height)
	return &StateConnection{
		mgr:         m,
		blockID:     childID,
		parentID:    parentID,
		height:      height,
		timestamp:   timestamp,
		burnHeight:  burnHeight,
		costCeiling: m.cfg.CostCeiling(),
		memCeiling:  m.memCeiling,
		pending:     pending,
	}, nil
}
