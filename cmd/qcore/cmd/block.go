package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quartzlabs/quartzcore/kernel/ledger"
	"github.com/quartzlabs/quartzcore/lib/storage/kvdb"
)

type BlockCmd struct {
	BaseCmd
}

// GetBlockCmd builds the block inspection command group.
func GetBlockCmd() *BlockCmd {
	blockCmdIns := new(BlockCmd)

	var dbPath string
	var engine string

	blockCmdIns.cmd = &cobra.Command{
		Use:           "block <command>",
		Short:         "Inspect blocks in a state store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	blockCmdIns.cmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "",
		"state store database path")
	blockCmdIns.cmd.PersistentFlags().StringVarP(&engine, "engine", "e", kvdb.KVEngineTypeLDB,
		"kv engine type (leveldb|badger)")

	var blockHex string
	infoCmd := &cobra.Command{
		Use:           "info",
		Short:         "Print one block's record.",
		Example:       "qcore block info --db ./data/state --block 0a1b...",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return blockInfo(dbPath, engine, blockHex)
		},
	}
	infoCmd.Flags().StringVarP(&blockHex, "block", "b", "", "block id in hex")

	var getBlockHex, getBucket, getKey string
	getCmd := &cobra.Command{
		Use:           "get",
		Short:         "Read one key as of a block.",
		Example:       "qcore block get --db ./data/state --block 0a1b... --bucket balances --key alice",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return blockGet(dbPath, engine, getBlockHex, getBucket, getKey)
		},
	}
	getCmd.Flags().StringVarP(&getBlockHex, "block", "b", "", "block id in hex")
	getCmd.Flags().StringVarP(&getBucket, "bucket", "t", "", "bucket name")
	getCmd.Flags().StringVarP(&getKey, "key", "k", "", "key")

	blockCmdIns.cmd.AddCommand(infoCmd, getCmd)
	return blockCmdIns
}

func parseBlockID(blockHex string) (ledger.BlockID, error) {
	raw, err := hex.DecodeString(blockHex)
	if err != nil {
		return ledger.BlockID{}, errors.Wrapf(err, "parse block id %q", blockHex)
	}
	if len(raw) > ledger.BlockIDSize {
		return ledger.BlockID{}, errors.Errorf("block id %q too long", blockHex)
	}
	return ledger.NewBlockID(raw), nil
}

func blockInfo(dbPath, engine, blockHex string) error {
	log, err := openLogger()
	if err != nil {
		return err
	}
	id, err := parseBlockID(blockHex)
	if err != nil {
		return err
	}
	vs, db, err := openStore(dbPath, engine)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Debug("state store opened", "db", dbPath, "engine", engine)

	rec, err := vs.GetBlock(id)
	if err != nil {
		return err
	}
	fmt.Printf("block:  %x\n", id.Bytes())
	fmt.Printf("parent: %x\n", rec.Parent.Bytes())
	fmt.Printf("height: %d\n", rec.Height)
	fmt.Printf("sealed: %v\n", rec.Sealed)
	if rec.Sealed {
		fmt.Printf("root:   %x\n", rec.Root)
	}
	return nil
}

func blockGet(dbPath, engine, blockHex, bucket, key string) error {
	log, err := openLogger()
	if err != nil {
		return err
	}
	id, err := parseBlockID(blockHex)
	if err != nil {
		return err
	}
	if bucket == "" || key == "" {
		return errors.New("bucket and key are required")
	}
	vs, db, err := openStore(dbPath, engine)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Debug("state store opened", "db", dbPath, "engine", engine)

	vd, err := vs.Reader(id).Get(bucket, []byte(key))
	if err != nil {
		return err
	}
	fmt.Printf("block: %x\n", vd.GetRefBlockID().Bytes())
	fmt.Printf("value: %s\n", vd.GetPureData().GetValue())
	return nil
}
