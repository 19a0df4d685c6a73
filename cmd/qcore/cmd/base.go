package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quartzlabs/quartzcore/bcs/store"
	"github.com/quartzlabs/quartzcore/lib/logs"
	"github.com/quartzlabs/quartzcore/lib/storage/kvdb"
	_ "github.com/quartzlabs/quartzcore/lib/storage/kvdb/badger"
	_ "github.com/quartzlabs/quartzcore/lib/storage/kvdb/leveldb"
	"github.com/quartzlabs/quartzcore/lib/utils"
)

type BaseCmd struct {
	cmd *cobra.Command
}

var logConfPath string

// RegisterRootFlags binds the flags every subcommand shares.
func RegisterRootFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&logConfPath, "logconf", "./conf/log.yaml",
		"log config file")
}

// openLogger builds the command logger from the configured log file,
// console only when the file is absent.
func openLogger() (logs.Logger, error) {
	driver := logs.OpenDefault()
	if utils.FileIsExist(logConfPath) {
		lc, err := logs.LoadLogConf(logConfPath)
		if err != nil {
			return nil, err
		}
		driver, err = logs.OpenLog(lc)
		if err != nil {
			return nil, err
		}
	}
	return logs.NewLogger(driver, utils.GenLogId())
}

func (c *BaseCmd) GetCmd() *cobra.Command {
	return c.cmd
}

func (c *BaseCmd) SetCmd(cmd *cobra.Command) {
	c.cmd = cmd
}

// openStore opens the versioned store over the kv engine at dbPath.
func openStore(dbPath, engine string) (*store.VersionedStore, kvdb.Database, error) {
	db, err := kvdb.CreateKVInstance(&kvdb.KVParameter{
		DBPath:                dbPath,
		KVEngineType:          engine,
		MemCacheSize:          128,
		FileHandlersCacheSize: 512,
	})
	if err != nil {
		return nil, nil, err
	}
	vs, err := store.NewVersionedStore(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return vs, db, nil
}
