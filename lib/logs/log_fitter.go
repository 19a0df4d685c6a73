package logs

import (
	"fmt"
	"os"
	"sync"

	"github.com/quartzlabs/quartzcore/lib/utils"
)

// Reserve common key
const (
	CommFieldLogId = "log_id"
	CommFieldPid   = "pid"
	CommFieldCall  = "call"
)

const DefaultCallDepth = 3

// 底层日志库约束接口
type LogDriver interface {
	Error(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
}

// Logger 在日志库之上做一层轻量级封装，方便日志字段组装和日志库替换
type Logger interface {
	Error(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
}

// LogFitter stamps every record with the log id, the caller and the pid.
type LogFitter struct {
	logger LogDriver
	logId  string
	pid    int

	mutex      sync.RWMutex
	commFields []interface{}
}

func NewLogger(logger LogDriver, logId string) (*LogFitter, error) {
	if logger == nil {
		return nil, fmt.Errorf("new logger param error")
	}
	if logId == "" {
		logId = utils.GenLogId()
	}
	return &LogFitter{
		logger: logger,
		logId:  logId,
		pid:    os.Getpid(),
	}, nil
}

// SetCommField appends a key/value stamped onto every later record.
func (t *LogFitter) SetCommField(key string, value interface{}) {
	if key == "" || value == nil {
		return
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.commFields = append(t.commFields, key, value)
}

func (t *LogFitter) Error(msg string, ctx ...interface{}) {
	t.logger.Error(msg, t.fmtFields(ctx...)...)
}

func (t *LogFitter) Warn(msg string, ctx ...interface{}) {
	t.logger.Warn(msg, t.fmtFields(ctx...)...)
}

func (t *LogFitter) Info(msg string, ctx ...interface{}) {
	t.logger.Info(msg, t.fmtFields(ctx...)...)
}

func (t *LogFitter) Debug(msg string, ctx ...interface{}) {
	t.logger.Debug(msg, t.fmtFields(ctx...)...)
}

func (t *LogFitter) fmtFields(ctx ...interface{}) []interface{} {
	// odd trailing value gets a placeholder key
	if len(ctx)%2 != 0 {
		last := ctx[len(ctx)-1]
		ctx = append(ctx[:len(ctx)-1], "unknow", last)
	}

	fileLine, _ := utils.GetFuncCall(DefaultCallDepth)
	out := make([]interface{}, 0, 6+len(t.commFields)+len(ctx))
	out = append(out, CommFieldLogId, t.logId, CommFieldCall, fileLine, CommFieldPid, t.pid)

	t.mutex.RLock()
	out = append(out, t.commFields...)
	t.mutex.RUnlock()

	return append(out, ctx...)
}
