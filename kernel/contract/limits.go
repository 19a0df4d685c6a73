package contract

// Limits is the five dimensional cost vector tracked while a call
// executes. Each field accumulates independently and the budget aborts
// when any dimension passes its ceiling.
type Limits struct {
	Runtime  int64
	ReadCnt  int64
	ReadLen  int64
	WriteCnt int64
	WriteLen int64
}

// Add accumulates l1 into l.
func (l *Limits) Add(l1 Limits) *Limits {
	l.Runtime += l1.Runtime
	l.ReadCnt += l1.ReadCnt
	l.ReadLen += l1.ReadLen
	l.WriteCnt += l1.WriteCnt
	l.WriteLen += l1.WriteLen
	return l
}

// Sub deducts l1 from l.
func (l *Limits) Sub(l1 Limits) *Limits {
	l.Runtime -= l1.Runtime
	l.ReadCnt -= l1.ReadCnt
	l.ReadLen -= l1.ReadLen
	l.WriteCnt -= l1.WriteCnt
	l.WriteLen -= l1.WriteLen
	return l
}

// Exceed reports whether any dimension of l passes the corresponding
// dimension of limit.
func (l Limits) Exceed(limit Limits) bool {
	return l.Runtime > limit.Runtime ||
		l.ReadCnt > limit.ReadCnt ||
		l.ReadLen > limit.ReadLen ||
		l.WriteCnt > limit.WriteCnt ||
		l.WriteLen > limit.WriteLen
}

// TotalGas flattens the vector into a single gas figure for metrics
// and fee accounting.
func (l Limits) TotalGas() int64 {
	return l.Runtime + l.ReadCnt + l.ReadLen + l.WriteCnt + l.WriteLen
}

const maxLimit = int64(0x7FFFFFFFFFFFFFFF)

// MaxLimits places no ceiling on any dimension.
var MaxLimits = Limits{
	Runtime:  maxLimit,
	ReadCnt:  maxLimit,
	ReadLen:  maxLimit,
	WriteCnt: maxLimit,
	WriteLen: maxLimit,
}
