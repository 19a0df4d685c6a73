package sandbox

import (
	"bytes"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/ledger"
)

// multiIterator 按照归并排序合并两个XMIterator
// 如果两个XMIterator在某次迭代返回同样的Key，选取front的Value
type multiIterator struct {
	front ledger.XMIterator
	back  ledger.XMIterator

	frontValid bool
	backValid  bool

	key   []byte
	value *ledger.VersionedData
}

func newMultiIterator(front, back ledger.XMIterator) ledger.XMIterator {
	m := &multiIterator{
		front: front,
		back:  back,
	}
	m.frontValid = m.front.Next()
	m.backValid = m.back.Next()
	return m
}

func (m *multiIterator) Key() []byte {
	return m.key
}

func (m *multiIterator) Value() *ledger.VersionedData {
	return m.value
}

func (m *multiIterator) Next() bool {
	switch {
	case !m.frontValid && !m.backValid:
		m.key, m.value = nil, nil
		return false
	case m.frontValid && !m.backValid:
		m.setKeyValue(m.front)
		m.frontValid = m.front.Next()
	case !m.frontValid && m.backValid:
		m.setKeyValue(m.back)
		m.backValid = m.back.Next()
	default:
		switch bytes.Compare(m.front.Key(), m.back.Key()) {
		case 0:
			m.setKeyValue(m.front)
			m.frontValid = m.front.Next()
			m.backValid = m.back.Next()
		case -1:
			m.setKeyValue(m.front)
			m.frontValid = m.front.Next()
		case 1:
			m.setKeyValue(m.back)
			m.backValid = m.back.Next()
		}
	}
	return true
}

func (m *multiIterator) setKeyValue(iter ledger.XMIterator) {
	// 拷贝key，底层迭代器Next之后key可能复用
	m.key = append([]byte{}, iter.Key()...)
	m.value = iter.Value()
}

func (m *multiIterator) Error() error {
	err := m.front.Error()
	if err != nil {
		return err
	}

	err = m.back.Error()
	if err != nil {
		return err
	}
	return nil
}

// Iterator 必须在使用完毕后关闭
func (m *multiIterator) Close() {
	m.front.Close()
	m.back.Close()
}

// rsetIterator 把迭代到的Key记录到读集里面
type rsetIterator struct {
	mc *Cache
	ledger.XMIterator
	err error
}

func newRsetIterator(iter ledger.XMIterator, mc *Cache) ledger.XMIterator {
	return &rsetIterator{
		mc:         mc,
		XMIterator: iter,
	}
}

func (r *rsetIterator) Next() bool {
	if r.err != nil {
		return false
	}
	ok := r.XMIterator.Next()
	if !ok {
		return false
	}
	rawkey := r.Key()
	bucket, key, err := parseRawKey(rawkey)
	if err != nil {
		r.err = err
		return false
	}
	// fill read set
	r.mc.Get(bucket, key)
	return true
}

func (r *rsetIterator) Error() error {
	if r.err != nil {
		return r.err
	}
	return r.XMIterator.Error()
}

// ContractIterator 把ledger.XMIterator转换成contract.Iterator
type ContractIterator struct {
	ledger.XMIterator
}

func newContractIterator(xmiter ledger.XMIterator) contract.Iterator {
	return &ContractIterator{
		XMIterator: xmiter,
	}
}

func (c *ContractIterator) Value() []byte {
	v := c.XMIterator.Value()
	return v.GetPureData().GetValue()
}

// Key strips the bucket prefix, contracts see logical keys only.
func (c *ContractIterator) Key() []byte {
	raw := c.XMIterator.Key()
	_, key, err := parseRawKey(raw)
	if err != nil {
		return raw
	}
	return key
}

// stripDelIterator 从迭代器里剔除删除标注和空版本
type stripDelIterator struct {
	ledger.XMIterator
}

func newStripDelIterator(xmiter ledger.XMIterator) ledger.XMIterator {
	return &stripDelIterator{
		XMIterator: xmiter,
	}
}

func (s *stripDelIterator) Next() bool {
	for s.XMIterator.Next() {
		v := s.Value()
		if IsEmptyVersionedData(v) {
			continue
		}
		if IsDelFlag(v.GetPureData().GetValue()) {
			continue
		}
		return true
	}
	return false
}
