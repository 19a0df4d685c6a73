package store

import (
	"bytes"
	"errors"
	"testing"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/ledger"
	"github.com/quartzlabs/quartzcore/lib/storage/kvdb"
	_ "github.com/quartzlabs/quartzcore/lib/storage/kvdb/leveldb"
)

func newTestStore(t *testing.T) *VersionedStore {
	t.Helper()
	db, err := kvdb.CreateKVInstance(&kvdb.KVParameter{
		DBPath:                t.TempDir(),
		KVEngineType:          kvdb.KVEngineTypeLDB,
		MemCacheSize:          32,
		FileHandlersCacheSize: 32,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)
	s, err := NewVersionedStore(db)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func bid(n byte) ledger.BlockID {
	return ledger.NewBlockID([]byte{n})
}

func sealWith(t *testing.T, s *VersionedStore, parent, id ledger.BlockID, height int64, wset []*ledger.PureData) []byte {
	t.Helper()
	if err := s.CreateBlock(parent, id, height); err != nil {
		t.Fatal(err)
	}
	if len(wset) > 0 {
		if err := s.PutBlockData(id, wset); err != nil {
			t.Fatal(err)
		}
	}
	root, err := s.SealBlock(id)
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func pd(bucket, key, value string) *ledger.PureData {
	return &ledger.PureData{Bucket: bucket, Key: []byte(key), Value: []byte(value)}
}

func TestBlockLifecycle(t *testing.T) {
	s := newTestStore(t)

	root1 := sealWith(t, s, ledger.SentinelBlockID, bid(1), 0, []*ledger.PureData{
		pd("b", "k1", "v1"),
	})
	if len(root1) == 0 {
		t.Fatal("expect non-empty root")
	}

	// sealed block rejects writes
	err := s.PutBlockData(bid(1), []*ledger.PureData{pd("b", "k2", "v2")})
	if !errors.Is(err, ErrBlockSealed) {
		t.Fatalf("expect ErrBlockSealed, got %v", err)
	}

	root2 := sealWith(t, s, bid(1), bid(2), 1, []*ledger.PureData{
		pd("b", "k2", "v2"),
	})
	if bytes.Equal(root1, root2) {
		t.Fatal("expect roots to differ across blocks")
	}

	rec, err := s.GetBlock(bid(2))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Height != 1 || !rec.Sealed || rec.Parent != bid(1) {
		t.Fatalf("bad block record: %+v", rec)
	}
}

func TestMissingParentPanics(t *testing.T) {
	s := newTestStore(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expect panic on missing parent")
		}
	}()
	s.CreateBlock(bid(9), bid(10), 1)
}

func TestReaderWalksAncestors(t *testing.T) {
	s := newTestStore(t)
	sealWith(t, s, ledger.SentinelBlockID, bid(1), 0, []*ledger.PureData{
		pd("b", "k1", "v1"),
		pd("b", "k2", "v2"),
	})
	sealWith(t, s, bid(1), bid(2), 1, []*ledger.PureData{
		pd("b", "k2", "new"),
	})

	r := s.Reader(bid(2))
	// shadowed by the child overlay
	vd, err := r.Get("b", []byte("k2"))
	if err != nil {
		t.Fatal(err)
	}
	if string(vd.GetPureData().GetValue()) != "new" || vd.GetRefBlockID() != bid(2) {
		t.Fatalf("bad versioned data: %+v", vd)
	}
	// inherited from the parent
	vd, err = r.Get("b", []byte("k1"))
	if err != nil {
		t.Fatal(err)
	}
	if string(vd.GetPureData().GetValue()) != "v1" || vd.GetRefBlockID() != bid(1) {
		t.Fatalf("bad versioned data: %+v", vd)
	}
	// absent
	if _, err := r.Get("b", []byte("k3")); !errors.Is(err, contract.ErrNotFound) {
		t.Fatalf("expect ErrNotFound, got %v", err)
	}
}

func TestForkIsolation(t *testing.T) {
	s := newTestStore(t)
	sealWith(t, s, ledger.SentinelBlockID, bid(1), 0, []*ledger.PureData{
		pd("b", "k", "base"),
	})
	// two siblings on top of block 1
	sealWith(t, s, bid(1), bid(2), 1, []*ledger.PureData{
		pd("b", "k", "left"),
	})
	sealWith(t, s, bid(1), bid(3), 1, []*ledger.PureData{
		pd("b", "k", "right"),
	})

	vd, err := s.Reader(bid(2)).Get("b", []byte("k"))
	if err != nil || string(vd.GetPureData().GetValue()) != "left" {
		t.Fatalf("expect left, got %v err %v", vd, err)
	}
	vd, err = s.Reader(bid(3)).Get("b", []byte("k"))
	if err != nil || string(vd.GetPureData().GetValue()) != "right" {
		t.Fatalf("expect right, got %v err %v", vd, err)
	}
}

func TestReaderSelect(t *testing.T) {
	s := newTestStore(t)
	sealWith(t, s, ledger.SentinelBlockID, bid(1), 0, []*ledger.PureData{
		pd("b", "k1", "v1"),
		pd("b", "k3", "v3"),
	})
	sealWith(t, s, bid(1), bid(2), 1, []*ledger.PureData{
		pd("b", "k2", "v2"),
		pd("b", "k3", "shadowed"),
	})

	iter, err := s.Reader(bid(2)).Select("b", []byte("k"), []byte("k\xff"))
	if err != nil {
		t.Fatal(err)
	}
	defer iter.Close()

	var got []string
	for iter.Next() {
		v := iter.Value()
		got = append(got, string(v.GetPureData().GetKey())+"="+string(v.GetPureData().GetValue()))
	}
	want := []string{"k1=v1", "k2=v2", "k3=shadowed"}
	if len(got) != len(want) {
		t.Fatalf("expect %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expect %v got %v", want, got)
		}
	}
}

func TestSelectNilRangeCoversBucket(t *testing.T) {
	s := newTestStore(t)
	sealWith(t, s, ledger.SentinelBlockID, bid(1), 0, []*ledger.PureData{
		pd("names", "alice", "a"),
		pd("other", "x", "noise"),
	})
	sealWith(t, s, bid(1), bid(2), 1, []*ledger.PureData{
		pd("names", "bob", "b"),
	})

	collect := func(start, end []byte) []string {
		iter, err := s.Reader(bid(2)).Select("names", start, end)
		if err != nil {
			t.Fatal(err)
		}
		defer iter.Close()
		var got []string
		for iter.Next() {
			v := iter.Value()
			got = append(got, string(v.GetPureData().GetKey())+"="+string(v.GetPureData().GetValue()))
		}
		return got
	}

	// a nil range spans the whole bucket, other buckets stay invisible
	got := collect(nil, nil)
	want := []string{"alice=a", "bob=b"}
	if len(got) != len(want) {
		t.Fatalf("expect %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expect %v got %v", want, got)
		}
	}

	// nil end with explicit start still runs to the bucket's upper bound
	got = collect([]byte("b"), nil)
	if len(got) != 1 || got[0] != "bob=b" {
		t.Fatalf("expect [bob=b] got %v", got)
	}
}

func TestPrefixUpperBound(t *testing.T) {
	cases := []struct {
		prefix []byte
		want   []byte
	}{
		{[]byte("names/"), []byte("names0")},
		{[]byte{0x01, 0xff}, []byte{0x02}},
		{[]byte{0xff, 0xff}, nil},
	}
	for _, c := range cases {
		got := prefixUpperBound(c.prefix)
		if !bytes.Equal(got, c.want) {
			t.Fatalf("prefixUpperBound(%q) = %q, want %q", c.prefix, got, c.want)
		}
	}
}

func TestDeterministicRoot(t *testing.T) {
	build := func(t *testing.T) []byte {
		s := newTestStore(t)
		return sealWith(t, s, ledger.SentinelBlockID, bid(1), 0, []*ledger.PureData{
			pd("b", "k1", "v1"),
			pd("b", "k2", "v2"),
		})
	}
	if !bytes.Equal(build(t), build(t)) {
		t.Fatal("expect identical roots for identical writes")
	}
}
