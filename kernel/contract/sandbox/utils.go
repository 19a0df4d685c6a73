package sandbox

import (
	"bytes"
	"fmt"

	"github.com/quartzlabs/quartzcore/kernel/ledger"
)

// BucketSeperator separator between bucket and raw key
const BucketSeperator = "/"

// DelFlag delete flag
const DelFlag = "\x00"

func makeRawKey(bucket string, key []byte) []byte {
	k := append([]byte(bucket), []byte(BucketSeperator)...)
	return append(k, key...)
}

func parseRawKey(rawKey []byte) (string, []byte, error) {
	idx := bytes.Index(rawKey, []byte(BucketSeperator))
	if idx < 0 {
		return "", nil, fmt.Errorf("parseRawKey failed, invalid raw key:%s", string(rawKey))
	}
	bucket := string(rawKey[:idx])
	key := rawKey[idx+1:]
	return bucket, key, nil
}

// IsEmptyVersionedData check if VersionedData carries no stored value
func IsEmptyVersionedData(vd *ledger.VersionedData) bool {
	return vd.GetRefBlockID().IsSentinel() && vd.GetPureData().GetValue() == nil
}

// MakeEmptyVersionedData is the placeholder read result for absent keys.
// It still carries bucket and key so the read lands in the read set.
func MakeEmptyVersionedData(bucket string, key []byte) *ledger.VersionedData {
	return &ledger.VersionedData{
		PureData: &ledger.PureData{
			Bucket: bucket,
			Key:    key,
		},
	}
}

func IsDelFlag(value []byte) bool {
	return bytes.Equal([]byte(DelFlag), value)
}

// bucketUpperBound returns the smallest raw key sorting after every key
// in the bucket.
func bucketUpperBound(bucket string) []byte {
	limit := makeRawKey(bucket, nil)
	for i := len(limit) - 1; i >= 0; i-- {
		if limit[i] < 0xff {
			limit[i]++
			return limit[:i+1]
		}
	}
	return nil
}

// helper for test
func putVersionedData(state *MemXModel, bucket string, key []byte, value []byte) {
	state.Put(bucket, key, &ledger.VersionedData{
		RefBlockID: ledger.NewBlockID([]byte("block")),
		PureData: &ledger.PureData{
			Bucket: bucket,
			Key:    key,
			Value:  value,
		},
	})
}
