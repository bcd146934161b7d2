package bufpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPutRoundTrip(t *testing.T) {
	for _, size := range []int{10, 256, 300, 1024, 4096, 9000, 16384, 20000} {
		buf := Get(size)
		assert.Len(t, buf, 0)
		want := size
		if want > size16k {
			want = size16k
		}
		assert.GreaterOrEqual(t, cap(buf), want)
		buf = append(buf, make([]byte, size)...)
		Put(buf)
	}
}

func TestGetBucketSelection(t *testing.T) {
	assert.LessOrEqual(t, cap(Get(1)), size256)
	assert.LessOrEqual(t, cap(Get(size256+1)), size1k)
	assert.LessOrEqual(t, cap(Get(size1k+1)), size4k)
	assert.LessOrEqual(t, cap(Get(size4k+1)), size16k)
	assert.Equal(t, size16k+1, cap(Get(size16k+1)))
}
