package util

import "testing"

func TestBufPool(t *testing.T) {
	buf := GetBuf()
	if len(*buf) != DefaultBufSize {
		t.Fatalf("buffer size = %d, want %d", len(*buf), DefaultBufSize)
	}

	// A caller may have resliced the buffer; it comes back full size.
	*buf = (*buf)[:10]
	PutBuf(buf)
	if got := GetBuf(); len(*got) != DefaultBufSize {
		t.Errorf("recycled buffer size = %d, want %d", len(*got), DefaultBufSize)
	}
}

func TestPutBuf_Rejects(t *testing.T) {
	PutBuf(nil)
	small := make([]byte, 16)
	PutBuf(&small)
}
