package util

import "sync"

// readBufs recycles session read buffers so that a reconnect loop does
// not allocate a fresh one per connection.
var readBufs = sync.Pool{ //nolint:gochecknoglobals
	New: func() interface{} {
		buf := make([]byte, DefaultBufSize)
		return &buf
	},
}

// GetBuf returns a DefaultBufSize read buffer.  Hand it back with
// PutBuf once the bytes read into it have been copied out.
func GetBuf() *[]byte {
	return readBufs.Get().(*[]byte)
}

// PutBuf recycles buf.  Nil and undersized buffers are dropped.
func PutBuf(buf *[]byte) {
	if buf == nil || cap(*buf) < DefaultBufSize {
		return
	}
	*buf = (*buf)[:DefaultBufSize]
	readBufs.Put(buf)
}
