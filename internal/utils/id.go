package utils

import (
	"strconv"
	"sync"
	"time"
)

var (
	tokenMu   sync.Mutex
	lastToken int64
)

// NewToken returns a millisecond-epoch token, bumped monotonically so two
// tokens minted in the same millisecond never collide.
func NewToken() string {
	tokenMu.Lock()
	defer tokenMu.Unlock()
	now := time.Now().UnixMilli()
	if now <= lastToken {
		now = lastToken + 1
	}
	lastToken = now
	return strconv.FormatInt(now, 10)
}
