//go:build !linux

package fsmeta

import "time"

func birthTime(string) (time.Time, bool) {
	return time.Time{}, false
}
