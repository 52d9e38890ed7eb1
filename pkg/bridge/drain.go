package bridge

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/newbridge/pkg/serial"
)

// Drain discards received bytes until the stream stays silent for a full
// quiet interval. It returns the number of discarded bytes.
// A peer that never stops talking keeps Drain running until ctx is done.
func Drain(ctx context.Context, s serial.Stream, clock Clock, quiet time.Duration) (int, error) {
	var drained int
	for {
		for s.Available() > 0 {
			if _, err := s.ReadByte(); err != nil {
				if err == serial.ErrNoData {
					break
				}
				return drained, err
			}
			drained++
		}
		if err := clock.Sleep(ctx, quiet); err != nil {
			return drained, err
		}
		if s.Available() == 0 {
			glog.V(4).Infof("drained %d bytes", drained)
			return drained, nil
		}
	}
}
