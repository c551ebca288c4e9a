package adapter

import "context"

// waitContext adapts a stop channel to a context.Context so rate.Limiter.Wait
// can be interrupted by Stop() without the production loop needing its own
// context plumbing end to end.
func waitContext(stopCh <-chan struct{}) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-stopCh
		cancel()
	}()
	return ctx
}
